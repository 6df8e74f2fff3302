package redis

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdts/flowkit/pkg/models"
	"github.com/hdts/flowkit/pkg/persistence"
)

func setupTestRedis(t *testing.T) *Persistence {
	t.Helper()

	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	p, err := NewPersistence(t.Context(), redisURL)
	require.NoError(t, err)

	t.Cleanup(func() { _ = p.Close(t.Context()) })

	return p
}

func TestRedis_SaveGetDelete(t *testing.T) {
	p := setupTestRedis(t)
	repo := p.WorkflowRepository()

	now := time.Now().UTC().Truncate(time.Millisecond)
	wf := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        "redis-roundtrip-" + uuid.New().String(),
		Category:    "HR",
		SubCategory: uuid.New().String(),
		Department:  "People",
		LowSLA:      &models.SLA{Hours: 24},
		Steps: []*models.Step{
			{ID: "a", Name: "Submit", Role: "agent", Weight: 0.5, IsStart: true},
		},
		Status:    models.WorkflowStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	require.NoError(t, repo.Save(t.Context(), wf))

	loaded, err := repo.GetByID(t.Context(), wf.ID)
	require.NoError(t, err)
	assert.Equal(t, wf.Name, loaded.Name)
	require.NotNil(t, loaded.LowSLA)
	assert.Equal(t, 24, loaded.LowSLA.Hours)

	summaries, err := repo.Summaries(t.Context())
	require.NoError(t, err)

	found := false
	for _, s := range summaries {
		if s.ID == wf.ID {
			found = true
		}
	}
	assert.True(t, found)

	require.NoError(t, repo.Delete(t.Context(), wf.ID))

	_, err = repo.GetByID(t.Context(), wf.ID)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestRedis_GetByID_NotFound(t *testing.T) {
	p := setupTestRedis(t)

	_, err := p.WorkflowRepository().GetByID(t.Context(), uuid.New().String())
	assert.True(t, persistence.IsWorkflowNotFound(err))
}
