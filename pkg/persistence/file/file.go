// Package file provides file-based persistence for workflow definitions.
// Each workflow is one JSON document under <root>/workflows. Intended for
// local development and tests; listing loads everything into memory.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/hdts/flowkit/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface on the file
// system.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
}

// NewPersistence creates a file driver rooted at the given directory. A
// leading file:// scheme is accepted and stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.TrimPrefix(root, "file://")

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot),
	}
}

// WorkflowRepository returns the workflow repository for this driver.
func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close is a no-op for the file driver.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}
