// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hdts/flowkit/pkg/persistence"
	"github.com/hdts/flowkit/pkg/persistence/file"
	"github.com/hdts/flowkit/pkg/persistence/postgresql"
	"github.com/hdts/flowkit/pkg/persistence/redis"
)

// NewPersistence selects a driver from the database URL scheme. Anything
// without a recognized scheme is treated as a file path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case strings.HasPrefix(databaseURL, "redis://"), strings.HasPrefix(databaseURL, "rediss://"):
		return redis.NewPersistence(ctx, databaseURL)
	case databaseURL == "":
		return nil, fmt.Errorf("database URL is required")
	default:
		return file.NewPersistence(databaseURL), nil
	}
}
