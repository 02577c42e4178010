// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/scrapeflow/scrapeflow/pkg/persistence"
	"github.com/scrapeflow/scrapeflow/pkg/persistence/file"
	"github.com/scrapeflow/scrapeflow/pkg/persistence/postgresql"
	"github.com/scrapeflow/scrapeflow/pkg/persistence/redis"
)

// NewPersistence picks the backend from the database URL scheme. Anything
// without a recognized scheme is treated as a file path.
func NewPersistence(ctx context.Context, databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to connect to postgresql: %w", err))
		}

		return p
	case "redis":
		p, err := redis.NewPersistence(databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to connect to redis: %w", err))
		}

		return p
	default:
		return file.NewPersistence(databaseURL)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return scheme
}
