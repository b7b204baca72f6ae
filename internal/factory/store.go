package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Vijaykv5/Intereractive-GD/internal/config"
	"github.com/Vijaykv5/Intereractive-GD/internal/store"
	"github.com/Vijaykv5/Intereractive-GD/internal/store/mongo"
	"github.com/Vijaykv5/Intereractive-GD/internal/store/postgres"
	"github.com/Vijaykv5/Intereractive-GD/internal/store/sqlite"
)

// NewStore opens the document store selected by cfg.StoreDriver.
// The connection is opened synchronously since health checks need it immediately.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.StoreDriver {
	case "mongo":
		st, err = mongo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, cfg.MaxDocumentBytes)
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("GD_POSTGRES_DSN is required when STORE_DRIVER=postgres")
		}
		st, err = postgres.New(ctx, cfg.PostgresDSN, cfg.MaxDocumentBytes)
	case "sqlite":
		st, err = sqlite.New(ctx, cfg.SQLitePath, cfg.MaxDocumentBytes)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER: %s", cfg.StoreDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	log.Debug().Str("driver", cfg.StoreDriver).Int("max_document_bytes", cfg.MaxDocumentBytes).Msg("store ready")
	return st, nil
}
