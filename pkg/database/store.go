package database

import (
	"context"
	"fmt"

	"live-poll/config"
	"live-poll/internal/repository"
)

// OpenStore connects the backend chosen by STORE_DRIVER. Relational
// backends get their schema migrated before the store is returned.
func OpenStore(ctx context.Context, cfg *config.Config) (*repository.Store, error) {
	if cfg.StoreDriver == config.StoreDriverMongo {
		db, err := repository.ConnectMongo(ctx, repository.MongoCfg{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
		if err != nil {
			return nil, err
		}
		return repository.NewMongoStore(db), nil
	}

	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := repository.InitSchema(db); err != nil {
		_ = Close()
		return nil, fmt.Errorf("migrate %s store: %w", cfg.StoreDriver, err)
	}
	return repository.NewGormStore(db), nil
}
