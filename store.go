package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/c14220110/klinik-dashboard/config"
	"github.com/c14220110/klinik-dashboard/pkg/docstore"
	"github.com/c14220110/klinik-dashboard/pkg/storage/mariadb"
	"github.com/c14220110/klinik-dashboard/pkg/storage/mongodb"
	"github.com/c14220110/klinik-dashboard/pkg/storage/redisdb"
)

// openStore membuka backend document store sesuai DOC_STORE.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (docstore.Store, error) {
	switch cfg.DocStore {
	case config.StoreMemory:
		log.Warn("memakai document store in-memory; data hilang saat proses berhenti")
		return docstore.NewMemoryStore(), nil
	case config.StoreMongo:
		return mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB, log.Named("mongo"))
	case config.StoreRedis:
		return redisdb.Connect(ctx, cfg.RedisAddr, log.Named("redis"))
	case config.StoreMariaDB:
		db, err := mariadb.Connect(log.Named("mariadb"))
		if err != nil {
			return nil, err
		}
		s := mariadb.NewStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown DOC_STORE %q", cfg.DocStore)
}
