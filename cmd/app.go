package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"secure-rag/internal/auth"
	"secure-rag/internal/chromemdb"
	"secure-rag/internal/config"
	"secure-rag/internal/db"
	"secure-rag/internal/embedding"
	"secure-rag/internal/helper"
	"secure-rag/internal/llmservice"
	"secure-rag/internal/models"
	"secure-rag/internal/rag"
	"secure-rag/internal/retrieval"
)

// openVectorDB opens the configured collection. An in-memory store is
// loaded from its export file when one exists.
func openVectorDB(ctx context.Context, cfg *config.Config) (*chromemdb.VectorDBManager, error) {
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, err
	}

	if !cfg.VectorDB.InMemory {
		if err := helper.CreateFolder(cfg.VectorDB.Path); err != nil {
			return nil, err
		}
	}

	vdb, err := chromemdb.NewVectorDBManager(chromemdb.Options{
		Path:          cfg.VectorDB.Path,
		InMemory:      cfg.VectorDB.InMemory,
		Compress:      cfg.VectorDB.Compress,
		EncryptionKey: cfg.VectorDB.EncryptionKey,
		ExportPath:    cfg.VectorDB.ExportPath,
	}, embedding.NewEmbeddingFunc(embedder))
	if err != nil {
		return nil, err
	}
	if _, err := vdb.GetOrCreateCollection(cfg.VectorDB.Collection); err != nil {
		return nil, err
	}

	if cfg.VectorDB.InMemory && cfg.VectorDB.ExportPath != "" {
		if _, statErr := os.Stat(cfg.VectorDB.ExportPath); statErr == nil {
			if err := vdb.Import(ctx); err != nil {
				return nil, err
			}
		}
	}

	log.Debug().Str("collection", cfg.VectorDB.Collection).Int("documents", vdb.Count()).Msg("Vector database ready")
	return vdb, nil
}

// openUserDB connects to the credential database, or returns nil when no
// dsn is configured.
func openUserDB(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	if cfg.Database.DSN == "" {
		return nil, nil
	}
	sqldb, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	bunDB := db.NewDB(sqldb, cfg.Database.Debug)
	if err := db.InitDB(ctx, bunDB); err != nil {
		bunDB.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return bunDB, nil
}

// newUserStore combines the database users with the users of the config file.
func newUserStore(bunDB *bun.DB, cfg *config.Config) (auth.UserStore, error) {
	static := auth.NewMemoryStoreFromConfig(cfg.Users)
	if bunDB == nil {
		if len(cfg.Users) == 0 {
			return nil, errors.New("no users configured: set database.dsn or users in the config")
		}
		return static, nil
	}
	return auth.ChainStore{db.NewUserStore(bunDB), static}, nil
}

func newService(ctx context.Context, cfg *config.Config) (*rag.Service, func(), error) {
	vdb, err := openVectorDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	bunDB, err := openUserDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if bunDB != nil {
			bunDB.Close()
		}
	}

	store, err := newUserStore(bunDB, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	llm, err := llmservice.NewClient(&cfg.ChatLLM)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	svc := rag.NewService(
		auth.NewPasswordAuthenticator(store),
		retrieval.NewRetriever(vdb, cfg.Retrieval),
		llm,
	)
	return svc, cleanup, nil
}

func describeError(err error) error {
	if errors.Is(err, models.ErrUnauthorized) {
		return fmt.Errorf("wrong login or password: %w", err)
	}
	return err
}
