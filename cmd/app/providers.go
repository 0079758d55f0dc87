package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/oyado/faqbot/internal/domain/auth"
	"github.com/oyado/faqbot/internal/domain/chat"
	"github.com/oyado/faqbot/internal/domain/faq"
	"github.com/oyado/faqbot/internal/domain/tenant"
	"github.com/oyado/faqbot/internal/infra/adminrepo"
	"github.com/oyado/faqbot/internal/infra/backup"
	"github.com/oyado/faqbot/internal/infra/chatstore"
	"github.com/oyado/faqbot/internal/infra/config"
	"github.com/oyado/faqbot/internal/infra/embedding"
	"github.com/oyado/faqbot/internal/infra/faqrepo"
	"github.com/oyado/faqbot/internal/infra/historyrepo"
	"github.com/oyado/faqbot/internal/infra/notify"
	"github.com/oyado/faqbot/internal/infra/tenantrepo"
	"github.com/oyado/faqbot/pkg/metrics"
)

// providePgxPool returns a ready pool, or nil when postgres is not
// configured or unreachable. Repos fall back to memory in that case.
func providePgxPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

func provideFAQRepository(pool *pgxpool.Pool) faq.Repository {
	if pool == nil {
		return faqrepo.NewMemoryRepository()
	}
	return faqrepo.NewPostgresRepository(pool)
}

func provideTenantRepository(pool *pgxpool.Pool) tenant.Repository {
	if pool == nil {
		return tenantrepo.NewMemoryRepository()
	}
	return tenantrepo.NewPostgresRepository(pool)
}

func provideAdminRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return adminrepo.NewMemoryRepository()
	}
	return adminrepo.NewPostgresRepository(pool)
}

func provideHistoryRepository(pool *pgxpool.Pool) chat.HistoryRepository {
	if pool == nil {
		return historyrepo.NewMemoryRepository()
	}
	return historyrepo.NewPostgresRepository(pool)
}

func provideTrendingStore(cfg *config.Config, logger *slog.Logger) chat.TrendingStore {
	if cfg.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return chatstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return chatstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("valkey trending store enabled", "addr", cfg.Valkey.Addr)
			return chatstore.NewValkeyStore(client, "faqbot")
		}
	}
	return chatstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

// provideEmbeddingProvider builds the deterministic embedder in test mode
// and the retrying remote client otherwise.
func provideEmbeddingProvider(cfg *config.Config, logger *slog.Logger) (embedding.Provider, error) {
	hash := embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	if cfg.Embedding.TestMode || strings.TrimSpace(cfg.Embedding.APIKey) == "" {
		logger.Info("embedding test mode enabled, using deterministic vectors")
		return hash, nil
	}
	client, err := embedding.NewVoyageClient(cfg.Embedding.APIKey, cfg.Embedding.BaseURL,
		cfg.Embedding.Model, cfg.Embedding.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return embedding.NewFallbackProvider(client, hash,
		cfg.Embedding.MaxRetries, cfg.Embedding.RetryDelay, logger), nil
}

func provideMatcher(cfg *config.Config) *chat.Matcher {
	return chat.NewMatcher(cfg.Chat.SimilarityThreshold)
}

func provideClassifier(cfg *config.Config) *chat.Classifier {
	topics := make([]chat.Topic, 0, len(cfg.Chat.Topics))
	for _, topic := range cfg.Chat.Topics {
		topics = append(topics, chat.Topic{
			Name:       topic.Name,
			Keywords:   topic.Keywords,
			Exclusions: topic.Exclusions,
		})
	}
	return chat.NewClassifier(topics)
}

func provideChatConfig(cfg *config.Config) chat.ServiceConfig {
	return chat.ServiceConfig{
		FallbackAnswer:   cfg.Chat.FallbackAnswer,
		RequestTimeout:   cfg.Chat.RequestTimeout,
		KeywordFallback:  cfg.Embedding.TestMode,
		DefaultLineToken: cfg.Line.Token,
		TrendingLimit:    cfg.Chat.TopRecommendations,
	}
}

func provideNotifier(cfg *config.Config, logger *slog.Logger) chat.Notifier {
	if !cfg.Line.Enabled {
		return nil
	}
	return notify.NewLineNotifier(cfg.Line.Endpoint, 10*time.Second, logger)
}

func provideArchiver(cfg *config.Config, logger *slog.Logger) backup.Archiver {
	if !cfg.Backup.Enabled {
		return nil
	}
	archiver, err := backup.NewR2Archiver(cfg.Backup.Endpoint, cfg.Backup.AccessKey,
		cfg.Backup.SecretKey, cfg.Backup.Bucket, cfg.Backup.Region, logger)
	if err != nil {
		logger.Error("backup archiver init failed, imports will not be archived", "error", err)
		return nil
	}
	return archiver
}

func provideTokenCounter() *metrics.TokenCounter {
	return metrics.NewTokenCounter()
}

func provideAuthService(cfg *config.Config, repo auth.Repository, logger *slog.Logger) auth.Service {
	return auth.NewService(repo, cfg.Auth.Secret, cfg.Auth.TokenTTL, cfg.Auth.RefreshTokenTTL, logger)
}
