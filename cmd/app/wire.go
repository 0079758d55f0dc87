//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/oyado/faqbot/internal/bootstrap"
	"github.com/oyado/faqbot/internal/domain/chat"
	"github.com/oyado/faqbot/internal/domain/faq"
	"github.com/oyado/faqbot/internal/domain/tenant"
	"github.com/oyado/faqbot/internal/infra/config"
	httpiface "github.com/oyado/faqbot/internal/interface/http"
	"github.com/oyado/faqbot/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		providePgxPool,
		provideFAQRepository,
		provideTenantRepository,
		provideAdminRepository,
		provideHistoryRepository,
		provideTrendingStore,
		provideEmbeddingProvider,
		provideMatcher,
		provideClassifier,
		provideChatConfig,
		provideNotifier,
		provideArchiver,
		provideTokenCounter,
		provideAuthService,
		tenant.NewService,
		faq.NewService,
		chat.NewService,
		httpiface.NewChatHandler,
		httpiface.NewAuthHandler,
		httpiface.NewAdminHandler,
		httpiface.NewTenantHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
