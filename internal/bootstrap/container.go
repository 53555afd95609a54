package bootstrap

import (
	"log"

	"erp-catalog-be/internal/config"
	"erp-catalog-be/internal/controller"
	"erp-catalog-be/internal/pkg/logger"
	"erp-catalog-be/internal/repository/unitofwork"
	"erp-catalog-be/internal/scheduler"
	"erp-catalog-be/internal/service"
	"erp-catalog-be/pkg/embedding"
	"erp-catalog-be/pkg/tiny"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SyncController      controller.ISyncController
	CatalogController   controller.ICatalogController
	KnowledgeController controller.IKnowledgeController

	// Background services (exposed for main.go to run)
	ConsumerService    service.IConsumerService
	VectorizeScheduler *scheduler.VectorizeScheduler

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	if cfg.Tiny.ApiToken == "" {
		log.Fatal("[FATAL] TINY_API_TOKEN is not set")
	}

	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Upstream client. One shared instance so the request pacing is
	// global, not per job.
	tinyClient := tiny.NewClient(tiny.Config{
		BaseURL:                cfg.Tiny.BaseURL,
		Token:                  cfg.Tiny.ApiToken,
		MinInterval:            cfg.Tiny.MinTime,
		SnapshotBackoffInitial: cfg.Tiny.SnapshotInitial,
		SnapshotBackoffMax:     cfg.Tiny.SnapshotMax,
	})

	// 3. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 4. Embedding provider
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GoogleGeminiApiKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// 5. Services
	reconcileService := service.NewReconcileService(uowFactory, sysLogger)
	importService := service.NewFullImportService(tinyClient, uowFactory, reconcileService, sysLogger, cfg.Sync)
	deltaService := service.NewDeltaSyncService(tinyClient, uowFactory, reconcileService, sysLogger, cfg.Sync)
	fallbackService := service.NewFallbackSyncService(tinyClient, uowFactory, reconcileService, sysLogger, cfg.Sync)

	vectorizeService := service.NewVectorizeService(
		uowFactory,
		embeddingProvider,
		sysLogger,
		cfg.Ai.VectorizeBatchSize,
		cfg.Ai.VectorizeItemDelay,
	)
	vectorizeScheduler := scheduler.NewVectorizeScheduler(vectorizeService, sysLogger, cfg.Ai.VectorizeInterval)

	knowledgeService := service.NewKnowledgeService(pubSub, cfg.Ai.EmbedDocumentTopic, uowFactory)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Ai.EmbedDocumentTopic,
		uowFactory,
		embeddingProvider,
		sysLogger,
		cfg.Ai.ChunkDedupThreshold,
	)

	catalogService := service.NewCatalogService(uowFactory, embeddingProvider)

	// 6. Controllers
	return &Container{
		SyncController: controller.NewSyncController(
			importService,
			deltaService,
			fallbackService,
			vectorizeService,
			cfg.Sync.Strategy,
		),
		CatalogController:   controller.NewCatalogController(catalogService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),

		ConsumerService:    consumerService,
		VectorizeScheduler: vectorizeScheduler,
		Logger:             sysLogger,
	}
}
