package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/manualqa/internal/ai"
	"github.com/xxxsen/manualqa/internal/config"
	"github.com/xxxsen/manualqa/internal/extract"
	"github.com/xxxsen/manualqa/internal/filestore"
	"github.com/xxxsen/manualqa/internal/handler"
	"github.com/xxxsen/manualqa/internal/job"
	"github.com/xxxsen/manualqa/internal/middleware"
	"github.com/xxxsen/manualqa/internal/repo"
	"github.com/xxxsen/manualqa/internal/retriever"
	"github.com/xxxsen/manualqa/internal/schedule"
	"github.com/xxxsen/manualqa/internal/service"
)

func main() {
	var (
		configPath string
		envPath    string
	)

	rootCmd := &cobra.Command{
		Use:   "manualqa",
		Short: "equipment manual question answering server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run manualqa server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnv(envPath); err != nil {
				return err
			}
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json, defaults are used when empty")
	runCmd.Flags().StringVar(&envPath, "env", ".env", "dotenv file with provider api keys")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

// loadEnv reads the dotenv file if it exists. Variables already set in the environment win.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func buildGenerator(cfg config.AIConfig) (ai.IGenerator, []handler.ProviderStatus, error) {
	entries := make([]ai.GeneratorEntry, 0, len(cfg.Providers))
	statuses := make([]handler.ProviderStatus, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		provider, err := ai.NewProvider(pc.Name, pc.Data)
		if err != nil {
			return nil, nil, fmt.Errorf("init ai provider %s: %w", pc.Name, err)
		}
		configured := provider.Configured()
		statuses = append(statuses, handler.ProviderStatus{Name: provider.Name(), Model: pc.Model, Configured: configured})
		if !configured {
			logutil.GetLogger(context.Background()).Warn("ai provider has no api key, skipped",
				zap.String("provider", pc.Name),
				zap.String("model", pc.Model),
			)
			continue
		}
		entries = append(entries, ai.GeneratorEntry{
			Name:      pc.Name + ":" + pc.Model,
			Generator: ai.NewGenerator(provider, pc.Model),
		})
	}
	return ai.NewGroupGenerator(entries), statuses, nil
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.Int("chunk_target_size", cfg.RAG.ChunkTargetSize),
		zap.Int("chunk_overlap", cfg.RAG.ChunkOverlap),
		zap.Int("retrieval_k", cfg.RAG.RetrievalK),
	)

	gen, statuses, err := buildGenerator(cfg.AI)
	if err != nil {
		return err
	}
	if gen == nil {
		logutil.GetLogger(context.Background()).Warn("no ai provider configured, answers will list relevant sections only")
	}
	archive, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	docRepo := repo.NewDocumentRepo()
	manager := ai.NewManager(gen, ai.ManagerConfig{Timeout: cfg.RAG.CompletionTimeout()})
	synth := ai.NewSynthesizer(manager, ai.SynthesizerConfig{
		PromptCharBudget: cfg.RAG.PromptCharBudget,
		CacheSize:        cfg.RAG.AnswerCacheSize,
		CacheTTL:         cfg.RAG.AnswerCacheTTL(),
	})
	documentService := service.NewDocumentService(docRepo)
	ingestService := service.NewIngestService(docRepo, extract.New(), archive, service.IngestConfig{
		ChunkTargetSize: cfg.RAG.ChunkTargetSize,
		ChunkOverlap:    cfg.RAG.ChunkOverlap,
	})
	queryService := service.NewQueryService(docRepo, retriever.New(), synth, cfg.RAG.RetrievalK)

	deps := handler.RouterDeps{
		Documents:      handler.NewDocumentHandler(ingestService, documentService, cfg.MaxUploadSize),
		Query:          handler.NewQueryHandler(queryService),
		Status:         handler.NewStatusHandler(documentService, statuses),
		QueryRateLimit: time.Duration(cfg.QueryRateLimitMs) * time.Millisecond,
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if ttl := cfg.DocumentExpiry.TTL(); ttl > 0 {
		scheduler := schedule.NewCronScheduler()
		if err := scheduler.AddJob(job.NewDocumentExpiryJob(docRepo, ttl), cfg.DocumentExpiry.Cron); err != nil {
			return fmt.Errorf("schedule document expiry: %w", err)
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
