package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/outreachhq/sequencer/channel"
	"github.com/outreachhq/sequencer/config"
	"github.com/outreachhq/sequencer/eventlog"
	"github.com/outreachhq/sequencer/executor"
	"github.com/outreachhq/sequencer/middleware"
	"github.com/outreachhq/sequencer/models"
	"github.com/outreachhq/sequencer/personalize"
	"github.com/outreachhq/sequencer/ratelimit"
	"github.com/outreachhq/sequencer/routes"
	"github.com/outreachhq/sequencer/scheduler"
	"github.com/outreachhq/sequencer/signature"
	"github.com/outreachhq/sequencer/store"
	"github.com/outreachhq/sequencer/webhook"
	"github.com/outreachhq/sequencer/worker"
)

func main() {
	logger := log.New(os.Stdout, "SEQUENCER: ", log.Ldate|log.Ltime|log.Lshortfile)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load configuration: %v", err)
	}

	if err := config.ConnectDB(cfg); err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}

	app := fiber.New()
	app.Use(middleware.CORS())

	governor := ratelimit.NewGovernor(config.DB)
	signatures := signature.NewStore(config.DB)
	completer := &personalize.HTTPCompleter{
		BaseURL: cfg.CompletionBaseURL,
		APIKey:  cfg.CompletionAPIKey,
		Model:   cfg.CompletionModel,
	}
	personalizer := personalize.New(completer)

	networkAdapter := channel.NewNetworkAdapter(func(accountID string) (channel.BrowserSession, error) {
		return nil, http.ErrNotSupported // production wiring swaps in a real browser session per account
	})
	networkAdapter.MinInterval = time.Duration(cfg.NetworkMinIntervalSeconds) * time.Second
	networkAdapter.Jitter = time.Duration(cfg.NetworkJitterSeconds) * time.Second
	networkAdapter.DailyCap = cfg.NetworkDailyCap

	adapters := map[models.StepKind]channel.Adapter{
		models.StepEmail: &channel.EmailAdapter{},
		models.StepCall: &channel.VoiceAdapter{
			BaseURL:    cfg.VoiceAdapterBaseURL,
			APIKey:     cfg.VoiceAdapterAPIKey,
			WebhookURL: cfg.VoiceWebhookURL,
		},
		models.StepNetworkConnect: channel.ConnectAdapter{NetworkAdapter: networkAdapter},
		models.StepNetworkMessage: channel.MessageAdapter{NetworkAdapter: networkAdapter},
	}

	exec := &executor.Executor{
		Governor:       governor,
		Personalizer:   personalizer,
		SignatureStore: signatures,
		Adapters:       adapters,
		TemplateLookup: func(key string) (*models.Template, error) {
			var tmpl models.Template
			if err := config.DB.Where("key = ?", key).First(&tmpl).Error; err != nil {
				return nil, err
			}
			return &tmpl, nil
		},
	}

	sched := &scheduler.Scheduler{
		Store:             store.New(config.DB),
		Executor:          exec,
		GlobalConcurrency: cfg.GlobalConcurrency,
		DrainTimeout:      time.Duration(cfg.DrainTimeoutSeconds) * time.Second,
		StaleThreshold:    time.Duration(cfg.StaleThresholdMinutes) * time.Minute,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sched.Run(ctx)

	replyWatcher := worker.NewReplyWatcher(config.DB, log.New(os.Stdout, "REPLY: ", log.LstdFlags))
	go replyWatcher.Start(ctx)

	warmupTicker := worker.NewWarmupTicker(governor, log.New(os.Stdout, "WARMUP: ", log.LstdFlags))
	go warmupTicker.Start(ctx)

	webhookHandler := webhook.New(eventlog.New(config.DB), config.DB)
	routes.SetupRoutes(app, webhookHandler)

	logger.Printf("sequencer listening on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}
