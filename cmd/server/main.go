package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"

	"github.com/dispatchhq/dispatchd/internal/adapters/sqlite"
	"github.com/dispatchhq/dispatchd/internal/app/ports"
	appservices "github.com/dispatchhq/dispatchd/internal/app/services"
	"github.com/dispatchhq/dispatchd/internal/chat"
	"github.com/dispatchhq/dispatchd/internal/config"
	"github.com/dispatchhq/dispatchd/internal/db"
	"github.com/dispatchhq/dispatchd/internal/integration"
	"github.com/dispatchhq/dispatchd/internal/observability"
	"github.com/dispatchhq/dispatchd/internal/queue"
	"github.com/dispatchhq/dispatchd/internal/registry"
	"github.com/dispatchhq/dispatchd/internal/router"
	"github.com/dispatchhq/dispatchd/internal/server"
	"github.com/dispatchhq/dispatchd/internal/server/routes"
	"github.com/dispatchhq/dispatchd/internal/statuscache"
	"github.com/dispatchhq/dispatchd/pkg/notify"
)

func main() {
	log := slog.New(observability.WrapSlogHandler(
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	cipher, err := integration.NewCipher(cfg.Crypto.PropertiesKey)
	if err != nil {
		slog.Error("Failed to build properties cipher", "error", err)
		return
	}

	store := sqlite.NewInstanceStore(database)
	repo := appservices.NewIntegrationRepository(store, cipher)
	reg := registry.Default()
	eventRouter := router.New(reg, log)

	// Branch protection rules live upstream; without a source every branch
	// reports unprotected.
	engine := chat.NewEngine(eventRouter, func(string) bool { return false }, log)

	cache := statuscache.New(
		sqlite.NewCacheStore(database),
		commitStatusCalculator(repo),
		cfg.Cache.TTL,
		statuscache.WithLogger(log),
	)

	var dispatchService *appservices.DispatchService
	taskQueue := queue.New(func(ctx context.Context, task ports.Task) error {
		if task.Name != ports.TaskNameExecute {
			return nil
		}
		ctx = observability.WithDelivery(ctx, task.DeliveryID)
		ctx = observability.WithIntegration(ctx, task.IntegrationID)
		return dispatchService.Execute(ctx, task.IntegrationID, task.Payload)
	}, cfg.Queue.Buffer, cfg.Queue.Workers, log)

	dispatchService = appservices.NewDispatchService(
		repo, reg, eventRouter, engine, taskQueue, senderFactory(cfg), log)
	settingsService := appservices.NewSettingsService(repo, reg, cfg.Notify.ChannelLimit)
	fieldsService := appservices.NewFieldsService(repo, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	taskQueue.Start(ctx)
	defer taskQueue.Close()

	scheduler := gocron.NewScheduler(time.UTC)
	_, err = scheduler.Every(cfg.Cache.SweepInterval).Do(func() {
		evicted, err := cache.EvictExpired(context.Background())
		if err != nil {
			slog.Warn("status cache eviction failed", "error", err)
			return
		}
		if evicted > 0 {
			slog.Info("evicted expired status cache entries", "count", evicted)
		}
	})
	if err != nil {
		slog.Error("Failed to schedule cache eviction", "error", err)
		return
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	srv := server.New(log)
	srv.RegisterRouter(routes.NewHookRoutes(dispatchService, log))
	srv.RegisterRouter(routes.NewIntegrationRoutes(
		repo, settingsService, fieldsService, dispatchService, cache, log))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Starting server", "port", cfg.Server.Port)
	slog.Error("Closing server", "error", srv.Start(addr))
}

// senderFactory resolves the outbound transport for webhook-driven
// variants from the instance's own configuration.
func senderFactory(cfg config.Config) appservices.SenderFactory {
	return func(variant registry.Variant, instance *integration.Instance) chat.Sender {
		name := "webhook"
		if variant.WebhookField != "" {
			name = variant.WebhookField
		}
		url := strings.TrimSpace(instance.Prop(name))
		if url == "" {
			return nil
		}
		secret := strings.TrimSpace(instance.Prop("secret"))
		if secret == "" {
			secret = cfg.Notify.SigningSecret
		}
		return notify.Client{
			URL:         url,
			Secret:      secret,
			CloudEvents: instance.BoolProp("cloudevents"),
		}
	}
}

// commitStatusCalculator resolves the CI endpoint per integration at
// computation time, so configuration changes apply to the next refresh.
func commitStatusCalculator(repo *appservices.IntegrationRepository) statuscache.Calculator {
	return statuscache.CalculatorFunc(func(ctx context.Context, key statuscache.Key) (statuscache.Status, error) {
		instance, err := repo.Load(ctx, key.IntegrationID)
		if err != nil {
			return statuscache.StatusError, err
		}
		base := strings.TrimRight(strings.TrimSpace(instance.Prop("project_url")), "/")
		if base == "" {
			return statuscache.StatusError, fmt.Errorf("integration %d has no project_url", key.IntegrationID)
		}
		calculator := statuscache.NewRemoteCalculator(statuscache.RemoteConfig{
			StatusURL:    base + "/commit/{sha}/status",
			BuildPageURL: base + "/commit/{sha}",
			Username:     instance.Prop("username"),
			Password:     instance.Prop("password"),
		}, nil)
		return calculator.Calculate(ctx, key)
	})
}
