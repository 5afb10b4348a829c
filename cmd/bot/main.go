package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/starline-labs/storefront-desk/internal/api/http"
	"github.com/starline-labs/storefront-desk/internal/api/http/handlers"
	"github.com/starline-labs/storefront-desk/internal/auth"
	"github.com/starline-labs/storefront-desk/internal/config"
	"github.com/starline-labs/storefront-desk/internal/engine"
	"github.com/starline-labs/storefront-desk/internal/events"
	"github.com/starline-labs/storefront-desk/internal/funnel"
	"github.com/starline-labs/storefront-desk/internal/observability"
	"github.com/starline-labs/storefront-desk/internal/persistence"
	"github.com/starline-labs/storefront-desk/internal/repository"
	"github.com/starline-labs/storefront-desk/internal/service"
	"github.com/starline-labs/storefront-desk/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Provisioning mode: print the bcrypt hash for AUTH_STOREFRONT_KEY_HASH
	// and exit without starting the server.
	if len(os.Args) > 1 && os.Args[1] == "hash-storefront-key" {
		if len(os.Args) != 3 {
			log.Fatal("usage: bot hash-storefront-key <key>")
		}
		hash, err := auth.HashKey(os.Args[2], cfg.Auth.BcryptCost)
		if err != nil {
			log.Fatalf("failed to hash storefront key: %v", err)
		}
		fmt.Println(hash)
		return
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	actorRepo := repository.NewActorRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	priceRepo := repository.NewPriceRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	replyRepo := repository.NewTicketReplyRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	roleService := service.NewRoleService(roleRepo, cfg.Bot.RootAdminID, logger)
	priceService := service.NewPriceService(priceRepo, roleService, logger)
	if err := priceService.Seed(ctx); err != nil {
		logger.Fatal("failed to seed prices", zap.Error(err))
	}
	orderService := service.NewOrderService(orderRepo, actorRepo, priceService, roleService, dispatcher, cfg.Payment, logger)
	ticketService := service.NewTicketService(ticketRepo, replyRepo, actorRepo, roleService, dispatcher, logger)

	sender := transport.NewLoggingTransport(logger)
	notifications := service.NewNotificationService(dispatcher, sender, roleService, logger, metrics)

	funnelStore := funnel.NewStore()
	eng := engine.New(funnelStore, orderService, ticketService, priceService, roleService, actorRepo, sender, cfg.Payment, logger, metrics)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokenManager, roleService)
	apiKeyMiddleware := auth.NewAPIKeyMiddleware(cfg.Auth.StorefrontKeyHash)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Storefront:     handlers.NewStorefrontHandler(orderService, sender, logger),
		Prices:         handlers.NewPricesHandler(priceService),
		Tokens:         handlers.NewTokensHandler(tokenManager, roleService),
		Updates:        handlers.NewUpdatesHandler(eng),
		AuthMiddleware: authMiddleware,
		APIKey:         apiKeyMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	notifications.Drain()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
