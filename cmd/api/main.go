package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/ojsouza/almoxarifado-api/internal/application/auth"
	"github.com/ojsouza/almoxarifado-api/internal/application/inventory"
	syncapp "github.com/ojsouza/almoxarifado-api/internal/application/sync"
	"github.com/ojsouza/almoxarifado-api/internal/infrastructure/cache"
	"github.com/ojsouza/almoxarifado-api/internal/infrastructure/enrich"
	"github.com/ojsouza/almoxarifado-api/internal/infrastructure/postgres"
	"github.com/ojsouza/almoxarifado-api/internal/infrastructure/remote"
	httpRouter "github.com/ojsouza/almoxarifado-api/internal/interfaces/http"
	"github.com/ojsouza/almoxarifado-api/pkg/config"
	"github.com/ojsouza/almoxarifado-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("criação do schema")
	}

	userRepo := postgres.NewUserRepository(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	recordRepo := postgres.NewRecordRepository(pool)
	queueRepo := postgres.NewSyncQueueRepository(pool)
	sysLogRepo := postgres.NewSystemLogRepository(pool)
	sysCfgRepo := postgres.NewConfigRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	store := cache.NewStore(itemRepo, recordRepo)

	// Backend remoto: nil quando não configurado (modo offline puro).
	var backend syncapp.Backend
	if client := remote.New(cfg.Remote, log); client != nil {
		backend = client
	}
	queue := syncapp.NewQueue(queueRepo, sysLogRepo, backend, cfg.Sync, log)
	queue.StartAutoDrain(ctx)
	manager := syncapp.NewManager(txRunner, store, queue, backend, sysCfgRepo, cfg.Remote, log)

	classifier := enrich.NewClassifier()
	chemicals := enrich.NewChemicalLookup()
	processUC := inventory.NewProcessTransactionUseCase(txRunner, itemRepo, store, queue, log)
	queryUC := inventory.NewQueryUseCase(txRunner, store, queue, log)
	importUC := inventory.NewImportUseCase(txRunner, store, classifier, chemicals, log)
	rebuilder := inventory.NewSnapshotRebuilder(txRunner, store)
	auditor := inventory.NewLedgerAuditor(balanceRepo, itemRepo, sysLogRepo, store, log)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almoxarifado API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		QueryUC:     queryUC,
		ProcessUC:   processUC,
		Rebuilder:   rebuilder,
		ImportUC:    importUC,
		Auditor:     auditor,
		SyncManager: manager,
		SyncQueue:   queue,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}
