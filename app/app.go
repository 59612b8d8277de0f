package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"maintenance-marketplace-api/internal/config"
	"maintenance-marketplace-api/internal/controller"
	"maintenance-marketplace-api/internal/logger"
	"maintenance-marketplace-api/internal/repo"
	"maintenance-marketplace-api/internal/service"
	"maintenance-marketplace-api/pkg/http_server"
	"maintenance-marketplace-api/pkg/postgres"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/labstack/echo"
	"github.com/rs/zerolog"
)

func runMigrations(postgresDB *postgres.Postgres, log zerolog.Logger) error {
	driver, err := pgmigrate.WithInstance(postgresDB.Database, &pgmigrate.Config{})
	if err != nil {
		return err
	}

	migrations, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	if err := migrations.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Info().Msg("no change made by migration scripts")

			return nil
		}

		return err
	}

	return nil
}

func Run() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	log.Info().Msg("connecting database")
	postgresDB, err := postgres.NewDB(cfg.DB.DSN, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	defer postgresDB.Close()

	log.Info().Msg("running migrations")
	if err := runMigrations(postgresDB, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	repositories := repo.NewRepositories(postgresDB)
	notifier := service.NewLogNotifier(log)
	services := service.NewServices(repositories, notifier)

	handler := echo.New()
	controller.SetupRoutesHandlers(handler, services)

	address := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", address).Msg("starting server")
	httpServer := http_server.New(handler, address)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info().Str("signal", s.String()).Msg("got signal")
	case err = <-httpServer.Notify():
		log.Error().Err(err).Msg("server stopped")
	}

	log.Info().Msg("shutting down")
	if err := httpServer.Shutdown(); err != nil {
		log.Error().Err(err).Msg("shutdown error")

		return
	}
	log.Info().Msg("successful shutdown")
}
