package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/iota-uz/semi-catalog/internal/bootstrap"
	"github.com/iota-uz/semi-catalog/internal/server"
	"github.com/iota-uz/semi-catalog/modules"
	"github.com/iota-uz/semi-catalog/modules/catalog"
	"github.com/iota-uz/semi-catalog/modules/catalog/infrastructure/storage"
	"github.com/iota-uz/semi-catalog/modules/catalog/presentation/controllers"
	"github.com/iota-uz/semi-catalog/pkg/application"
	"github.com/iota-uz/semi-catalog/pkg/configuration"
	"github.com/iota-uz/semi-catalog/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		tracingCleanup := logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.TempoURL,
		)
		defer tracingCleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to Tempo at " + conf.OpenTelemetry.TempoURL)
	}

	db, err := bootstrap.OpenCatalog(context.Background(), conf)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	artifacts, err := storage.NewFileStore(conf.UploadsPath)
	if err != nil {
		panic(err)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:   db.Pool,
		Logger: logger,
	})
	builtIn := modules.BuiltInModules(&catalog.ModuleOptions{
		Store:     db.Store,
		Artifacts: artifacts,
		ChunkSize: conf.Import.ChunkSize,
		Upload: controllers.UploadOptions{
			MaxUploadSize:   conf.MaxUploadSize,
			MaxUploadMemory: conf.MaxUploadMemory,
		},
	})
	if err := modules.Load(app, builtIn...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	if conf.MigrateOnStart && db.Pool != nil {
		if err := app.Migrations().Run(context.Background()); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          db.Pool,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := serverInstance.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("graceful shutdown failed")
		}
	}()

	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
