package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ThermalVision/internal/config"
	"ThermalVision/pkg/events"
	"ThermalVision/pkg/impulse"
	"ThermalVision/pkg/log"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	logger := log.NewLogger()
	if envErr != nil {
		logger.Warnf("No .env file loaded, using process environment: %v", envErr)
	}

	cfg := config.Load(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	module := impulse.NewONNXModule(logger, impulse.ONNXConfig{
		ModelPath:         cfg.ModelPath,
		MetadataPath:      cfg.ModelMetadataPath,
		SharedLibraryPath: cfg.OnnxRuntimeLibPath,
	})
	defer module.Close()

	classifier := impulse.New(logger, module, cfg.ClassifierDebug)

	go func() {
		if err := module.Load(); err != nil {
			logger.Fatalf("Failed to load classifier model: %v", err)
		}
	}()
	go func() {
		if err := classifier.Initialize(ctx); err != nil {
			logger.Warnf("Classifier initialization interrupted: %v", err)
		}
	}()

	var publisher *events.Publisher
	if cfg.MQTTBroker != "" {
		p, err := events.Connect(logger, events.Config{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
			Topic:    cfg.MQTTTopicDetection,
		})
		if err != nil {
			logger.Errorf("Detection events disabled: %v", err)
		} else {
			publisher = p
			defer publisher.Close()
			go publisher.Start(ctx)
		}
	}

	fiberApp := config.NewFiber(logger, cfg)

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithConfig(cfg),
		config.WithValidator(config.NewValidator()),
		config.WithMiddleware(),
		config.WithClassifier(classifier),
		config.WithPublisher(publisher),
		config.WithUtils(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Infof("Server started on port %s", cfg.AppPort)

	<-ctx.Done()
	logger.Info("Shutting down server...")

	if err := server.Shutdown(5 * time.Second); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
