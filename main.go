package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"rental-booking/cmd"
	"rental-booking/internal/data/repository"
	"rental-booking/internal/usecase"
	"rental-booking/internal/wire"
	"rental-booking/pkg/cache"
	"rental-booking/pkg/database"
	"rental-booking/pkg/gateway"
	"rental-booking/pkg/mailer"
	"rental-booking/pkg/messaging"
	"rental-booking/pkg/storage"
	"rental-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if config.Database.AutoMigrate {
		stdDB := db.StdDB()
		applied, err := database.Migrate(stdDB)
		stdDB.Close()
		if err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Migrations applied", zap.Int("count", applied))
	}

	logger.Info("Database connected successfully")

	redisClient, err := cache.NewRedisClient(ctx, config.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	minioClient, err := storage.NewMinioClient(config.Storage)
	if err != nil {
		logger.Fatal("Failed to create object storage client", zap.Error(err))
	}
	if err := storage.EnsureBucket(ctx, minioClient, config.Storage.Bucket); err != nil {
		logger.Fatal("Failed to prepare storage bucket", zap.Error(err), zap.String("bucket", config.Storage.Bucket))
	}

	publisher := messaging.NewNopPublisher()
	if config.RabbitMQ.URL != "" {
		publisher, err = messaging.NewRabbitPublisher(config.RabbitMQ.URL, config.RabbitMQ.Exchange, logger)
		if err != nil {
			logger.Fatal("Failed to connect to rabbitmq", zap.Error(err))
		}
	} else {
		logger.Warn("RABBITMQ_URL not set, refund events will not be published")
	}
	defer publisher.Close()

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	infra := usecase.Infra{
		Gateways:  buildGateways(config, logger),
		Storage:   storage.NewMinioStorage(minioClient, config.Storage.Bucket),
		Mailer:    buildMailer(config, repos, logger),
		Publisher: publisher,
	}

	// Wire all dependencies
	app := wire.Wiring(repos, config, infra, cache.NewIdempotencyStore(redisClient), logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(app.Router, config.App, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}

func buildGateways(config *utils.Config, logger *zap.Logger) gateway.Registry {
	httpClient := &http.Client{Timeout: config.Gateway.Timeout}
	registry := gateway.Registry{}

	if config.Gateway.StripeKey != "" {
		registry[gateway.ProviderStripe] = gateway.NewStripeGateway(config.Gateway.StripeKey, config.Gateway.StripeURL, httpClient)
	}

	if config.Gateway.PayPalClientID != "" {
		client, err := gateway.NewPayPalClient(config.Gateway.PayPalClientID, config.Gateway.PayPalSecret, config.Gateway.PayPalLive, httpClient)
		if err != nil {
			logger.Error("PayPal gateway disabled", zap.Error(err))
		} else {
			registry[gateway.ProviderPayPal] = gateway.NewPayPalGateway(client)
		}
	}

	logger.Info("Payment gateways configured", zap.Int("count", len(registry)))
	return registry
}

func buildMailer(config *utils.Config, repos *repository.Repository, logger *zap.Logger) mailer.Sender {
	var transport mailer.Transport = mailer.NewLogTransport(logger)
	if config.Email.Host != "" {
		transport = mailer.NewSMTPTransport(config.Email)
	} else {
		logger.Warn("SMTP_HOST not set, emails are written to the log")
	}

	return mailer.NewChain(logger,
		mailer.NewTemplateProvider(repos.EmailTemplate, transport),
		mailer.NewFallbackProvider(transport),
	)
}
