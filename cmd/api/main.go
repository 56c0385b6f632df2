package main

import (
	"context"
	"strings"
	"time"

	"github.com/Beka01247/product-approvals/internal/env"
	"github.com/Beka01247/product-approvals/internal/queue"
	"github.com/Beka01247/product-approvals/internal/ratelimiter"
	"github.com/Beka01247/product-approvals/internal/service"
	"github.com/Beka01247/product-approvals/internal/store/mongo"
	"github.com/Beka01247/product-approvals/internal/worker"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const version = "0.0.0"

//	@title			Product Approvals
//	@description	Approval workflow for inbound product events

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath	/api/v1
func main() {
	_ = godotenv.Load()

	cfg := config{
		addr:   env.GetString("ADDR", ":8080"),
		apiURL: env.GetString("EXTERNAL_URL", "localhost:8080"),
		env:    env.GetString("ENV", "development"),
		rateLimiter: ratelimiter.Config{
			RequestsPerTimeFrame: env.GetInt("RATELIMITER_REQUESTS_COUNT", 20),
			TimeFrame:            time.Second * 5,
			Enabled:              env.GetBool("RATE_LIMITER_ENABLED", true),
		},
		mongo: mongoConfig{
			URI:      env.GetString("MONGO_URI", "mongodb://localhost:27017"),
			Database: env.GetString("MONGO_DATABASE", "approvals"),
			Timeout:  time.Second * 10,
		},
		kafka: kafkaConfig{
			Brokers:       strings.Split(env.GetString("KAFKA_BROKERS", "localhost:9092"), ","),
			ConsumerTopic: env.GetString("KAFKA_CONSUMER_TOPIC", "products"),
			GroupID:       env.GetString("KAFKA_GROUP_ID", "product-approvals"),
			FeedbackTopic: env.GetString("KAFKA_FEEDBACK_TOPIC", "product-feedback"),
			PollWait:      time.Second,
		},
		bulkPacing: time.Millisecond * time.Duration(env.GetInt("BULK_PACING_MS", 100)),
	}

	// logger
	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	// rate limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	// storage
	storage, err := mongo.New(mongo.Config{
		URI:      cfg.mongo.URI,
		Database: cfg.mongo.Database,
		Timeout:  cfg.mongo.Timeout,
	})
	if err != nil {
		logger.Fatalw("failed to connect to MongoDB", "error", err)
	}

	logger.Info("connected to MongoDB")

	// create indexes
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := storage.CreateIndexes(ctx); err != nil {
		logger.Warnw("failed to create indexes", "error", err)
	} else {
		logger.Info("MongoDB indexes created successfully")
	}

	// repos
	approvalRepo := mongo.NewApprovalRepository(storage.Database())

	// kafka clients
	consumer, err := queue.NewKafkaConsumer(queue.ConsumerConfig{
		Brokers:  cfg.kafka.Brokers,
		Topic:    cfg.kafka.ConsumerTopic,
		GroupID:  cfg.kafka.GroupID,
		PollWait: cfg.kafka.PollWait,
	})
	if err != nil {
		logger.Fatalw("failed to connect Kafka consumer", "error", err)
	}

	publisher, err := queue.NewKafkaPublisher(queue.PublisherConfig{
		Brokers: cfg.kafka.Brokers,
	})
	if err != nil {
		logger.Fatalw("failed to connect Kafka publisher", "error", err)
	}

	logger.Info("connected to Kafka")

	ingestionService := service.NewIngestionService(
		approvalRepo,
		storage,
		logger,
	)

	reviewService := service.NewReviewService(
		approvalRepo,
		storage,
		publisher,
		cfg.kafka.FeedbackTopic,
		cfg.bulkPacing,
		logger,
	)

	ingestionWorker := worker.NewIngestionWorker(ingestionService, consumer, logger)

	app := &application{
		config:          cfg,
		logger:          logger,
		rateLimiter:     rateLimiter,
		storage:         storage,
		consumer:        consumer,
		publisher:       publisher,
		approvalRepo:    approvalRepo,
		reviewService:   reviewService,
		ingestionWorker: ingestionWorker,
	}

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
