package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Beka01247/product-approvals/docs"
	"github.com/Beka01247/product-approvals/internal/queue"
	"github.com/Beka01247/product-approvals/internal/ratelimiter"
	"github.com/Beka01247/product-approvals/internal/repo"
	"github.com/Beka01247/product-approvals/internal/service"
	"github.com/Beka01247/product-approvals/internal/store/mongo"
	"github.com/Beka01247/product-approvals/internal/worker"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config          config
	logger          *zap.SugaredLogger
	rateLimiter     ratelimiter.Limiter
	storage         *mongo.Storage
	consumer        queue.Consumer
	publisher       queue.Publisher
	approvalRepo    repo.ApprovalRepository
	reviewService   *service.ReviewService
	ingestionWorker *worker.IngestionWorker
}

type config struct {
	addr        string
	env         string
	apiURL      string
	rateLimiter ratelimiter.Config
	mongo       mongoConfig
	kafka       kafkaConfig
	bulkPacing  time.Duration
}

type mongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type kafkaConfig struct {
	Brokers       []string
	ConsumerTopic string
	GroupID       string
	FeedbackTopic string
	PollWait      time.Duration
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)

		r.Route("/approvals", func(r chi.Router) {
			r.Get("/", app.listApprovalsHandler)
			r.Get("/stats", app.statisticsHandler)
			r.Post("/bulk-approve", app.bulkApproveHandler)

			r.Get("/{id}", app.getApprovalHandler)
			r.Post("/{id}/approve", app.approveHandler)
			r.Post("/{id}/reject", app.rejectHandler)
		})

		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	// docs
	docs.SwaggerInfo.Title = "Product Approvals"
	docs.SwaggerInfo.Description = "Approval workflow for inbound product events"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/api/v1"

	// worker
	if app.ingestionWorker != nil {
		if err := app.ingestionWorker.Start(); err != nil {
			return fmt.Errorf("failed to start ingestion worker: %w", err)
		}
	}

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		if app.ingestionWorker != nil {
			app.ingestionWorker.Stop()
		}

		if app.consumer != nil {
			app.consumer.Close()
			app.logger.Info("Kafka consumer closed gracefully")
		}
		if app.publisher != nil {
			app.publisher.Close()
			app.logger.Info("Kafka publisher closed gracefully")
		}

		if app.storage != nil {
			if err := app.storage.Close(ctx); err != nil {
				app.logger.Errorw("error closing MongoDB", "error", err)
			} else {
				app.logger.Info("MongoDB connection closed gracefully")
			}
		}

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server have started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
