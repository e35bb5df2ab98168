package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wordmatch-service/internal/app"
	"wordmatch-service/internal/config"
	"wordmatch-service/internal/events"
	"wordmatch-service/internal/infra/gemini"
	"wordmatch-service/internal/logging"
	transport "wordmatch-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the matching game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	publisher, subscriber, err := events.NewPublisher(events.PublisherConfig{
		KafkaBrokers: cfg.Events.Brokers,
		TopicName:    cfg.Events.Topic,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer publisher.Close()

	opts := []app.ServiceOption{
		app.WithLogger(logger),
		app.WithSetWriter(st.sets),
		app.WithLexicon(st.lexicon),
		app.WithPublisher(publisher),
	}
	if cfg.GenAI.APIKey != "" {
		gen, err := gemini.NewGenerator(ctx, cfg.GenAI.APIKey, cfg.GenAI.Model, logger)
		if err != nil {
			return err
		}
		opts = append(opts, app.WithGenerator(gen))
	}
	service := app.NewGameService(st.sessions, st.sets, opts...)

	consumeCtx, stopConsuming := context.WithCancel(context.Background())
	defer stopConsuming()
	if subscriber != nil {
		if err := logChecks(consumeCtx, subscriber, cfg.Events.Topic, logger); err != nil {
			return err
		}
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := transport.NewRouter(service, logger, cfg.Lookup.Limit)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting matching service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server...")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// logChecks consumes in-process check events. Kafka deployments consume them
// elsewhere.
func logChecks(ctx context.Context, sub message.Subscriber, topic string, logger *zap.Logger) error {
	if topic == "" {
		topic = events.DefaultTopic
	}
	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}
	go func() {
		for msg := range messages {
			event, err := events.DecodeCheck(msg)
			if err != nil {
				logger.Warn("dropping malformed check event", zap.Error(err))
				msg.Ack()
				continue
			}
			logger.Info("answers checked",
				zap.String("game", event.GameID),
				zap.String("set", event.SetID),
				zap.String("player", event.PlayerID),
				zap.Int("correct", event.Result.CorrectCount),
				zap.Int("total", event.Result.Total))
			msg.Ack()
		}
	}()
	return nil
}
