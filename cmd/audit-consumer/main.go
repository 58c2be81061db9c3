// Command audit-consumer reads domain events from the broker and appends
// one line per event to the audit log.
package main

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/config"
	"github.com/pronoelite/pronoelite-api/internal/logger"
	"github.com/pronoelite/pronoelite-api/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.ServiceName+"-audit", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	audit := queue.NewAuditLog(cfg.AuditLogPath)
	log.Info("audit-consumer started",
		zap.String("backend", cfg.EventsBackend),
		zap.String("path", cfg.AuditLogPath))

	switch cfg.EventsBackend {
	case "rabbitmq", "amqp":
		err = queue.ConsumeAMQP(ctx, cfg.RabbitMQURL, cfg.EventsQueue, audit.Handle, log)
	case "kafka":
		r := queue.NewKafkaReader(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic, cfg.KafkaGroupID)
		defer r.Close()
		err = queue.ConsumeKafka(ctx, r, audit.Handle, log)
	default:
		log.Fatal("EVENTS_BACKEND must be rabbitmq or kafka", zap.String("backend", cfg.EventsBackend))
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("audit-consumer stopped", zap.Error(err))
	}
	log.Info("audit-consumer stopped")
}
