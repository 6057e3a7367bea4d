package app

import (
	"fmt"

	"github.com/jwalitptl/health-navigator/internal/config"
	"github.com/jwalitptl/health-navigator/internal/repository"
	"github.com/jwalitptl/health-navigator/pkg/logger"
	"github.com/jwalitptl/health-navigator/pkg/messaging"
	"github.com/jwalitptl/health-navigator/pkg/metrics"
	"github.com/jwalitptl/health-navigator/pkg/worker"
)

// NewOutboxPublisher builds the processor that forwards committed outbox
// events to broker. The worker runs one against Redis; a single API
// instance without Redis runs its own against the in-process broker.
func NewOutboxPublisher(cfg config.OutboxConfig, outbox repository.OutboxRepository, broker messaging.Broker,
	l *logger.Logger, m *metrics.Metrics) (*worker.OutboxProcessor, error) {
	p, err := worker.NewOutboxProcessor(outbox, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.BatchSize,
		PollInterval:  cfg.PollInterval,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
	}, l, m)
	if err != nil {
		return nil, fmt.Errorf("invalid outbox config: %w", err)
	}
	return p, nil
}
