package notify

import (
	"context"
	"encoding/json"
	"errors"

	"cardswap.backend/internal/domain/entities"
	"cardswap.backend/internal/infrastructure/metrics"
	"cardswap.backend/pkg/redis"
)

// publish is swapped in tests.
var publish = redis.Publish

// RedisNotifier publishes each transition as JSON on a pub/sub channel.
type RedisNotifier struct {
	channel string
}

func NewRedisNotifier(channel string) *RedisNotifier {
	return &RedisNotifier{channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, event entities.TransitionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return publish(ctx, n.channel, payload)
}

// MetricsNotifier counts transitions and raised fraud flags.
type MetricsNotifier struct {
	metrics *metrics.Metrics
}

func NewMetricsNotifier(m *metrics.Metrics) *MetricsNotifier {
	return &MetricsNotifier{metrics: m}
}

func (n *MetricsNotifier) Notify(_ context.Context, event entities.TransitionEvent) error {
	if n.metrics == nil {
		return nil
	}
	n.metrics.Transitions.WithLabelValues(event.Action).Inc()
	if event.Action == "fraud_flag.created" {
		n.metrics.FraudFlags.WithLabelValues(event.Metadata["flag_type"]).Inc()
	}
	return nil
}

// Sink is one named delivery target.
type Sink struct {
	Name     string
	Notifier interface {
		Notify(ctx context.Context, event entities.TransitionEvent) error
	}
}

// Multi delivers to every sink and joins the failures.
type Multi struct {
	sinks   []Sink
	metrics *metrics.Metrics
}

func NewMulti(m *metrics.Metrics, sinks ...Sink) *Multi {
	return &Multi{sinks: sinks, metrics: m}
}

func (n *Multi) Notify(ctx context.Context, event entities.TransitionEvent) error {
	var errs []error
	for _, s := range n.sinks {
		if err := s.Notifier.Notify(ctx, event); err != nil {
			if n.metrics != nil {
				n.metrics.NotifyFailures.WithLabelValues(s.Name).Inc()
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
