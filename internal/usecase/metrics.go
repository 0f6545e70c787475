package usecase

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var (
	repairCounterOnce sync.Once
	repairCounter     metric.Int64Counter
)

func rosterRepairCounter() metric.Int64Counter {
	repairCounterOnce.Do(func() {
		meter := otel.Meter("box-league/internal/usecase")
		counter, err := meter.Int64Counter(
			"boxleague.roster_repair.fallbacks",
			metric.WithDescription("Non-member ids replaced while building next week assignments, by fallback tier."),
		)
		if err != nil {
			counter = noop.Int64Counter{}
		}
		repairCounter = counter
	})
	return repairCounter
}

func recordRepairFallback(ctx context.Context, tier string) {
	rosterRepairCounter().Add(ctx, 1, metric.WithAttributes(attribute.String("tier", tier)))
}
