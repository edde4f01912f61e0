package handler

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/unimart/storefront/internal/domain/offer"
)

const meterName = "github.com/unimart/storefront/internal/handler"

type metrics struct {
	ordersPlaced  metric.Int64Counter
	offersApplied metric.Int64Counter
	orderRevenue  metric.Float64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	meter := mp.Meter(meterName)

	var (
		m   metrics
		err error
	)
	if m.ordersPlaced, err = meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders placed"),
	); err != nil {
		return nil, errors.Wrap(err, "orders placed counter")
	}
	if m.offersApplied, err = meter.Int64Counter("storefront.offers.applied",
		metric.WithDescription("Offers applied to placed orders"),
	); err != nil {
		return nil, errors.Wrap(err, "offers applied counter")
	}
	if m.orderRevenue, err = meter.Float64Counter("storefront.orders.revenue",
		metric.WithDescription("Payable total of placed orders"),
	); err != nil {
		return nil, errors.Wrap(err, "order revenue counter")
	}
	return &m, nil
}

// recordOrder counts a placed order and every offer that priced it.
func (m *metrics) recordOrder(ctx context.Context, t offer.Totals) {
	m.ordersPlaced.Add(ctx, 1)
	m.orderRevenue.Add(ctx, t.Payable().InexactFloat64())

	for _, l := range t.Lines {
		if l.AppliedOffer != nil {
			m.offersApplied.Add(ctx, 1, metric.WithAttributes(
				attribute.String("offer.scope", string(l.AppliedOffer.Scope.Type())),
			))
		}
	}
	if t.Cart.AppliedOffer != nil {
		m.offersApplied.Add(ctx, 1, metric.WithAttributes(
			attribute.String("offer.scope", string(offer.ScopeCart)),
		))
	}
}
