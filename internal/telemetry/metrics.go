package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMeterProvider initializes the Prometheus exporter and MeterProvider.
// It returns an http.Handler for the /metrics endpoint and a shutdown function.
func InitMeterProvider(serviceName, serviceVersion string) (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(newResource(serviceName, serviceVersion)),
	)
	otel.SetMeterProvider(mp)

	return promhttp.Handler(), mp.Shutdown, nil
}

// ShopMetrics are the storefront business counters. A nil *ShopMetrics
// records nothing.
type ShopMetrics struct {
	ordersPlaced      metric.Int64Counter
	orderRevenue      metric.Float64Counter
	checkoutFailures  metric.Int64Counter
	couponEvaluations metric.Int64Counter
	assistantRequests metric.Int64Counter
}

// NewShopMetrics registers the counters on the global MeterProvider, so it
// must be called after InitMeterProvider.
func NewShopMetrics() (*ShopMetrics, error) {
	meter := otel.Meter("github.com/joao-fontenele/digitalshop")

	var (
		m   ShopMetrics
		err error
	)
	if m.ordersPlaced, err = meter.Int64Counter("shop.orders.placed",
		metric.WithDescription("Orders persisted at checkout")); err != nil {
		return nil, err
	}
	if m.orderRevenue, err = meter.Float64Counter("shop.orders.revenue",
		metric.WithDescription("Sum of order totals after discount"), metric.WithUnit("NPR")); err != nil {
		return nil, err
	}
	if m.checkoutFailures, err = meter.Int64Counter("shop.checkout.failures",
		metric.WithDescription("Checkout attempts that did not produce an order")); err != nil {
		return nil, err
	}
	if m.couponEvaluations, err = meter.Int64Counter("shop.coupon.evaluations",
		metric.WithDescription("Coupon evaluations by outcome")); err != nil {
		return nil, err
	}
	if m.assistantRequests, err = meter.Int64Counter("shop.assistant.requests",
		metric.WithDescription("Assistant chat requests by outcome")); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *ShopMetrics) OrderPlaced(ctx context.Context, total decimal.Decimal, couponUsed bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("coupon", couponUsed))
	m.ordersPlaced.Add(ctx, 1, attrs)
	m.orderRevenue.Add(ctx, total.InexactFloat64(), attrs)
}

func (m *ShopMetrics) CheckoutFailed(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.checkoutFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *ShopMetrics) CouponEvaluated(ctx context.Context, valid bool, reason string) {
	if m == nil {
		return
	}
	m.couponEvaluations.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("valid", valid),
		attribute.String("reason", reason),
	))
}

func (m *ShopMetrics) AssistantRequest(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.assistantRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
