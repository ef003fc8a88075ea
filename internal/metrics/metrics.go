// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "restaurant",
		Name:      "orders_created_total",
		Help:      "Orders successfully placed by customers.",
	})

	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restaurant",
		Name:      "order_status_transitions_total",
		Help:      "Order status changes, by target status.",
	}, []string{"status"})

	DiscountClaims = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restaurant",
		Name:      "discount_claims_total",
		Help:      "Discount code applications, by outcome.",
	}, []string{"outcome"})

	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restaurant",
		Name:      "auth_failures_total",
		Help:      "Rejected authentication attempts, by reason.",
	}, []string{"reason"})
)

// Handler exposes the default registry in the prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
