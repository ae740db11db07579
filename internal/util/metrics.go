package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartItemsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_items_added_total",
		Help: "Total number of successful add-to-cart operations",
	})

	CartAddFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_add_failed_total",
		Help: "Total number of rejected add-to-cart operations",
	}, []string{"reason"})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders placed",
	})

	CheckoutFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_latency_seconds",
		Help:    "Latency of checkout submissions",
		Buckets: prometheus.DefBuckets,
	})

	CatalogReloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_reloads_total",
		Help: "Total number of full catalog cache reloads",
	})

	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_size",
		Help: "Number of products currently in the catalog cache",
	})

	SettingsUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settings_updates_total",
		Help: "Total number of site settings merges",
	})

	SignInsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sign_ins_total",
		Help: "Total number of sign-in attempts",
	}, []string{"outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
