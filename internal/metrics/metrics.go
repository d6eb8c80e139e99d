// Package metrics holds the domain Prometheus collectors and the scrape handler.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services report domain events through.
type Recorder interface {
	ListingCreated(category string)
	ListingCreateFailed(stage string)
	AuthEvent(event, outcome string)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	listingsCreated *prometheus.CounterVec
	listingFailures *prometheus.CounterVec
	authEvents      *prometheus.CounterVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector registers the domain collectors on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		listingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tarvee_listings_created_total",
			Help: "Listings successfully created, by category.",
		}, []string{"category"}),
		listingFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tarvee_listing_create_failures_total",
			Help: "Listing creations that failed, by stage (validation, upload, url, write).",
		}, []string{"stage"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tarvee_auth_events_total",
			Help: "Authentication attempts by event and outcome.",
		}, []string{"event", "outcome"}),
	}

	for _, col := range []prometheus.Collector{c.listingsCreated, c.listingFailures, c.authEvents} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) ListingCreated(category string) {
	c.listingsCreated.WithLabelValues(category).Inc()
}

func (c *Collector) ListingCreateFailed(stage string) {
	c.listingFailures.WithLabelValues(stage).Inc()
}

func (c *Collector) AuthEvent(event, outcome string) {
	c.authEvents.WithLabelValues(event, outcome).Inc()
}

// Handler serves the gatherer's metrics in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

// Nop discards every event.
type Nop struct{}

func (Nop) ListingCreated(string)      {}
func (Nop) ListingCreateFailed(string) {}
func (Nop) AuthEvent(string, string)   {}
