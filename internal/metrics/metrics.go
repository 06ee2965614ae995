// Package metrics counts dispatched intents and tracks badge values.
//
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shopsync"

// Recorder owns a private registry so tests and CLI runs do not share state.
type Recorder struct {
	registry *prometheus.Registry
	intents  *prometheus.CounterVec
	cart     prometheus.Gauge
	wishlist prometheus.Gauge
}

// New creates a Recorder with its collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_total",
			Help:      "Intents dispatched, by kind and outcome code.",
		}, []string{"intent", "outcome"}),
		cart: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_count",
			Help:      "Sum of cart line quantities after the last intent.",
		}),
		wishlist: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "wishlist_count",
			Help:      "Wishlist entries after the last intent.",
		}),
	}
	r.registry.MustRegister(r.intents, r.cart, r.wishlist)
	return r
}

// Intent counts one dispatched intent. outcome is "ok" or an error code.
func (r *Recorder) Intent(kind, outcome string) {
	if r == nil {
		return
	}
	r.intents.WithLabelValues(kind, outcome).Inc()
}

// Badges records the badge values shown after an intent.
func (r *Recorder) Badges(cart, wishlist int) {
	if r == nil {
		return
	}
	r.cart.Set(float64(cart))
	r.wishlist.Set(float64(wishlist))
}

// Registry exposes the registry for scraping or inspection.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes every metric in text exposition format to path, for
// the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
