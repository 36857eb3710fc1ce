package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"parking-garage/internal/garage"
)

// garageCollector reads the live garage status on every scrape.
type garageCollector struct {
	handler     *Handler
	capacity    *prometheus.Desc
	occupied    *prometheus.Desc
	free        *prometheus.Desc
	openTickets *prometheus.Desc
}

func newGarageCollector(h *Handler) *garageCollector {
	return &garageCollector{
		handler: h,
		capacity: prometheus.NewDesc("garage_tier_capacity",
			"Number of slots in the tier", []string{"tier"}, nil),
		occupied: prometheus.NewDesc("garage_tier_occupied",
			"Number of occupied slots in the tier", []string{"tier"}, nil),
		free: prometheus.NewDesc("garage_tier_free",
			"Number of free slots in the tier", []string{"tier"}, nil),
		openTickets: prometheus.NewDesc("garage_open_tickets",
			"Number of tickets not yet closed by an exit", nil, nil),
	}
}

func (c *garageCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capacity
	ch <- c.occupied
	ch <- c.free
	ch <- c.openTickets
}

func (c *garageCollector) Collect(ch chan<- prometheus.Metric) {
	var status garage.Status
	if !c.handler.holder.With(func(m *garage.InstrumentedManager) {
		status = m.Manager.Status()
	}) {
		return
	}

	for _, tier := range status.Tiers {
		name := tier.Size.String()
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(tier.Capacity), name)
		ch <- prometheus.MustNewConstMetric(c.occupied, prometheus.GaugeValue, float64(tier.Occupied), name)
		ch <- prometheus.MustNewConstMetric(c.free, prometheus.GaugeValue, float64(tier.Free), name)
	}
	ch <- prometheus.MustNewConstMetric(c.openTickets, prometheus.GaugeValue, float64(status.OpenTickets))
}

func newRegistry(h *Handler) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		newGarageCollector(h),
	)
	return reg
}
