package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuotesTotal counts fee quotes by facility and outcome kind.
	QuotesTotal *prometheus.CounterVec
	// QuoteAmount records the distribution of quoted fees.
	QuoteAmount *prometheus.HistogramVec
	// FacilityReloadsTotal counts facility table reloads by outcome.
	FacilityReloadsTotal *prometheus.CounterVec
	// FacilitiesLoaded reports the size of the active facility table.
	FacilitiesLoaded prometheus.Gauge
)

// MustRegisterDomainMetrics initialises and registers the parking fee collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuotesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fee_quotes_total",
			Help:      "Count of fee quotes by facility and result.",
		}, []string{"facility", "result"})
		QuoteAmount = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fee_quote_amount",
			Help:      "Distribution of quoted fees in currency units.",
			Buckets:   []float64{0, 5, 10, 20, 40, 80, 160, 320, 640},
		}, []string{"facility"})
		FacilityReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "facility_reloads_total",
			Help:      "Count of facility table reloads by result.",
		}, []string{"result"})
		FacilitiesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "facilities_loaded",
			Help:      "Number of facilities in the active pricing table.",
		})

		mustRegisterCollector(reg, QuotesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuotesTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteAmount, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				QuoteAmount = v
			}
		})
		mustRegisterCollector(reg, FacilityReloadsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				FacilityReloadsTotal = v
			}
		})
		mustRegisterCollector(reg, FacilitiesLoaded, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Gauge); ok {
				FacilitiesLoaded = v
			}
		})
	})
}

// ObserveQuote records a quote outcome. It is a no-op until MustRegisterDomainMetrics runs.
func ObserveQuote(facility, result string, amount float64) {
	if QuotesTotal == nil {
		return
	}
	QuotesTotal.WithLabelValues(facility, result).Inc()
	if result == "ok" && QuoteAmount != nil {
		QuoteAmount.WithLabelValues(facility).Observe(amount)
	}
}

// ObserveReload records a reload outcome and the resulting table size.
func ObserveReload(result string, loaded int) {
	if FacilityReloadsTotal == nil {
		return
	}
	FacilityReloadsTotal.WithLabelValues(result).Inc()
	if FacilitiesLoaded != nil {
		FacilitiesLoaded.Set(float64(loaded))
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register metric: %w", err))
	}
}
