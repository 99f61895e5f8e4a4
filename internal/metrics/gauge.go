package metrics

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// scrapeTimeout bounds each backing store read made during a scrape.
const scrapeTimeout = 2 * time.Second

// SizeFunc reads a current size, such as a sorted set's cardinality or a
// consumer group's pending count.
type SizeFunc func(ctx context.Context) (int64, error)

type sizeCollector struct {
	name string
	desc *prometheus.Desc
	size SizeFunc
}

// RegisterSizeGauge exposes size as a gauge read on every scrape. A failed
// read omits the sample for that scrape.
func RegisterSizeGauge(reg prometheus.Registerer, name, help string, size SizeFunc) error {
	return reg.Register(&sizeCollector{
		name: name,
		desc: prometheus.NewDesc(name, help, nil, nil),
		size: size,
	})
}

func (c *sizeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *sizeCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	n, err := c.size(ctx)
	if err != nil {
		log.Printf("[Metrics] %s read FAILED: %v", c.name, err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n))
}
