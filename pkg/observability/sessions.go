package observability

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sessionCountTimeout bounds the store call made on each scrape.
const sessionCountTimeout = 2 * time.Second

// SessionCounter reports how many sessions the backing store holds.
type SessionCounter func(ctx context.Context) (int, error)

// sessionsCollector reads the session count from the store at scrape time,
// so sessions expired by TTL or deleted by another replica are never counted.
type sessionsCollector struct {
	desc *prometheus.Desc

	mu    sync.RWMutex
	count SessionCounter
}

func newSessionsCollector() *sessionsCollector {
	return &sessionsCollector{
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "active_sessions"),
			"Number of calculator sessions currently held by the session store.",
			nil, nil,
		),
	}
}

func (c *sessionsCollector) set(count SessionCounter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count = count
}

// Describe implements prometheus.Collector.
func (c *sessionsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector. Nothing is reported until a
// counter is tracked.
func (c *sessionsCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	count := c.count
	c.mu.RUnlock()
	if count == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sessionCountTimeout)
	defer cancel()

	n, err := count(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.desc, err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n))
}
