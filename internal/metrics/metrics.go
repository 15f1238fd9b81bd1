// Package metrics exposes the latest polled snapshot in Prometheus format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/CristiGvl/picoDiskMon/internal/poller"
)

const namespace = "picodiskmon"

// StatusSource provides the poller status read at scrape time
type StatusSource interface {
	Status() poller.Status
}

// Collector is a prometheus.Collector for the polled device
type Collector struct {
	source StatusSource

	active       *prometheus.Desc
	stale        *prometheus.Desc
	totalBytes   *prometheus.Desc
	usedBytes    *prometheus.Desc
	freeBytes    *prometheus.Desc
	usagePercent *prometheus.Desc
	readsTotal   *prometheus.Desc
	writesTotal  *prometheus.Desc
	readBytes    *prometheus.Desc
	writtenBytes *prometheus.Desc
	readSeconds  *prometheus.Desc
	writeSeconds *prometheus.Desc

	sampleErrors prometheus.Counter
}

// NewCollector creates a collector reading from source
func NewCollector(source StatusSource) *Collector {
	labels := []string{"device", "mountpoint", "fstype"}
	desc := func(name, help string, variable []string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "disk", name), help, variable, nil)
	}

	return &Collector{
		source: source,
		active: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "poller", "active"),
			"Whether the poller is currently sampling a device", nil, nil,
		),
		stale: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "poller", "stale"),
			"Whether the last sample failed and the exported snapshot is outdated", nil, nil,
		),
		totalBytes:   desc("total_bytes", "Total capacity of the volume", labels),
		usedBytes:    desc("used_bytes", "Used capacity of the volume", labels),
		freeBytes:    desc("free_bytes", "Free capacity of the volume", labels),
		usagePercent: desc("usage_percent", "Host reported usage percentage", labels),
		readsTotal:   desc("reads_completed_total", "Read operations since boot", labels),
		writesTotal:  desc("writes_completed_total", "Write operations since boot", labels),
		readBytes:    desc("read_bytes_total", "Bytes read since boot", labels),
		writtenBytes: desc("written_bytes_total", "Bytes written since boot", labels),
		readSeconds:  desc("read_time_seconds_total", "Time spent reading since boot", labels),
		writeSeconds: desc("write_time_seconds_total", "Time spent writing since boot", labels),
		sampleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "sample_errors_total",
			Help:      "Samples that failed and left the previous snapshot in place",
		}),
	}
}

// Observe counts failed samples. It is meant to be registered with
// poller.Subscribe.
func (c *Collector) Observe(st poller.Status) {
	if st.LastError != "" {
		c.sampleErrors.Inc()
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.active, c.stale,
		c.totalBytes, c.usedBytes, c.freeBytes, c.usagePercent,
		c.readsTotal, c.writesTotal, c.readBytes, c.writtenBytes, c.readSeconds, c.writeSeconds,
	} {
		ch <- d
	}
	c.sampleErrors.Describe(ch)
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.source.Status()

	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, boolToFloat(st.Active))
	ch <- prometheus.MustNewConstMetric(c.stale, prometheus.GaugeValue, boolToFloat(st.Stale))
	c.sampleErrors.Collect(ch)

	s := st.Snapshot
	if s == nil {
		return
	}

	lv := []string{s.Device, s.Mountpoint, s.Filesystem}
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, lv...)
	}
	counter := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, lv...)
	}

	gauge(c.totalBytes, float64(s.Total))
	gauge(c.usedBytes, float64(s.Used))
	gauge(c.freeBytes, float64(s.Free))
	gauge(c.usagePercent, s.UsedPercent)
	counter(c.readsTotal, float64(s.ReadCount))
	counter(c.writesTotal, float64(s.WriteCount))
	counter(c.readBytes, float64(s.ReadBytes))
	counter(c.writtenBytes, float64(s.WriteBytes))
	counter(c.readSeconds, float64(s.ReadTime)/1000)
	counter(c.writeSeconds, float64(s.WriteTime)/1000)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
