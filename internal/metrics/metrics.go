// Package metrics exposes service metrics in Prometheus exposition
// format.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// Registry holds every registered metric.
type Registry struct {
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	mu         sync.RWMutex
}

// Counter is a monotonically increasing metric.
type Counter struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Gauge is a metric that can go up and down.
type Gauge struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Histogram tracks a distribution over fixed buckets.
type Histogram struct {
	Name    string
	Help    string
	Labels  []string
	Buckets []float64
	counts  map[string][]int
	sums    map[string]float64
	totals  map[string]int
	mu      sync.RWMutex
}

var (
	registry *Registry
	once     sync.Once
)

// GetRegistry returns the process-wide registry.
func GetRegistry() *Registry {
	once.Do(func() {
		registry = &Registry{
			counters:   make(map[string]*Counter),
			gauges:     make(map[string]*Gauge),
			histograms: make(map[string]*Histogram),
		}
		initDefaultMetrics()
	})
	return registry
}

func initDefaultMetrics() {
	registry.NewCounter("turnjob_http_requests_total", "Total HTTP requests", []string{"method", "path", "status"})

	registry.NewHistogram("turnjob_http_request_duration_seconds", "HTTP request latency",
		[]string{"method", "path"},
		[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0})

	registry.NewCounter("turnjob_preference_validations_total", "Preference validations by outcome", []string{"status"})

	registry.NewCounter("turnjob_schedule_generations_total", "Schedule generation runs", []string{"status"})

	registry.NewHistogram("turnjob_schedule_generation_duration_seconds", "Schedule generation latency",
		[]string{},
		[]float64{0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0})

	registry.NewGauge("turnjob_underfilled_slots", "Underfilled slots in the last generation", []string{"tenant_id"})

	registry.NewGauge("turnjob_equity_spread_hours", "Equity spread of the last generation", []string{"tenant_id"})
}

// NewCounter registers a counter.
func (r *Registry) NewCounter(name, help string, labels []string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &Counter{Name: name, Help: help, Labels: labels, values: make(map[string]float64)}
	r.counters[name] = c
	return c
}

// NewGauge registers a gauge.
func (r *Registry) NewGauge(name, help string, labels []string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := &Gauge{Name: name, Help: help, Labels: labels, values: make(map[string]float64)}
	r.gauges[name] = g
	return g
}

// NewHistogram registers a histogram.
func (r *Registry) NewHistogram(name, help string, labels []string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := &Histogram{
		Name:    name,
		Help:    help,
		Labels:  labels,
		Buckets: buckets,
		counts:  make(map[string][]int),
		sums:    make(map[string]float64),
		totals:  make(map[string]int),
	}
	r.histograms[name] = h
	return h
}

// GetCounter looks a counter up by name.
func (r *Registry) GetCounter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// GetGauge looks a gauge up by name.
func (r *Registry) GetGauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// GetHistogram looks a histogram up by name.
func (r *Registry) GetHistogram(name string) *Histogram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.histograms[name]
}

// Inc adds one to the counter.
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add adds value to the counter.
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[labelKey(labelValues)] += value
}

// Set sets the gauge.
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] = value
}

// Observe records one sample.
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := labelKey(labelValues)
	if h.counts[key] == nil {
		h.counts[key] = make([]int, len(h.Buckets))
	}
	for i, b := range h.Buckets {
		if value <= b {
			h.counts[key][i]++
		}
	}
	h.sums[key] += value
	h.totals[key]++
}

func labelKey(values []string) string {
	return strings.Join(values, "\x00")
}

func labelPairs(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	pairs := make([]string, len(names))
	for i, n := range names {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		pairs[i] = fmt.Sprintf("%s=%q", n, v)
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

// Handler serves the registry in Prometheus exposition format.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, GetRegistry().Render())
	})
}

// Render serializes every metric.
func (r *Registry) Render() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder

	counterNames := sortedKeys(r.counters)
	for _, name := range counterNames {
		c := r.counters[name]
		c.mu.RLock()
		fmt.Fprintf(&sb, "# HELP %s %s\n# TYPE %s counter\n", c.Name, c.Help, c.Name)
		for _, key := range sortedKeys(c.values) {
			values := splitKey(key)
			fmt.Fprintf(&sb, "%s%s %g\n", c.Name, labelPairs(c.Labels, values), c.values[key])
		}
		c.mu.RUnlock()
	}

	gaugeNames := sortedKeys(r.gauges)
	for _, name := range gaugeNames {
		g := r.gauges[name]
		g.mu.RLock()
		fmt.Fprintf(&sb, "# HELP %s %s\n# TYPE %s gauge\n", g.Name, g.Help, g.Name)
		for _, key := range sortedKeys(g.values) {
			values := splitKey(key)
			fmt.Fprintf(&sb, "%s%s %g\n", g.Name, labelPairs(g.Labels, values), g.values[key])
		}
		g.mu.RUnlock()
	}

	histNames := sortedKeys(r.histograms)
	for _, name := range histNames {
		h := r.histograms[name]
		h.mu.RLock()
		fmt.Fprintf(&sb, "# HELP %s %s\n# TYPE %s histogram\n", h.Name, h.Help, h.Name)
		for _, key := range sortedKeys(h.totals) {
			values := splitKey(key)
			for i, b := range h.Buckets {
				le := append(append([]string{}, values...), fmt.Sprintf("%g", b))
				names := append(append([]string{}, h.Labels...), "le")
				fmt.Fprintf(&sb, "%s_bucket%s %d\n", h.Name, labelPairs(names, le), h.counts[key][i])
			}
			fmt.Fprintf(&sb, "%s_sum%s %g\n", h.Name, labelPairs(h.Labels, values), h.sums[key])
			fmt.Fprintf(&sb, "%s_count%s %d\n", h.Name, labelPairs(h.Labels, values), h.totals[key])
		}
		h.mu.RUnlock()
	}

	return sb.String()
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func splitKey(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, "\x00")
}

// RecordRequestMetrics records one handled HTTP request.
func RecordRequestMetrics(method, path string, status int, duration time.Duration) {
	r := GetRegistry()
	if c := r.GetCounter("turnjob_http_requests_total"); c != nil {
		c.Inc(method, path, fmt.Sprintf("%d", status))
	}
	if h := r.GetHistogram("turnjob_http_request_duration_seconds"); h != nil {
		h.Observe(duration.Seconds(), method, path)
	}
}

// RecordValidation records one preference validation verdict.
func RecordValidation(status string) {
	if c := GetRegistry().GetCounter("turnjob_preference_validations_total"); c != nil {
		c.Inc(status)
	}
}

// RecordGeneration records one generation run.
func RecordGeneration(tenantID, status string, duration time.Duration, underfilled int, equitySpread float64) {
	r := GetRegistry()
	if c := r.GetCounter("turnjob_schedule_generations_total"); c != nil {
		c.Inc(status)
	}
	if h := r.GetHistogram("turnjob_schedule_generation_duration_seconds"); h != nil {
		h.Observe(duration.Seconds())
	}
	if g := r.GetGauge("turnjob_underfilled_slots"); g != nil {
		g.Set(float64(underfilled), tenantID)
	}
	if g := r.GetGauge("turnjob_equity_spread_hours"); g != nil {
		g.Set(equitySpread, tenantID)
	}
}
