package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
)

// Outcome labels for generation counters.
const (
	OutcomeGenerated = "generated"
	OutcomeCached    = "cached"
	OutcomeFailed    = "failed"
)

var (
	mu          sync.Mutex
	generations = map[generationKey]uint64{}
	fallbacks   uint64
	uploads     = map[string]uint64{}

	generationDuration = newHistogram([]float64{500, 1000, 2000, 5000, 10000, 20000, 30000, 60000, 120000})
)

type generationKey struct {
	kind    string
	outcome string
}

// IncGeneration counts one generation request by kind and outcome.
func IncGeneration(kind, outcome string) {
	mu.Lock()
	generations[generationKey{kind: kind, outcome: outcome}]++
	mu.Unlock()
}

// IncModelFallback counts a move to the next configured model.
func IncModelFallback() {
	mu.Lock()
	fallbacks++
	mu.Unlock()
}

// IncUpload counts one stored document by upload mode ("file" or "text").
func IncUpload(mode string) {
	mu.Lock()
	uploads[mode]++
	mu.Unlock()
}

// ObserveGenerationMs records a provider round-trip duration in milliseconds.
func ObserveGenerationMs(value float64) {
	if value < 0 {
		value = 0
	}
	generationDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	mu.Lock()
	genKeys := make([]generationKey, 0, len(generations))
	for k := range generations {
		genKeys = append(genKeys, k)
	}
	genCounts := make(map[generationKey]uint64, len(generations))
	for k, v := range generations {
		genCounts[k] = v
	}
	uploadCounts := make(map[string]uint64, len(uploads))
	for k, v := range uploads {
		uploadCounts[k] = v
	}
	fallbackCount := fallbacks
	mu.Unlock()

	sort.Slice(genKeys, func(i, j int) bool {
		if genKeys[i].kind != genKeys[j].kind {
			return genKeys[i].kind < genKeys[j].kind
		}
		return genKeys[i].outcome < genKeys[j].outcome
	})

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# HELP study_generation_total Generation requests by kind and outcome\n")
	fmt.Fprintf(&buf, "# TYPE study_generation_total counter\n")
	for _, k := range genKeys {
		fmt.Fprintf(&buf, "study_generation_total{kind=%q,outcome=%q} %d\n", k.kind, k.outcome, genCounts[k])
	}

	uploadModes := make([]string, 0, len(uploadCounts))
	for k := range uploadCounts {
		uploadModes = append(uploadModes, k)
	}
	sort.Strings(uploadModes)
	fmt.Fprintf(&buf, "# HELP study_upload_total Stored documents by upload mode\n")
	fmt.Fprintf(&buf, "# TYPE study_upload_total counter\n")
	for _, m := range uploadModes {
		fmt.Fprintf(&buf, "study_upload_total{mode=%q} %d\n", m, uploadCounts[m])
	}

	writeCounter(&buf, "study_model_fallback_total", "Times generation moved on to the next model", fallbackCount)
	writeHistogram(&buf, "study_generation_duration_ms", "Provider round-trip in milliseconds", generationDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in the first bucket whose bound covers it; Render accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
