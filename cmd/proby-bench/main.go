// Package main provides proby-bench, a workload benchmark for probemap.
//
// It runs timed insert/lookup/erase/reinsert phases against in-memory
// tables of configurable sizes and writes a markdown report plus a
// machine-readable JSON file per invocation.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/calvinalkan/probemap"
)

// Config holds all benchmark configuration.
type Config struct {
	Counts       []int
	OutDir       string
	Runs         int
	ErasePercent int
}

// PhaseStats aggregates one workload phase across runs.
type PhaseStats struct {
	Label         string  `json:"label"`
	Ops           int     `json:"ops"`
	Runs          int     `json:"runs"`
	MeanOpsPerSec float64 `json:"mean_ops_per_sec"` //nolint:tagliatelle
	MinOpsPerSec  float64 `json:"min_ops_per_sec"`  //nolint:tagliatelle
	MaxOpsPerSec  float64 `json:"max_ops_per_sec"`  //nolint:tagliatelle
}

// CapacityTrace records the slot-table capacity after each phase of the
// final run. Resizing depends only on entry counts, so the trace is the
// same for every run of a dataset.
type CapacityTrace struct {
	AfterInsert   int `json:"after_insert"`   //nolint:tagliatelle
	AfterErase    int `json:"after_erase"`    //nolint:tagliatelle
	AfterReinsert int `json:"after_reinsert"` //nolint:tagliatelle
}

// DatasetResult holds the results for one entry count.
type DatasetResult struct {
	Count         int           `json:"count"`
	Capacity      CapacityTrace `json:"capacity"`
	Phases        []PhaseStats  `json:"phases"`
	HeapLiveBytes uint64        `json:"heap_live_bytes"` //nolint:tagliatelle
}

// Report is the JSON shape written next to the markdown report.
type Report struct {
	Timestamp string          `json:"timestamp"`
	GoVersion string          `json:"go_version"` //nolint:tagliatelle
	GOOS      string          `json:"goos"`
	GOARCH    string          `json:"goarch"`
	NumCPU    int             `json:"num_cpu"` //nolint:tagliatelle
	Datasets  []DatasetResult `json:"datasets"`
	PeakRSSKB int64           `json:"peak_rss_kb"` //nolint:tagliatelle
}

// phaseTiming is one phase of one run.
type phaseTiming struct {
	label   string
	ops     int
	elapsed time.Duration
}

func main() {
	cfg := Config{}

	flag.StringVar(&cfg.OutDir, "out", ".benchmarks", "Output directory for reports")
	flag.IntVar(&cfg.Runs, "runs", 5, "Number of repetitions per dataset")
	flag.IntVar(&cfg.ErasePercent, "erase-percent", 90, "Share of entries erased in the erase phase")

	countsStr := flag.String("counts", "1000,100000", "Comma-separated list of entry counts to benchmark")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, "Usage: proby-bench [flags]\n\n")
		fmt.Fprint(os.Stderr, "Benchmarks probemap workloads: inserts, hit/miss lookups, bulk erase (shrink), reinsert (tombstone reuse).\n\n")
		fmt.Fprint(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, "\nExamples:\n")
		fmt.Fprint(os.Stderr, "  proby-bench                        # Run benchmarks with defaults\n")
		fmt.Fprint(os.Stderr, "  proby-bench --counts=10000         # Quick test with one dataset\n")
		fmt.Fprint(os.Stderr, "  proby-bench --runs=20              # More repetitions per dataset\n")
	}

	flag.Parse()

	// Parse counts
	for countStr := range strings.SplitSeq(*countsStr, ",") {
		countStr = strings.TrimSpace(countStr)
		if countStr == "" {
			continue
		}

		count, err := strconv.Atoi(countStr)
		if err != nil || count < 1 {
			fmt.Fprintf(os.Stderr, "invalid count %q\n", countStr)
			os.Exit(1)
		}

		cfg.Counts = append(cfg.Counts, count)
	}

	if len(cfg.Counts) == 0 {
		fmt.Fprint(os.Stderr, "no counts specified\n")
		os.Exit(1)
	}

	if cfg.Runs < 1 {
		fmt.Fprint(os.Stderr, "runs must be at least 1\n")
		os.Exit(1)
	}

	if cfg.ErasePercent < 0 || cfg.ErasePercent > 100 {
		fmt.Fprint(os.Stderr, "erase-percent must be between 0 and 100\n")
		os.Exit(1)
	}

	err := os.MkdirAll(cfg.OutDir, 0o750)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	err = runWorkloadBench(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "workload benchmark failed: %v\n", err)
		os.Exit(1)
	}
}

func getSystemInfo() string {
	var sb strings.Builder

	timestampUTC := time.Now().UTC().Format(time.RFC3339)
	sb.WriteString(fmt.Sprintf("## Run %s\n\n", timestampUTC))

	sb.WriteString(fmt.Sprintf("- %s\n", runtime.Version()))
	sb.WriteString(fmt.Sprintf("- %s/%s\n", runtime.GOOS, runtime.GOARCH))
	sb.WriteString(fmt.Sprintf("- cpus: %d\n", runtime.NumCPU()))
	sb.WriteString("- note: keys are pre-generated UUIDs; key creation is excluded from timings\n\n")

	return sb.String()
}

func runWorkloadBench(cfg *Config) error {
	timestamp := time.Now().UTC().Format("20060102-150405")
	mdFile := filepath.Join(cfg.OutDir, fmt.Sprintf("probemap_workload_%s.md", timestamp))
	jsonFile := filepath.Join(cfg.OutDir, fmt.Sprintf("probemap_workload_%s.json", timestamp))

	var report strings.Builder
	report.WriteString(getSystemInfo())

	jsonReport := Report{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		GoVersion: runtime.Version(),
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
	}

	for _, count := range cfg.Counts {
		fmt.Fprintf(os.Stderr, "\n%s\n", strings.Repeat("=", 60))
		fmt.Fprintf(os.Stderr, "WORKLOAD BENCHMARKS: %d entries\n", count)
		fmt.Fprintf(os.Stderr, "%s\n\n", strings.Repeat("=", 60))

		dataset := benchDataset(cfg, count)
		jsonReport.Datasets = append(jsonReport.Datasets, dataset)

		report.WriteString(fmt.Sprintf("### Dataset: %d entries\n\n", count))
		report.WriteString(fmt.Sprintf("- runs: %d\n", cfg.Runs))
		report.WriteString(fmt.Sprintf("- erase share: %d%%\n", cfg.ErasePercent))
		report.WriteString(fmt.Sprintf("- capacity: %d after inserts, %d after erases, %d after reinserts\n",
			dataset.Capacity.AfterInsert, dataset.Capacity.AfterErase, dataset.Capacity.AfterReinsert))
		report.WriteString(fmt.Sprintf("- heap live after inserts: %s\n\n", formatBytes(dataset.HeapLiveBytes)))

		report.WriteString("| Phase | Ops/run | Mean [ops/s] | Min [ops/s] | Max [ops/s] |\n")
		report.WriteString("|:---|---:|---:|---:|---:|\n")

		for _, phase := range dataset.Phases {
			report.WriteString(fmt.Sprintf("| %s | %d | %.0f | %.0f | %.0f |\n",
				phase.Label, phase.Ops, phase.MeanOpsPerSec, phase.MinOpsPerSec, phase.MaxOpsPerSec))
		}

		report.WriteString("\n")
	}

	var ru unix.Rusage

	rusageErr := unix.Getrusage(unix.RUSAGE_SELF, &ru)
	if rusageErr == nil {
		jsonReport.PeakRSSKB = ru.Maxrss
		report.WriteString(fmt.Sprintf("Peak RSS: %d KB\n", ru.Maxrss))
	}

	err := os.WriteFile(mdFile, []byte(report.String()), 0o600)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Fprintf(os.Stderr, "wrote %s\n", mdFile)

	jsonData, err := json.MarshalIndent(jsonReport, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}

	jsonData = append(jsonData, '\n')

	writeErr := atomic.WriteFile(jsonFile, bytes.NewReader(jsonData))
	if writeErr != nil {
		return fmt.Errorf("failed to write JSON report: %w", writeErr)
	}

	fmt.Fprintf(os.Stderr, "wrote %s\n", jsonFile)

	return nil
}

// benchDataset runs every phase cfg.Runs times against fresh tables and
// aggregates the timings.
func benchDataset(cfg *Config, count int) DatasetResult {
	// Key material is shared across runs so generation cost stays out of
	// the measured phases.
	keys := make([]string, count)
	values := make([]string, count)
	missKeys := make([]string, count)

	for i := range count {
		keys[i] = uuid.NewString()
		values[i] = strconv.Itoa(i)
		missKeys[i] = uuid.NewString()
	}

	eraseCount := count * cfg.ErasePercent / 100
	reinsertCount := eraseCount / 2

	var (
		trace    CapacityTrace
		heapLive uint64
	)

	perPhase := make(map[string][]float64)

	phaseOrder := []string{"insert", "get (hit)", "get (miss)", "erase", "reinsert"}
	phaseOps := map[string]int{
		"insert":     count,
		"get (hit)":  count,
		"get (miss)": count,
		"erase":      eraseCount,
		"reinsert":   reinsertCount,
	}

	for run := 1; run <= cfg.Runs; run++ {
		fmt.Fprintf(os.Stderr, "--- run %d/%d ---\n", run, cfg.Runs)

		timings, runTrace, runHeap := benchOneRun(keys, values, missKeys, eraseCount, reinsertCount)

		// Capacity transitions depend only on entry counts, so any run's
		// trace stands for all of them.
		trace = runTrace
		heapLive = runHeap

		for _, t := range timings {
			opsPerSec := float64(t.ops) / t.elapsed.Seconds()
			perPhase[t.label] = append(perPhase[t.label], opsPerSec)
			fmt.Fprintf(os.Stderr, "  %-10s %8d ops in %10v (%.0f ops/sec)\n",
				t.label, t.ops, t.elapsed.Round(time.Microsecond), opsPerSec)
		}
	}

	result := DatasetResult{
		Count:         count,
		Capacity:      trace,
		HeapLiveBytes: heapLive,
	}

	for _, label := range phaseOrder {
		rates := perPhase[label]
		if len(rates) == 0 {
			continue
		}

		stats := PhaseStats{
			Label: label,
			Ops:   phaseOps[label],
			Runs:  len(rates),
		}

		var sum float64

		stats.MinOpsPerSec = rates[0]
		stats.MaxOpsPerSec = rates[0]

		for _, rate := range rates {
			sum += rate
			stats.MinOpsPerSec = min(stats.MinOpsPerSec, rate)
			stats.MaxOpsPerSec = max(stats.MaxOpsPerSec, rate)
		}

		stats.MeanOpsPerSec = sum / float64(len(rates))
		result.Phases = append(result.Phases, stats)
	}

	return result
}

// benchOneRun performs one full workload cycle against a fresh table.
func benchOneRun(keys, values, missKeys []string, eraseCount, reinsertCount int) ([]phaseTiming, CapacityTrace, uint64) {
	m := probemap.New[string, string]()

	var timings []phaseTiming

	start := time.Now()

	for i, key := range keys {
		m.Insert(key, values[i])
	}

	timings = append(timings, phaseTiming{"insert", len(keys), time.Since(start)})

	var trace CapacityTrace

	trace.AfterInsert = m.Cap()

	var memStats runtime.MemStats

	runtime.ReadMemStats(&memStats)
	heapLive := memStats.HeapAlloc

	start = time.Now()
	hits := 0

	for _, key := range keys {
		if _, found := m.Get(key); found {
			hits++
		}
	}

	timings = append(timings, phaseTiming{"get (hit)", len(keys), time.Since(start)})

	if hits != len(keys) {
		fmt.Fprintf(os.Stderr, "warning: expected %d hits, got %d\n", len(keys), hits)
	}

	start = time.Now()

	for _, key := range missKeys {
		if _, found := m.Get(key); found {
			fmt.Fprintf(os.Stderr, "warning: miss key %q unexpectedly present\n", key)
		}
	}

	timings = append(timings, phaseTiming{"get (miss)", len(missKeys), time.Since(start)})

	start = time.Now()

	for _, key := range keys[:eraseCount] {
		m.Erase(key)
	}

	timings = append(timings, phaseTiming{"erase", eraseCount, time.Since(start)})
	trace.AfterErase = m.Cap()

	start = time.Now()

	for i, key := range keys[:reinsertCount] {
		m.Insert(key, values[i])
	}

	timings = append(timings, phaseTiming{"reinsert", reinsertCount, time.Since(start)})
	trace.AfterReinsert = m.Cap()

	return timings, trace, heapLive
}

func formatBytes(n uint64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
