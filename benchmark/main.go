// Package main provides a performance benchmarking tool for the bugsheet CLI.
// It generates synthetic bug-report workbooks of several sizes, measures
// 'bugsheet analyze' on each batch with and without the load cache,
// treating the first successful cached run as cold and averaging the rest as warm,
// and writes the timings to a CSV file.
//
// Prerequisites:
// - bugsheet binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where the synthetic batches are generated
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Batch       string
	Files       int
	Rows        int
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BatchSpec describes one synthetic batch of workbooks.
type BatchSpec struct {
	Name  string
	Files int
	Rows  int // rows per file
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Batches     []BatchSpec
}

var (
	severities  = []string{"致命", "严重", "一般", "轻微"}
	defectTypes = []string{"程序Bug", "非程序Bug"}
	fixStatuses = []string{"已修复", "未修复", "处理中", "已关闭"}
	modules     = []string{"登录", "支付", "订单", "消息", "设置"}
)

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Batches: []BatchSpec{
			{Name: "small", Files: 4, Rows: 200},
			{Name: "medium", Files: 16, Rows: 2_000},
			{Name: "large", Files: 32, Rows: 20_000},
		},
	}

	if _, err := exec.LookPath("bugsheet"); err != nil {
		fmt.Println("Prerequisites check failed: bugsheet binary not found in PATH")
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("bugsheet", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks generates every batch and benchmarks it
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d batches, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Batches), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, spec := range config.Batches {
		batchDir := filepath.Join(config.WorkDir, spec.Name)
		fmt.Printf("Generating %s batch (%d files x %d rows)\n", spec.Name, spec.Files, spec.Rows)
		if err := generateBatch(batchDir, spec); err != nil {
			fmt.Printf("  Skipping %s: %v\n", spec.Name, err)
			continue
		}
		results = append(results, runBenchmarkSuite(config, spec, batchDir))
	}

	return results
}

// generateBatch writes spec.Files workbooks with spec.Rows bug rows each
func generateBatch(dir string, spec BatchSpec) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range spec.Files {
		f := excelize.NewFile()
		sw, err := f.NewStreamWriter("Sheet1")
		if err != nil {
			_ = f.Close()
			return err
		}
		header := []any{"严重级别", "Bug类型", "修复状态", "所属模块", "创建日期", "描述"}
		if err := sw.SetRow("A1", header); err != nil {
			_ = f.Close()
			return err
		}
		for r := range spec.Rows {
			n := i*spec.Rows + r
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			row := []any{
				severities[n%len(severities)],
				defectTypes[n%3%len(defectTypes)],
				fixStatuses[n%len(fixStatuses)],
				modules[n%len(modules)],
				start.AddDate(0, 0, n%180).Format("2006-01-02"),
				fmt.Sprintf("问题 #%d", n),
			}
			if err := sw.SetRow(cell, row); err != nil {
				_ = f.Close()
				return err
			}
		}
		if err := sw.Flush(); err != nil {
			_ = f.Close()
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("bugs_%03d.xlsx", i))
		if err := f.SaveAs(path); err != nil {
			_ = f.Close()
			return err
		}
		_ = f.Close()
	}
	return nil
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a batch
func runBenchmarkSuite(config BenchmarkConfig, spec BatchSpec, batchDir string) BenchmarkResult {
	fmt.Printf("Running analyze on %s\n", spec.Name)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, batchDir, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Batch:       spec.Name,
		Files:       spec.Files,
		Rows:        spec.Files * spec.Rows,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes bugsheet analyze numRuns times and returns the cold time and warm times
func runBenchmark(config BenchmarkConfig, batchDir, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"analyze", batchDir,
		"--cache-backend", cacheBackend,
		"--workers", fmt.Sprint(config.Workers),
		"--report=no",
		"--color=no",
	}

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "bugsheet", args...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && isSuccess(output) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Run completed in") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/bugsheet_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"batch", "files", "rows", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		record := []string{result.Batch, fmt.Sprint(result.Files), fmt.Sprint(result.Rows), result.NoCacheTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-8s (%d files, %d rows): No-cache: %s, Cold: %s, Warm: %s\n",
			result.Batch, result.Files, result.Rows, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
