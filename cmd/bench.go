package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spf13/cobra"

	"github.com/mapgen-tools/osmcache/internal/logger"
	"github.com/mapgen-tools/osmcache/internal/metrics"
	"github.com/mapgen-tools/osmcache/internal/pointstorage"
	"github.com/mapgen-tools/osmcache/internal/progress"
)

var benchCount int

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark point storage write/read throughput",
	Long: `bench writes --count synthetic points to a fresh point storage of the
configured --point-storage kind, then reads them all back, reporting
throughput for each pass. With --workers > 1, each worker runs its own
instance against a disjoint file — one PointStorage per goroutine, never
shared, matching the single-actor-per-instance rule the rest of the
package follows.`,
	Run: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntVar(&benchCount, "count", 1_000_000, "Number of synthetic points per worker")
}

func runBench(cmd *cobra.Command, args []string) {
	log := logger.Get()

	kind, err := cfg.PointStorageKind()
	if err != nil {
		exitWithError("invalid point storage kind", err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		exitWithError("failed to create output directory", err)
	}

	collector := metrics.NewCollector(cfg.MetricsInterval, log)
	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	go collector.Start(metricsCtx)
	defer stopMetrics()

	log.Info("starting benchmark",
		zap.String("kind", kind.String()), zap.Int("workers", cfg.Workers), zap.Int("count_per_worker", benchCount))

	g, _ := errgroup.WithContext(context.Background())
	results := make([]benchResult, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		i := i
		g.Go(func() error {
			path := filepath.Join(cfg.OutputDir, fmt.Sprintf("bench-%d.points", i))
			res, err := runBenchWorker(kind, path, benchCount)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		exitWithError("benchmark worker failed", err)
	}

	var maxWrite, maxRead time.Duration
	for _, r := range results {
		if r.writeElapsed > maxWrite {
			maxWrite = r.writeElapsed
		}
		if r.readElapsed > maxRead {
			maxRead = r.readElapsed
		}
	}
	totalPoints := int64(cfg.Workers) * int64(benchCount)
	log.Info("benchmark complete",
		zap.Int64("total_points", totalPoints),
		zap.String("write_throughput", progress.FormatThroughput(float64(totalPoints)/maxWrite.Seconds())),
		zap.String("read_throughput", progress.FormatThroughput(float64(totalPoints)/maxRead.Seconds())),
	)
}

type benchResult struct {
	writeElapsed time.Duration
	readElapsed  time.Duration
}

func runBenchWorker(kind pointstorage.Kind, path string, count int) (benchResult, error) {
	rng := rand.New(rand.NewSource(int64(len(path))))

	w, err := pointstorage.OpenWriter(kind, path)
	if err != nil {
		return benchResult{}, err
	}
	writeStart := time.Now()
	for i := 0; i < count; i++ {
		w.AddPoint(uint64(i+1), rng.Float64()*180-90, rng.Float64()*360-180)
	}
	if err := w.Close(); err != nil {
		return benchResult{}, err
	}
	writeElapsed := time.Since(writeStart)

	r, err := pointstorage.OpenReader(kind, path)
	if err != nil {
		return benchResult{}, err
	}
	defer r.Close()
	readStart := time.Now()
	for i := 0; i < count; i++ {
		r.GetPoint(uint64(i + 1))
	}
	readElapsed := time.Since(readStart)

	return benchResult{writeElapsed: writeElapsed, readElapsed: readElapsed}, nil
}
