package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/paulmach/osm"
	"github.com/spf13/cobra"

	"github.com/mapgen-tools/osmcache/internal/cache"
	"github.com/mapgen-tools/osmcache/internal/elem"
	"github.com/mapgen-tools/osmcache/internal/logger"
	"github.com/mapgen-tools/osmcache/internal/metrics"
	"github.com/mapgen-tools/osmcache/internal/pointstorage"
	"github.com/mapgen-tools/osmcache/internal/wkb"
)

var (
	buildInput         string
	buildNodesOut      string
	buildWaysOut       string
	buildSyntheticNode int
	buildSyntheticWay  int
)

// buildRecord is one line of the newline-delimited JSON feed accepted by
// "build --input". Real PBF/XML parsing is out of scope here; this is a
// minimal stand-in format for feeding the cache from test fixtures.
type buildRecord struct {
	Type  string            `json:"type"` // "node" or "way"
	ID    uint64            `json:"id"`
	Lat   float64           `json:"lat,omitempty"`
	Lon   float64           `json:"lon,omitempty"`
	Nodes []uint64          `json:"nodes,omitempty"`
	Tags  map[string]string `json:"tags,omitempty"`
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a point storage and way-geometry cache",
	Long: `build runs the two-pass cache construction:

  pass 1: populate a PointStorage from node records
  pass 2: resolve way geometries against that storage and write an
          ElementCache[WayGeometry]

Input comes from a newline-delimited JSON feed (--input) or, if --input
is empty, from synthetically generated nodes and ways (--synthetic-nodes,
--synthetic-ways) for benchmarking and smoke testing.`,
	Run: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildInput, "input", "", "Path to a newline-delimited JSON node/way feed")
	buildCmd.Flags().StringVar(&buildNodesOut, "nodes-out", "nodes.cache", "Point storage output path")
	buildCmd.Flags().StringVar(&buildWaysOut, "ways-out", "ways.cache", "Way geometry ElementCache output path")
	buildCmd.Flags().IntVar(&buildSyntheticNode, "synthetic-nodes", 0, "Generate this many synthetic nodes instead of reading --input")
	buildCmd.Flags().IntVar(&buildSyntheticWay, "synthetic-ways", 0, "Generate this many synthetic ways instead of reading --input")
}

func runBuild(cmd *cobra.Command, args []string) {
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		exitWithError("invalid configuration", err)
	}
	kind, err := cfg.PointStorageKind()
	if err != nil {
		exitWithError("invalid point storage kind", err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		exitWithError("failed to create output directory", err)
	}
	nodesPath := cfg.OutputDir + "/" + buildNodesOut
	waysPath := cfg.OutputDir + "/" + buildWaysOut

	collector := metrics.NewCollector(cfg.MetricsInterval, log)
	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	go collector.Start(metricsCtx)
	defer stopMetrics()

	var nodes []buildRecord
	var ways []buildRecord
	if buildInput != "" {
		nodes, ways, err = readBuildFeed(buildInput)
		if err != nil {
			exitWithError("failed to read input feed", err)
		}
	} else {
		nodes, ways = generateSynthetic(buildSyntheticNode, buildSyntheticWay)
	}

	log.Info("starting point storage build",
		zap.String("kind", kind.String()), zap.Int("nodes", len(nodes)), zap.String("path", nodesPath))

	start := time.Now()
	if err := buildPointStorage(kind, nodesPath, nodes); err != nil {
		exitWithError("point storage build failed", err)
	}
	log.Info("point storage build complete", zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)))

	if len(ways) == 0 {
		return
	}

	log.Info("starting way geometry resolution",
		zap.Int("ways", len(ways)), zap.String("path", waysPath))

	start = time.Now()
	resolved, err := buildWayGeometry(kind, nodesPath, waysPath, ways)
	if err != nil {
		exitWithError("way geometry build failed", err)
	}
	log.Info("way geometry build complete",
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
		zap.Int("resolved", resolved), zap.Int("skipped", len(ways)-resolved))

	if m := collector.GetMetrics(); m != nil {
		log.Info("final system metrics", zap.Float64("mem_pct", m.MemoryPercent))
	}
}

func readBuildFeed(path string) (nodes, ways []buildRecord, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec buildRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, nil, fmt.Errorf("parse feed line: %w", err)
		}
		switch rec.Type {
		case "node":
			nodes = append(nodes, rec)
		case "way":
			ways = append(ways, rec)
		default:
			return nil, nil, fmt.Errorf("unknown record type %q", rec.Type)
		}
	}
	return nodes, ways, scanner.Err()
}

func generateSynthetic(numNodes, numWays int) (nodes, ways []buildRecord) {
	rng := rand.New(rand.NewSource(1))
	nodes = make([]buildRecord, numNodes)
	for i := range nodes {
		nodes[i] = buildRecord{
			Type: "node",
			ID:   uint64(i + 1),
			Lat:  rng.Float64()*180 - 90,
			Lon:  rng.Float64()*360 - 180,
		}
	}
	if numNodes == 0 {
		return nodes, nil
	}
	ways = make([]buildRecord, numWays)
	for i := range ways {
		n := 2 + rng.Intn(6)
		nodeIDs := make([]uint64, n)
		for j := range nodeIDs {
			nodeIDs[j] = uint64(rng.Intn(numNodes) + 1)
		}
		ways[i] = buildRecord{Type: "way", ID: uint64(i + 1), Nodes: nodeIDs}
	}
	return nodes, ways
}

func buildPointStorage(kind pointstorage.Kind, path string, nodes []buildRecord) error {
	w, err := pointstorage.OpenWriter(kind, path)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		w.AddPoint(n.ID, n.Lat, n.Lon)
	}
	return w.Close()
}

func buildWayGeometry(kind pointstorage.Kind, nodesPath, waysPath string, ways []buildRecord) (int, error) {
	points, err := pointstorage.OpenReader(kind, nodesPath)
	if err != nil {
		return 0, err
	}
	defer points.Close()

	out, err := cache.NewElementCacheWriter[*elem.WayGeometry](waysPath)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	enc := wkb.NewEncoder(256)
	resolved := 0
	for _, rec := range ways {
		nodeIDs := make([]osm.NodeID, len(rec.Nodes))
		for i, id := range rec.Nodes {
			nodeIDs[i] = osm.NodeID(id)
		}
		way := &elem.Way{ID: osm.WayID(rec.ID), Nodes: nodeIDs}

		geom, err := elem.BuildWayGeometry(way, points, enc)
		if err != nil {
			logger.Get().Warn("skipping way with unresolved geometry",
				zap.Uint64("way_id", rec.ID), zap.Error(err))
			continue
		}
		if err := out.Write(rec.ID, geom); err != nil {
			return resolved, err
		}
		resolved++
	}
	return resolved, nil
}
