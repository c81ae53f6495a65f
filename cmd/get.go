package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mapgen-tools/osmcache/internal/cache"
	"github.com/mapgen-tools/osmcache/internal/elem"
	"github.com/mapgen-tools/osmcache/internal/pointstorage"
)

var (
	getCachePath string
	getID        uint64
	getKind      string
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Look up a single element or point by id",
	Long: `get opens an existing cache and prints the decoded value for one id.

--kind selects what --cache points at:
  point — a point-storage file built by "build" (uses --point-storage)
  way   — a way-geometry ElementCache built by "build"`,
	Run: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVar(&getCachePath, "cache", "", "Path to the cache file to query")
	getCmd.Flags().Uint64Var(&getID, "id", 0, "Id to look up")
	getCmd.Flags().StringVar(&getKind, "kind", "point", "What kind of cache --cache points at: point or way")
	getCmd.MarkFlagRequired("cache")
}

func runGet(cmd *cobra.Command, args []string) {
	switch getKind {
	case "point":
		getPoint()
	case "way":
		getWay()
	default:
		exitWithError(fmt.Sprintf("unknown --kind %q (want point or way)", getKind), nil)
	}
}

func getPoint() {
	kind, err := cfg.PointStorageKind()
	if err != nil {
		exitWithError("invalid point storage kind", err)
	}

	r, err := pointstorage.OpenReader(kind, getCachePath)
	if err != nil {
		exitWithError("failed to open point storage", err)
	}
	defer r.Close()

	lat, lon, ok := r.GetPoint(getID)
	if !ok {
		fmt.Printf("id %d: not found\n", getID)
		return
	}
	fmt.Printf("id %d: lat=%.7f lon=%.7f\n", getID, lat, lon)
}

func getWay() {
	reader, err := cache.NewElementCacheReader[*elem.WayGeometry](getCachePath, cfg.Preload, elem.NewWayGeometry)
	if err != nil {
		exitWithError("failed to open way geometry cache", err)
	}
	defer reader.Close()
	reader.LoadOffsets()

	geom, ok := reader.Read(getID)
	if !ok {
		fmt.Printf("way %d: not found\n", getID)
		return
	}
	fmt.Printf("way %d: %d bytes of WKB\n", geom.ID, len(geom.WKB))
}
