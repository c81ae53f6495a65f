package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mapgen-tools/osmcache/internal/cache"
)

var inspectIndexPath string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Report statistics about an index file",
	Long: `inspect loads an IndexFile[uint64] (e.g. an ElementCache's ".offsets"
file, or any raw index file) and reports its entry count, key range, and
duplicate-key count. A length that isn't a multiple of the record size is
reported as a fatal corruption per the index file's read-mode contract —
run inspect against a suspect file to diagnose that before it aborts a
larger pipeline.`,
	Run: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&inspectIndexPath, "index", "", "Path to the index file to inspect")
	inspectCmd.MarkFlagRequired("index")
}

func runInspect(cmd *cobra.Command, args []string) {
	idx := cache.NewIndexFileReader(inspectIndexPath, cache.Uint64Codec)
	idx.ReadAll()

	fmt.Printf("file:    %s\n", inspectIndexPath)
	fmt.Printf("entries: %d\n", idx.Len())

	if minKey, maxKey, ok := idx.KeyRange(); ok {
		fmt.Printf("key range: [%d, %d]\n", minKey, maxKey)
		fmt.Printf("duplicate keys: %d\n", idx.DuplicateKeyCount())
	}
}
