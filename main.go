package main

import (
	"os"

	"github.com/mapgen-tools/osmcache/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
