package elem

import "github.com/mapgen-tools/osmcache/internal/wkb"

func newTestEncoder() *wkb.Encoder {
	return wkb.NewEncoder(64)
}
