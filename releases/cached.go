package releases

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/willibrandon/gosolc/cache"
)

// ReadCachedIndex returns the listing last cached for mirror and platform,
// regardless of its age. It never touches the network. A missing entry
// returns (nil, false, nil).
func ReadCachedIndex(dc *cache.DiskCache, mirror string, p Platform) (*Index, bool, error) {
	return readCached(dc, mirror, p, 0)
}

func readCached(dc *cache.DiskCache, mirror string, p Platform, maxAge time.Duration) (*Index, bool, error) {
	rc, ok, err := dc.Get(mirror, p.String(), maxAge)
	if err != nil || !ok {
		return nil, false, err
	}
	defer func() { _ = rc.Close() }()

	idx, err := DecodeIndex(rc)
	if err != nil {
		return nil, false, fmt.Errorf("cached release index: %w", err)
	}
	return idx, true, nil
}

func encodeIndex(w io.Writer, idx *Index) error {
	if err := json.NewEncoder(w).Encode(idx); err != nil {
		return fmt.Errorf("encode release index: %w", err)
	}
	return nil
}
