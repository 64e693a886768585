package detector

import (
	"log"
	"sync"
)

var (
	cacheMu sync.RWMutex
	cached  *Forest
)

// Cached returns the process-wide model handle, loading the artifact at
// most once. The loaded forest is read-only and safe for concurrent
// scoring. A load failure is not sticky: the next call retries, so the
// operator can drop a fresh artifact in place without a restart.
func Cached(path string) (*Forest, error) {
	cacheMu.RLock()
	if cached != nil {
		f := cached
		cacheMu.RUnlock()
		return f, nil
	}
	cacheMu.RUnlock()

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cached != nil {
		return cached, nil
	}
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	log.Printf("[MODEL] loaded artifact: %s (trees=%d threshold=%.4f)", path, len(f.Roots), f.Threshold)
	cached = f
	return cached, nil
}

// ResetCache drops the cached handle. Test helper.
func ResetCache() {
	cacheMu.Lock()
	cached = nil
	cacheMu.Unlock()
}
