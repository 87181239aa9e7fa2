package probemap

import "errors"

// Sentinel errors returned by probemap operations.
//
// Callers should use [errors.Is] to check error types:
//
//	v, err := m.At(key)
//	if errors.Is(err, probemap.ErrKeyNotFound) {
//	    // key is absent, decide on a default
//	}
var (
	// ErrKeyNotFound indicates the requested key has no live entry.
	//
	// Returned by [Map.At]. An erased key reports not found even while its
	// tombstone still occupies a slot.
	//
	// Recovery: insert the key, or use [Map.Get] / [Map.Ref] when absence
	// is an expected case.
	ErrKeyNotFound = errors.New("probemap: key not found")
)
