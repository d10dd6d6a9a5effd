package audio

import (
	"math"
	"sync"
	"sync/atomic"
)

// ----- Cache Key ----- //

const keyResolution = 1e6

// CacheKey identifies a rendered buffer. Owner separates the generators,
// voices and instruments sharing one Cache. Length is zero unless the owner
// only reuses buffers of an exact length.
// Values are quantized to 1e-6 of their unit so that float noise does not split entries.
type CacheKey struct {
	Owner        uint64
	Pitch        int64
	Loudness     int64
	VibratoRate  int64
	VibratoDepth int64
	Length       int64
}

var lastCacheOwner atomic.Uint64

func newCacheOwner() uint64 {
	return lastCacheOwner.Add(1)
}

func quantize(v float64) int64 {
	return int64(math.Round(v * keyResolution))
}

func makeCacheKey(owner uint64, pitch float64, loudness float64, vib Vibrato) CacheKey {
	return CacheKey{
		Owner:        owner,
		Pitch:        quantize(pitch),
		Loudness:     quantize(loudness),
		VibratoRate:  quantize(vib.Rate),
		VibratoDepth: quantize(vib.Depth),
	}
}

// ----- Cache ----- //

// Cache maps a key to the longest buffer rendered for it so far.
// Implementations must be safe for concurrent use and never evict.
type Cache interface {
	Load(key CacheKey) ([]float64, bool)
	Store(key CacheKey, buf []float64)
}

type mapCache struct {
	sync.Mutex
	dict map[CacheKey][]float64
}

// NewCache returns an in-memory Cache.
func NewCache() Cache {
	return &mapCache{dict: make(map[CacheKey][]float64)}
}

func (c *mapCache) Load(key CacheKey) ([]float64, bool) {
	c.Lock()
	buf, ok := c.dict[key]
	c.Unlock()
	return buf, ok
}

func (c *mapCache) Store(key CacheKey, buf []float64) {
	c.Lock()
	if old, ok := c.dict[key]; !ok || len(old) < len(buf) {
		c.dict[key] = buf
	}
	c.Unlock()
}

// lookupPrefix returns the first n samples of the cached buffer if it is long enough.
// The result is capped so that appending to it can never touch the cached data.
func lookupPrefix(c Cache, key CacheKey, n int) ([]float64, bool) {
	buf, ok := c.Load(key)
	if !ok || len(buf) < n {
		return nil, false
	}
	return buf[:n:n], true
}
