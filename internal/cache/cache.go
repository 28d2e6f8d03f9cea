// Package cache stores rendered fit reports so repeated runs over the
// same data and settings skip the sampler entirely.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/grekov/survfit/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// RunKey derives a cache key from the raw dataset bytes and every setting
// that changes the fit's output. Two runs collide only when their results
// would be identical.
func RunKey(raw []byte, settings model.FitSettings) string {
	h := sha256.New()
	h.Write(raw)

	var buf [8]byte
	writeF := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	writeU := func(u uint64) {
		binary.LittleEndian.PutUint64(buf[:], u)
		h.Write(buf[:])
	}

	writeF(settings.PriorShape)
	writeF(settings.PriorRate)
	writeU(uint64(settings.Chains))
	writeU(uint64(settings.Burnin))
	writeU(uint64(settings.Samples))
	writeU(settings.Seed)
	writeU(uint64(len(settings.Grid)))
	for _, t := range settings.Grid {
		writeF(t)
	}

	return "survfit:v1:" + hex.EncodeToString(h.Sum(nil))
}
