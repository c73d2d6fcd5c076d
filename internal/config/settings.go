package config

import (
	"math"
	"sync/atomic"

	"github.com/0-Luminous/taskflow/internal/ring"
)

// Settings holds the runtime-adjustable dial configuration. Writes are
// rare (a user changing a preference) but may race with conversions on
// other goroutines, so the value is swapped atomically.
type Settings struct {
	zeroPosition atomic.Uint64
}

func NewSettings(zeroPosition float64) *Settings {
	s := &Settings{}
	s.SetZeroPosition(zeroPosition)
	return s
}

// ZeroPosition returns the dial's zero position in degrees, [0, 360).
func (s *Settings) ZeroPosition() float64 {
	return math.Float64frombits(s.zeroPosition.Load())
}

func (s *Settings) SetZeroPosition(degrees float64) {
	s.zeroPosition.Store(math.Float64bits(ring.NormalizeAngle(degrees)))
}
