// Package ring maps wall-clock time onto a 24-hour circular dial.
// 360 degrees correspond to 1440 minutes; the zero position is the
// angular offset choosing which hour sits at the dial's reference
// point. All arithmetic wraps, it is never clamped.
package ring

import (
	"math"
	"time"
)

const (
	// ReferenceAngle is where midnight sits on the dial when the zero
	// position is 0.
	ReferenceAngle = 270.0

	DegreesPerMinute = 0.25
	DegreesPerHour   = 15.0
	MinutesPerDay    = 24 * 60
)

// TimeToAngle converts a time of day to a dial angle in [0, 360).
func TimeToAngle(t time.Time, zeroPosition float64) float64 {
	minutes := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60
	return NormalizeAngle(minutes*DegreesPerMinute + ReferenceAngle - zeroPosition)
}

// AngleToTime converts a dial angle back to a time on the calendar day
// of reference. Seconds below the dial's minute resolution are kept so
// the round trip with TimeToAngle is exact up to floating point.
func AngleToTime(angle float64, reference time.Time, zeroPosition float64) time.Time {
	minutes := NormalizeMinutes((angle - ReferenceAngle + zeroPosition) / DegreesPerMinute)
	whole := int(minutes)
	seconds := int(math.Round((minutes - float64(whole)) * 60))
	return time.Date(reference.Year(), reference.Month(), reference.Day(),
		whole/60, whole%60, seconds, 0, reference.Location())
}

// ApplyZeroOffset shifts a time of day by the zero position expressed
// as hours (15 degrees per hour), wrapping within the 24-hour cycle.
// inverse flips the direction of the shift.
func ApplyZeroOffset(t time.Time, zeroPosition float64, inverse bool) time.Time {
	offset := zeroPosition / DegreesPerHour * 60
	if inverse {
		offset = -offset
	}
	minutes := NormalizeMinutes(float64(t.Hour()*60+t.Minute()) + offset)
	whole := int(minutes)
	return time.Date(t.Year(), t.Month(), t.Day(), whole/60, whole%60, t.Second(), t.Nanosecond(), t.Location())
}

// NormalizeAngle wraps an angle into [0, 360).
func NormalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	return angle
}

// NormalizeMinutes wraps a minutes-since-midnight value into [0, 1440).
func NormalizeMinutes(minutes float64) float64 {
	minutes = math.Mod(minutes, MinutesPerDay)
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return minutes
}
