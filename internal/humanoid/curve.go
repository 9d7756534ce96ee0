// internal/humanoid/curve.go
package humanoid

import (
	"fmt"
	"strings"
)

// Curve maps normalized time in [0,1] to normalized progress in [0,1].
// A nil Curve behaves like EaseInOut.
type Curve func(t float64) float64

// Linear progresses at constant speed.
func Linear(t float64) float64 { return t }

// EaseIn starts slowly and accelerates.
func EaseIn(t float64) float64 { return t * t }

// EaseOut starts fast and decelerates.
func EaseOut(t float64) float64 { return t * (2 - t) }

// EaseInOut is a cubic Hermite with zero tangents at both ends.
func EaseInOut(t float64) float64 { return t * t * (3 - 2*t) }

// Evaluate clamps t to [0,1] before sampling the curve.
func (c Curve) Evaluate(t float64) float64 {
	switch {
	case t <= 0:
		t = 0
	case t >= 1:
		t = 1
	}
	if c == nil {
		return EaseInOut(t)
	}
	return c(t)
}

var curvesByName = map[string]Curve{
	"linear":      Linear,
	"ease_in":     EaseIn,
	"ease_out":    EaseOut,
	"ease_in_out": EaseInOut,
}

// CurveByName resolves a configured curve name. The empty string selects
// ease_in_out.
func CurveByName(name string) (Curve, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return EaseInOut, nil
	}
	c, ok := curvesByName[key]
	if !ok {
		return nil, fmt.Errorf("humanoid: unknown curve %q", name)
	}
	return c, nil
}
