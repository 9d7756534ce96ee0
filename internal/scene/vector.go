// internal/scene/vector.go
package scene

import (
	"fmt"
	"math"
)

// Vector3 represents a point or direction in world space (metres).
type Vector3 struct {
	X, Y, Z float64
}

// Zero is the origin.
var Zero = Vector3{}

// Add returns the vector sum of v and other.
func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub returns the vector difference of v and other.
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Mul returns v scaled by the scalar factor.
func (v Vector3) Mul(scalar float64) Vector3 {
	return Vector3{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

// MagSq is the squared length of v.
func (v Vector3) MagSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Mag is the length of v.
func (v Vector3) Mag() float64 {
	return math.Sqrt(v.MagSq())
}

// Normalize returns a unit vector with the direction of v, or the zero vector
// when v is (nearly) zero.
func (v Vector3) Normalize() Vector3 {
	mag := v.Mag()
	if mag < 1e-9 {
		return Vector3{}
	}
	return v.Mul(1.0 / mag)
}

// Dist is the Euclidean distance between two points.
func (v Vector3) Dist(other Vector3) float64 {
	return v.Sub(other).Mag()
}

// Lerp interpolates linearly between v and other. t is not clamped.
func (v Vector3) Lerp(other Vector3, t float64) Vector3 {
	return v.Add(other.Sub(v).Mul(t))
}

// ApproxEqual reports whether both points are within eps of each other.
func (v Vector3) ApproxEqual(other Vector3, eps float64) bool {
	return v.Dist(other) <= eps
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}
