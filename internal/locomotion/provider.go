// internal/locomotion/provider.go
package locomotion

import "github.com/xkilldash9x/embody-cli/internal/scene"

// Provider moves a body across the world.
type Provider interface {
	// CanReach reports whether position can be walked to.
	CanReach(position scene.Vector3) bool
	// CanReachNear finds the closest reachable point within maxRadius of
	// position.
	CanReachNear(position scene.Vector3, maxRadius float64) (bool, scene.Vector3)
	// SetDestination starts walking. It returns false when no path exists.
	SetDestination(position scene.Vector3) bool
	// OnArrival subscribes fn to arrival notifications, fired once per
	// successful arrival. The returned function unsubscribes; it is safe to
	// call from inside fn.
	OnArrival(fn func()) (unsubscribe func())
	// Stop halts movement without firing arrival.
	Stop()
}
