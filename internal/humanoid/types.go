// internal/humanoid/types.go
package humanoid

import (
	"fmt"
	"strings"
)

// EffectorType identifies a controllable body part.
type EffectorType int

const (
	RightHand EffectorType = iota
	LeftHand
	RightFoot
	LeftFoot
)

var effectorNames = map[EffectorType]string{
	RightHand: "right_hand",
	LeftHand:  "left_hand",
	RightFoot: "right_foot",
	LeftFoot:  "left_foot",
}

// AllEffectors lists every effector type in declaration order.
func AllEffectors() []EffectorType {
	return []EffectorType{RightHand, LeftHand, RightFoot, LeftFoot}
}

func (e EffectorType) String() string {
	if name, ok := effectorNames[e]; ok {
		return name
	}
	return fmt.Sprintf("effector(%d)", int(e))
}

// IsHand reports whether the effector can carry objects by default.
func (e EffectorType) IsHand() bool {
	return e == RightHand || e == LeftHand
}

// ParseEffectorType accepts the snake_case names ("right_hand") as well as
// the camel case spelling used in older scenario files ("RightHand").
func ParseEffectorType(s string) (EffectorType, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for t, name := range effectorNames {
		if normalized == name || normalized == strings.ReplaceAll(name, "_", "") {
			return t, nil
		}
	}
	return 0, fmt.Errorf("humanoid: unknown effector type %q", s)
}

// MarshalText implements encoding.TextMarshaler for config and report output.
func (e EffectorType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EffectorType) UnmarshalText(text []byte) error {
	t, err := ParseEffectorType(string(text))
	if err != nil {
		return err
	}
	*e = t
	return nil
}
