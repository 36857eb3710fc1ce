package garage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Size is the capacity class a vehicle needs. Sizes are ordered, a vehicle
// fits in its own tier or any larger one.
type Size int

const (
	Small Size = iota
	Medium
	Large
)

// Sizes lists every tier from smallest to largest.
var Sizes = []Size{Small, Medium, Large}

func ParseSize(s string) (Size, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small", "s":
		return Small, nil
	case "medium", "m":
		return Medium, nil
	case "large", "l":
		return Large, nil
	default:
		return 0, fmt.Errorf("%w: unknown size %q", ErrInvalidInput, s)
	}
}

func (s Size) String() string {
	switch s {
	case Small:
		return "small"
	case Medium:
		return "medium"
	case Large:
		return "large"
	default:
		return fmt.Sprintf("size(%d)", int(s))
	}
}

func (s Size) Valid() bool {
	return s >= Small && s <= Large
}

// fallback returns the tiers a vehicle of size s may use, in the order they
// are tried. It never contains a tier smaller than s.
func (s Size) fallback() []Size {
	if !s.Valid() {
		return nil
	}
	return Sizes[s:]
}

func (s Size) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: invalid size %d", ErrInvalidInput, int(s))
	}
	return json.Marshal(s.String())
}

func (s *Size) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("%w: size must be a string", ErrInvalidInput)
	}
	parsed, err := ParseSize(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
