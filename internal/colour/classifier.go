package colour

import (
	"cmp"
	"fmt"
)

// Default classification thresholds. Values are HSV saturation/value in [0,1].
const (
	DefaultBlackValue      = 0.16
	DefaultWhiteValue      = 0.72
	DefaultWhiteSaturation = 0.15
	DefaultGraySaturation  = 0.05
)

// Thresholds controls how a colour is assigned to a group.
type Thresholds struct {
	BlackValue      float64 `toml:"black_value"`
	WhiteValue      float64 `toml:"white_value"`
	WhiteSaturation float64 `toml:"white_saturation"`
	GraySaturation  float64 `toml:"gray_saturation"`
}

// DefaultThresholds returns the default classification thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BlackValue:      DefaultBlackValue,
		WhiteValue:      DefaultWhiteValue,
		WhiteSaturation: DefaultWhiteSaturation,
		GraySaturation:  DefaultGraySaturation,
	}
}

// Validate checks that every threshold lies in [0,1] and black is below white.
func (t Thresholds) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"black_value", t.BlackValue},
		{"white_value", t.WhiteValue},
		{"white_saturation", t.WhiteSaturation},
		{"gray_saturation", t.GraySaturation},
	} {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("threshold %s must be in [0,1], got %g", f.name, f.value)
		}
	}
	if t.BlackValue > t.WhiteValue {
		return fmt.Errorf("black_value (%g) must not exceed white_value (%g)", t.BlackValue, t.WhiteValue)
	}
	return nil
}

// Group is the coarse band a colour sorts into.
type Group int

// Groups in sort order.
const (
	GroupColoured Group = iota
	GroupWhite
	GroupGray
	GroupBlack
	GroupAbsent
)

// AllGroups returns every group in sort order.
func AllGroups() []Group {
	return []Group{GroupColoured, GroupWhite, GroupGray, GroupBlack, GroupAbsent}
}

// String returns the group name.
func (g Group) String() string {
	switch g {
	case GroupColoured:
		return "coloured"
	case GroupWhite:
		return "white"
	case GroupGray:
		return "gray"
	case GroupBlack:
		return "black"
	case GroupAbsent:
		return "absent"
	default:
		return fmt.Sprintf("group(%d)", int(g))
	}
}

// SortKey orders colours: by group, then by hue within the coloured group.
type SortKey struct {
	Group Group
	// Hue is in [0,360) for GroupColoured and 0 otherwise.
	Hue float64
}

// Compare returns -1, 0 or +1 comparing k and other lexicographically.
func (k SortKey) Compare(other SortKey) int {
	if c := cmp.Compare(k.Group, other.Group); c != 0 {
		return c
	}
	return cmp.Compare(k.Hue, other.Hue)
}

// Less reports whether k sorts before other.
func (k SortKey) Less(other SortKey) bool {
	return k.Compare(other) < 0
}

// Classifier maps colours to sort keys.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{thresholds: t}
}

// Classify returns the sort key for col. Bands are tested in a fixed order
// (white, gray, black) and the first match wins.
func (c *Classifier) Classify(col Color) SortKey {
	if col.IsAbsent() {
		return SortKey{Group: GroupAbsent}
	}

	t := c.thresholds
	h, s, v := col.HSV()
	switch {
	case v > t.WhiteValue && s < t.WhiteSaturation:
		return SortKey{Group: GroupWhite}
	case s < t.GraySaturation && v >= t.BlackValue && v <= t.WhiteValue:
		return SortKey{Group: GroupGray}
	case v < t.BlackValue:
		return SortKey{Group: GroupBlack}
	default:
		return SortKey{Group: GroupColoured, Hue: h}
	}
}
