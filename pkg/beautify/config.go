package beautify

import (
	"github.com/matzehuels/wiretidy/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMaxSegmentSeparation is the target gap between parallel segments.
	DefaultMaxSegmentSeparation = 7.0

	// DefaultSmallOffset shrinks symbol edges inwards so wires ending on a
	// symbol do not register as overlapping its outline.
	DefaultSmallOffset = 0.0001

	// DefaultOverlapTolerance is the distance under which two parallel lines
	// count as coincident.
	DefaultOverlapTolerance = 2.0

	// DefaultExtensionTolerance is the clearance required around a segment
	// extended by corner removal.
	DefaultExtensionTolerance = 3.0

	// DefaultMaxCornerSize is the longest segment a removable corner may have.
	DefaultMaxCornerSize = 100.0

	// DefaultMeetingWeight scales the crossing estimate for lines that end at
	// the same coordinate and turn towards each other.
	DefaultMeetingWeight = 1.0

	// DefaultSeparationRounds caps the vertical+horizontal rounds of one pass.
	DefaultSeparationRounds = 8
)

// epsilon absorbs floating-point noise in interval comparisons.
const epsilon = 1e-9

// =============================================================================
// Config
// =============================================================================

// Config holds the geometry constants of the beautifier. All distances are in
// sheet units.
type Config struct {
	MaxSegmentSeparation float64 `json:"max_segment_separation" toml:"max_segment_separation" yaml:"max_segment_separation"`
	SmallOffset          float64 `json:"small_offset" toml:"small_offset" yaml:"small_offset"`
	OverlapTolerance     float64 `json:"overlap_tolerance" toml:"overlap_tolerance" yaml:"overlap_tolerance"`
	ExtensionTolerance   float64 `json:"extension_tolerance" toml:"extension_tolerance" yaml:"extension_tolerance"`
	MaxCornerSize        float64 `json:"max_corner_size" toml:"max_corner_size" yaml:"max_corner_size"`

	// MeetingWeight may be negative; zero disables the term.
	MeetingWeight float64 `json:"meeting_weight" toml:"meeting_weight" yaml:"meeting_weight"`

	// SeparationRounds caps the vertical+horizontal rounds of one pass.
	// Rounds stop early once one moves nothing.
	SeparationRounds int `json:"separation_rounds" toml:"separation_rounds" yaml:"separation_rounds"`
}

// DefaultConfig returns the standard geometry settings.
func DefaultConfig() Config {
	return Config{
		MaxSegmentSeparation: DefaultMaxSegmentSeparation,
		SmallOffset:          DefaultSmallOffset,
		OverlapTolerance:     DefaultOverlapTolerance,
		ExtensionTolerance:   DefaultExtensionTolerance,
		MaxCornerSize:        DefaultMaxCornerSize,
		MeetingWeight:        DefaultMeetingWeight,
		SeparationRounds:     DefaultSeparationRounds,
	}
}

// SetDefaults fills zero-valued fields with defaults. MeetingWeight is left
// alone because zero is a meaningful setting for it.
func (c *Config) SetDefaults() {
	if c.MaxSegmentSeparation == 0 {
		c.MaxSegmentSeparation = DefaultMaxSegmentSeparation
	}
	if c.SmallOffset == 0 {
		c.SmallOffset = DefaultSmallOffset
	}
	if c.OverlapTolerance == 0 {
		c.OverlapTolerance = DefaultOverlapTolerance
	}
	if c.ExtensionTolerance == 0 {
		c.ExtensionTolerance = DefaultExtensionTolerance
	}
	if c.MaxCornerSize == 0 {
		c.MaxCornerSize = DefaultMaxCornerSize
	}
	if c.SeparationRounds == 0 {
		c.SeparationRounds = DefaultSeparationRounds
	}
}

// Validate checks every setting is finite and in range.
func (c Config) Validate() error {
	if err := errors.ValidatePositive("max_segment_separation", c.MaxSegmentSeparation); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"small_offset", c.SmallOffset},
		{"overlap_tolerance", c.OverlapTolerance},
		{"extension_tolerance", c.ExtensionTolerance},
		{"max_corner_size", c.MaxCornerSize},
	} {
		if err := errors.ValidateNonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	if err := errors.ValidateFinite("meeting_weight", c.MeetingWeight); err != nil {
		return err
	}
	if c.SeparationRounds < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "separation_rounds must be at least 1, got %d", c.SeparationRounds)
	}
	return nil
}

// nudgeCap bounds the free space considered when nudging fixed segments.
func (c Config) nudgeCap() float64 {
	return 2 * c.MaxSegmentSeparation
}
