package cache

// LayoutKeyOpts lists every setting that changes a beautified layout.
type LayoutKeyOpts struct {
	MaxSegmentSeparation float64 `json:"max_segment_separation"`
	SmallOffset          float64 `json:"small_offset"`
	OverlapTolerance     float64 `json:"overlap_tolerance"`
	ExtensionTolerance   float64 `json:"extension_tolerance"`
	MaxCornerSize        float64 `json:"max_corner_size"`
	MeetingWeight        float64 `json:"meeting_weight"`
	SeparationRounds     int     `json:"separation_rounds"`
}

// CheckKeyOpts lists every setting that changes an overlap report.
type CheckKeyOpts struct {
	OverlapTolerance float64 `json:"overlap_tolerance"`
	SmallOffset      float64 `json:"small_offset"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key for a beautified model.
	LayoutKey(modelHash string, opts LayoutKeyOpts) string

	// CheckKey returns the key for an overlap report.
	CheckKey(modelHash string, opts CheckKeyOpts) string
}

// DefaultKeyer produces keys of the form "kind:sha256(model, opts)".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey hashes the model hash together with the layout settings.
func (k *DefaultKeyer) LayoutKey(modelHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", modelHash, opts)
}

// CheckKey hashes the model hash together with the check settings.
func (k *DefaultKeyer) CheckKey(modelHash string, opts CheckKeyOpts) string {
	return hashKey("check", modelHash, opts)
}
