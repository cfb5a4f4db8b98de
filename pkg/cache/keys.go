package cache

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey returns the key of an orchestrator result for a
	// graph+options fingerprint.
	LayoutKey(fingerprint string) string

	// GroupedKey returns the key of a grouped-view result.
	GroupedKey(fingerprint string, opts GroupedKeyOpts) string
}

// GroupedKeyOpts holds the settings besides the graph that change a
// grouped-view result.
type GroupedKeyOpts struct {
	Threshold   int      `json:"threshold"`
	Rules       []string `json:"rules"`
	BasePadding float64  `json:"base_padding"`
	MinHeight   float64  `json:"min_height"`
}

// DefaultKeyer produces keys of the form kind:sha256(parts).
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(fingerprint string) string {
	return "layout:" + fingerprint
}

// GroupedKey implements [Keyer].
func (DefaultKeyer) GroupedKey(fingerprint string, opts GroupedKeyOpts) string {
	return hashKey("grouped", fingerprint, opts)
}

var _ Keyer = DefaultKeyer{}
