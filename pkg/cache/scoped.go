package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each caller its own
// namespace in a shared store.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "tenant:acme:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer selects
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(fingerprint string) string {
	return k.prefix + k.inner.LayoutKey(fingerprint)
}

// GroupedKey generates a prefixed grouped-view key.
func (k *ScopedKeyer) GroupedKey(fingerprint string, opts GroupedKeyOpts) string {
	return k.prefix + k.inner.GroupedKey(fingerprint, opts)
}
