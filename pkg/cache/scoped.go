package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments, or several
// tenants of one server, can share a backend without sharing entries.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "wzrd:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ImportKey generates a prefixed key for imported documents.
func (k *ScopedKeyer) ImportKey(scriptHash string) string {
	return k.prefix + k.inner.ImportKey(scriptHash)
}

// TextKey generates a prefixed key for generated text.
func (k *ScopedKeyer) TextKey(graphHash string) string {
	return k.prefix + k.inner.TextKey(graphHash)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(graphHash, opts)
}
