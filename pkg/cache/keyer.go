package cache

// ArtifactKeyOpts holds the render options that affect an artifact's bytes.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Mode    string  `json:"mode,omitempty"` // "animated", "hidden" or "frame"
	Scale   float64 `json:"scale,omitempty"`
	Elapsed int64   `json:"elapsed,omitempty"` // frame time in ms
	Locale  string  `json:"locale,omitempty"`
	Version string  `json:"version,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key of a rendered artifact for content with the
	// given hash.
	ArtifactKey(contentHash string, opts ArtifactKeyOpts) string

	// DatasetKey returns the key of a decoded dataset read from source.
	DatasetKey(source string, contentHash string) string
}

// DefaultKeyer generates "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", contentHash, opts)
}

// DatasetKey implements Keyer.
func (DefaultKeyer) DatasetKey(source string, contentHash string) string {
	return hashKey("dataset", source, contentHash)
}

// ScopedKeyer prefixes every key of an inner Keyer, giving each namespace
// (for example one per Redis deployment) its own key space.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ArtifactKey implements Keyer.
func (k *ScopedKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(contentHash, opts)
}

// DatasetKey implements Keyer.
func (k *ScopedKeyer) DatasetKey(source string, contentHash string) string {
	return k.prefix + k.inner.DatasetKey(source, contentHash)
}
