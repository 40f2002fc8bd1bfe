package cache

// ScopedKeyer wraps a Keyer with a prefix so that entries fetched with one
// listener's credential are never served to another.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), CredentialScope(token))
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
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// CredentialScope derives a stable key prefix from an access credential
// without storing the credential itself.
func CredentialScope(credential string) string {
	return "user:" + Hash([]byte(credential))[:16] + ":"
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) CollectionKey(opts CollectionKeyOpts) string {
	return k.prefix + k.inner.CollectionKey(opts)
}

func (k *ScopedKeyer) ArtifactKey(museumHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(museumHash, opts)
}
