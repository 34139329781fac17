package port

// Cache stores generated docstrings keyed by a content hash so repeated
// runs skip the provider call.
type Cache interface {
	Get(key string) (string, bool)
	Put(key string, docstring string) error
	Close() error
}
