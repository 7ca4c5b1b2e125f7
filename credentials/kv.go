package credentials

// KV is the key-value port the Store persists through. Implementations must be
// durable across process restarts for the session to survive a reload.
type KV interface {
	// Get returns the value for key and whether it was present
	Get(key string) (string, bool, error)

	// Set writes value under key, replacing any previous value
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error
	Remove(key string) error
}
