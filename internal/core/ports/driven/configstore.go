package driven

// ConfigStore is a flat key/value view over the persisted config file.
// Keys are dotted ("embedding.provider"); the store maps them to tables.
type ConfigStore interface {
	// Get returns the raw value stored under key.
	Get(key string) (any, bool)

	// GetString returns "" for missing keys and non-string values.
	GetString(key string) string

	// GetInt accepts int and int64 values and returns 0 for anything else.
	GetInt(key string) int

	// Set updates key and writes the file before returning.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path is the location of the config file on disk.
	Path() string
}
