package contract

// DocumentMetadataRepository persists the filename -> document id map.
type DocumentMetadataRepository interface {
	Load() (map[string]string, error)
	Save(entries map[string]string) error
}
