package ports

// FileSystem stores thumbnails, summaries and debug artifacts.
type FileSystem interface {
	// WriteFile replaces the file at path with data, creating missing
	// parent directories. A reader never observes a partially written file.
	WriteFile(path string, data []byte) error
}
