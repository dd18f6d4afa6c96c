package models

// FileRecord describes one downloadable file found under the files root.
// Path is relative to the files root and uses forward slashes; Stem is the
// filename without its last extension; Name is the full filename.
type FileRecord struct {
	Path string `json:"path"`
	Stem string `json:"stem"`
	Name string `json:"name"`
}
