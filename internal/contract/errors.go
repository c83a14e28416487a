package contract

import "fmt"

// PathNotFoundError is returned when an analysis root does not exist.
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path not found: %s", e.Path)
}

// SyntaxError is returned when a source file cannot be parsed.
type SyntaxError struct {
	File    string
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

// ManifestParseError is returned when a dependency manifest is malformed.
type ManifestParseError struct {
	Manifest string
	Err      error
}

func (e *ManifestParseError) Error() string {
	return fmt.Sprintf("cannot parse %s: %v", e.Manifest, e.Err)
}

func (e *ManifestParseError) Unwrap() error {
	return e.Err
}
