package source

import (
	"os"
	"sync"
)

// Registry is the single process-wide mapping from FileID to source path and
// contents. Per spec.md §5, it is the only shared mutable state in the
// pipeline: it must be initialised before lexing and may only grow
// afterwards, so an append-only slice guarded by a read/write lock is
// sufficient — readers never block each other, and writers (registrations)
// are rare and append-only.
type Registry struct {
	mu    sync.RWMutex
	files []File
}

// File is a registered source file: its path and its rune contents.
type File struct {
	Path     string
	Contents []rune
}

// Default is the process-wide registry used by Location.String and by the
// compiler entry points in pkg/cmd. Tests that need isolation construct their
// own *Registry instead of touching this one.
var Default = NewRegistry()

// NewRegistry constructs an empty file registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a new source file to the registry and returns its FileID.
// Safe to call concurrently with Path/Contents lookups and with other
// Register calls, since every access takes the registry's lock (the pipeline
// itself is single-threaded per spec.md §5, so this is a defensive property
// rather than a requirement).
func (r *Registry) Register(path string, contents []rune) FileID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := FileID(len(r.files))
	r.files = append(r.files, File{path, contents})

	return id
}

// RegisterFromDisk reads path and registers its contents, returning the new
// FileID.
func (r *Registry) RegisterFromDisk(path string) (FileID, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	return r.Register(path, []rune(string(bytes))), nil
}

// Path returns the registered path for id, or "<unknown>" if id was never
// registered (this should not happen in practice, since FileID values are
// only ever handed out by Register).
func (r *Registry) Path(id FileID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if int(id) >= len(r.files) {
		return "<unknown>"
	}

	return r.files[id].Path
}

// Contents returns the registered contents for id.
func (r *Registry) Contents(id FileID) []rune {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if int(id) >= len(r.files) {
		return nil
	}

	return r.files[id].Contents
}

// Line extracts the (1-indexed) physical line of text enclosing the given
// location, for rendering in diagnostics (the "-->" caret format of §7).
func (r *Registry) Line(loc Location) string {
	contents := r.Contents(loc.FileID)

	var (
		line  uint = 1
		start int
	)

	for i, ch := range contents {
		if line == loc.Line {
			end := i

			for end < len(contents) && contents[end] != '\n' {
				end++
			}

			return string(contents[start:end])
		}

		if ch == '\n' {
			line++
			start = i + 1
		}
	}

	if line == loc.Line {
		return string(contents[start:])
	}

	return ""
}
