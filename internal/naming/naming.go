// Package naming decides which object keys the pipeline may process and
// derives the destination keys for generated thumbnails.
//
// The classifier is the single gate shared by the write path (resize) and
// the read path (catalog listing). Keeping derivative detection and key
// derivation in one place is what prevents reprocessing loops: every key
// produced by DeriveKey classifies as AlreadyDerivative.
package naming

import (
	"path"
	"strings"
)

// Class is the processing classification of an object key.
type Class int

const (
	// Processable keys are supported source images.
	Processable Class = iota
	// AlreadyDerivative keys are thumbnails this pipeline produced.
	AlreadyDerivative
	// Unsupported keys are not images the transcoder can handle.
	Unsupported
)

func (c Class) String() string {
	switch c {
	case Processable:
		return "processable"
	case AlreadyDerivative:
		return "already-derivative"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// DefaultPrefix is the derivative marker prepended to source keys.
const DefaultPrefix = "thumb-"

// defaultExtensions is the allow-set of source image extensions.
var defaultExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// Mapper classifies object keys and derives thumbnail keys.
// It is pure: no side effects, safe for concurrent use.
type Mapper struct {
	prefix string
	root   string
	exts   map[string]bool
}

// NewMapper creates a Mapper with the given derivative prefix and optional
// derivative root path (a key subtree holding generated thumbnails, e.g.
// "thumbnails/"; empty disables the root check). An empty prefix falls back
// to DefaultPrefix.
func NewMapper(prefix, root string) *Mapper {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Mapper{
		prefix: prefix,
		root:   root,
		exts:   defaultExtensions,
	}
}

// Classify reports whether key denotes a processable source image, a
// derivative this pipeline already produced, or an unsupported object.
// The prefix and root checks are exact and case-sensitive; the extension
// check is case-insensitive on the final path segment.
func (m *Mapper) Classify(key string) Class {
	if strings.HasPrefix(key, m.prefix) {
		return AlreadyDerivative
	}
	if m.root != "" && strings.HasPrefix(key, m.root) {
		return AlreadyDerivative
	}
	ext := strings.ToLower(path.Ext(key))
	if !m.exts[ext] {
		return Unsupported
	}
	return Processable
}

// DeriveKey maps a source key to its thumbnail key. Deterministic and
// injective: the marker is prepended to the full key, so path structure is
// preserved and distinct sources never collide.
func (m *Mapper) DeriveKey(key string) string {
	if m.root != "" {
		return m.root + key
	}
	return m.prefix + key
}

// Prefix returns the configured derivative marker.
func (m *Mapper) Prefix() string {
	return m.prefix
}
