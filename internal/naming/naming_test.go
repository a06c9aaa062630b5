package naming

import "testing"

func TestClassify(t *testing.T) {
	m := NewMapper("thumb-", "")

	tests := []struct {
		key  string
		want Class
	}{
		{"photo.jpg", Processable},
		{"photo.JPG", Processable},
		{"photo.jpeg", Processable},
		{"banner.png", Processable},
		{"anim.gif", Processable},
		{"scan.bmp", Processable},
		{"modern.webp", Processable},
		{"albums/2025/photo.png", Processable},
		{"a.TXT", Unsupported},
		{"notes.txt", Unsupported},
		{"clip.mp4", Unsupported},
		{"archive.tar.gz", Unsupported},
		{"noextension", Unsupported},
		{"", Unsupported},
		{"thumb-a.jpg", AlreadyDerivative},
		{"thumb-albums/2025/photo.png", AlreadyDerivative},
		{"thumb-notes.txt", AlreadyDerivative},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := m.Classify(tt.key); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestClassifyPrefixIsCaseSensitive(t *testing.T) {
	m := NewMapper("thumb-", "")
	// "Thumb-" is not the configured marker, so the key is judged by extension.
	if got := m.Classify("Thumb-a.jpg"); got != Processable {
		t.Errorf("Classify(%q) = %v, want %v", "Thumb-a.jpg", got, Processable)
	}
}

func TestClassifyDerivativeRoot(t *testing.T) {
	m := NewMapper("thumb-", "thumbnails/")

	if got := m.Classify("thumbnails/photo.jpg"); got != AlreadyDerivative {
		t.Errorf("Classify under root = %v, want %v", got, AlreadyDerivative)
	}
	if got := m.Classify("uploads/photo.jpg"); got != Processable {
		t.Errorf("Classify outside root = %v, want %v", got, Processable)
	}
}

func TestDeriveKeyPreservesPath(t *testing.T) {
	m := NewMapper("thumb-", "")
	if got := m.DeriveKey("albums/2025/photo.jpg"); got != "thumb-albums/2025/photo.jpg" {
		t.Errorf("DeriveKey = %q, want %q", got, "thumb-albums/2025/photo.jpg")
	}
}

func TestDeriveKeyUsesRoot(t *testing.T) {
	m := NewMapper("thumb-", "thumbnails/")
	if got := m.DeriveKey("photo.jpg"); got != "thumbnails/photo.jpg" {
		t.Errorf("DeriveKey = %q, want %q", got, "thumbnails/photo.jpg")
	}
}

// Every derived key must classify as a derivative, regardless of mapper
// configuration. This is what stops a stored thumbnail from re-triggering
// the pipeline.
func TestDeriveKeyNeverReprocessed(t *testing.T) {
	keys := []string{
		"photo.jpg",
		"photo.JPG",
		"albums/2025/photo.png",
		"deep/nested/path/to/img.webp",
		"weird name (1).jpeg",
		"notes.txt",
	}
	mappers := []*Mapper{
		NewMapper("thumb-", ""),
		NewMapper("tn_", ""),
		NewMapper("thumb-", "thumbnails/"),
	}

	for _, m := range mappers {
		for _, k := range keys {
			derived := m.DeriveKey(k)
			if got := m.Classify(derived); got != AlreadyDerivative {
				t.Errorf("Classify(DeriveKey(%q)) = %v, want %v (prefix %q)",
					k, got, AlreadyDerivative, m.Prefix())
			}
		}
	}
}
