package object

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrNotFound is returned (wrapped) when an object is not in the store.
var ErrNotFound = errors.New("object not found")

// Store is a content-addressed object store with one sub-area per object
// kind and one file per object, named by its full digest:
//
//	objects/blobs/<digest>
//	objects/commits/<digest>
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectories are created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

func kindDir(objType ObjectType) string {
	return string(objType) + "s"
}

func (s *Store) areaPath(objType ObjectType) string {
	return filepath.Join(s.root, "objects", kindDir(objType))
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(objType ObjectType, h Hash) string {
	return filepath.Join(s.areaPath(objType), string(h))
}

// ValidHash reports whether h looks like a full digest.
func ValidHash(h Hash) bool {
	if len(h) != 64 {
		return false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Has reports whether the store contains an object of the given kind.
func (s *Store) Has(objType ObjectType, h Hash) bool {
	if !ValidHash(h) {
		return false
	}
	_, err := os.Stat(s.objectPath(objType, h))
	return err == nil
}

// Write stores an object under its content hash and returns the hash.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	h := HashObject(objType, data)
	if err := s.writeAt(objType, h, data); err != nil {
		return "", err
	}
	return h, nil
}

// writeAt stores data under h. The on-disk format is "type len\0content".
// Writing an object that already exists is a no-op. Writes are atomic:
// data is written to a temp file and then renamed into place.
func (s *Store) writeAt(objType ObjectType, h Hash, data []byte) error {
	// Fast path: already exists.
	if s.Has(objType, h) {
		return nil
	}

	envelope := fmt.Sprintf("%s %d\x00", objType, len(data))
	raw := append([]byte(envelope), data...)

	dir := s.areaPath(objType)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(objType, h)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("object write rename: %w", err)
	}
	return nil
}

// Read retrieves an object of the given kind by hash and returns its raw
// content. A missing object yields an error wrapping ErrNotFound.
func (s *Store) Read(objType ObjectType, h Hash) ([]byte, error) {
	if !ValidHash(h) {
		return nil, fmt.Errorf("object read %q: %w", h, ErrNotFound)
	}
	raw, err := os.ReadFile(s.objectPath(objType, h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("object read %s %s: %w", objType, h, ErrNotFound)
		}
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}

	// Parse envelope: "type len\0content"
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return nil, fmt.Errorf("object read %s: invalid format (no NUL)", h)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("object read %s: invalid header %q", h, header)
	}
	if got := ObjectType(parts[0]); got != objType {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, got, objType)
	}
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("object read %s: invalid length %q: %w", h, parts[1], err)
	}
	if len(content) != length {
		return nil, fmt.Errorf("object read %s: length mismatch (header=%d, actual=%d)", h, length, len(content))
	}

	return content, nil
}

// List returns every digest stored for the given kind, sorted.
func (s *Store) List(objType ObjectType) ([]Hash, error) {
	entries, err := os.ReadDir(s.areaPath(objType))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s objects: %w", objType, err)
	}
	out := make([]Hash, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		h := Hash(e.Name())
		if !ValidHash(h) {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	data, err := s.Read(TypeBlob, h)
	if err != nil {
		return nil, err
	}
	return UnmarshalBlob(data)
}

// WriteCommit serializes and stores a CommitObj under its identity hash.
// Tracked paths containing a line break cannot be encoded and are refused.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	for p := range c.Tracked {
		if p == "" || strings.ContainsAny(p, "\n\r") {
			return "", fmt.Errorf("object write commit: unencodable path %q", p)
		}
	}
	h := HashCommit(c)
	if err := s.writeAt(TypeCommit, h, MarshalCommit(c)); err != nil {
		return "", err
	}
	return h, nil
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	data, err := s.Read(TypeCommit, h)
	if err != nil {
		return nil, err
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return c, nil
}

// ListCommits returns all commit digests, sorted.
func (s *Store) ListCommits() ([]Hash, error) {
	return s.List(TypeCommit)
}

// ListBlobs returns all blob digests, sorted.
func (s *Store) ListBlobs() ([]Hash, error) {
	return s.List(TypeBlob)
}
