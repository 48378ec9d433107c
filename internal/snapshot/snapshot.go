// Package snapshot persists compiled engine bytecode to the filesystem so a
// later process start can skip cold-start initialization.
//
// The on-disk format is a small header (magic, version tag) followed by the
// opaque bytecode payload. The tag pins both the vendored KaTeX release and
// the bytecode flavor; any mismatch is reported as ErrInvalid so the caller
// degrades to a cold start instead of crashing on foreign bytecode.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sentinel errors for snapshot cache operations.
var (
	// ErrNotFound means no snapshot exists at the path. Expected on first
	// run; never fatal.
	ErrNotFound = errors.New("snapshot not found")

	// ErrInvalid means the file exists but is not a usable snapshot
	// (truncated, foreign format, or written by a different version).
	ErrInvalid = errors.New("snapshot invalid")
)

// magic identifies a go-katex snapshot file. The trailing byte is the header
// format revision.
var magic = []byte{'K', 'T', 'X', 'S', 'N', 'A', 'P', 1}

const maxTagLen = 255

// Load reads the snapshot at path and returns its payload.
// Returns ErrNotFound for a missing file and ErrInvalid for anything that is
// not a well-formed snapshot carrying the expected tag.
func Load(path, tag string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- caller-provided cache path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalid, path, err)
	}

	if len(data) < len(magic)+1 || !bytes.Equal(data[:len(magic)], magic) {
		return nil, fmt.Errorf("%w: bad header", ErrInvalid)
	}
	data = data[len(magic):]

	tagLen := int(data[0])
	data = data[1:]
	if len(data) < tagLen {
		return nil, fmt.Errorf("%w: truncated tag", ErrInvalid)
	}
	if gotTag := string(data[:tagLen]); gotTag != tag {
		return nil, fmt.Errorf("%w: version %q, want %q", ErrInvalid, gotTag, tag)
	}

	payload := data[tagLen:]
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalid)
	}
	return payload, nil
}

// Store writes a snapshot atomically: the file is assembled in a temp file in
// the destination directory and renamed into place, so a crash mid-write
// never leaves a partial snapshot behind the final name.
func Store(path, tag string, payload []byte) error {
	if len(tag) == 0 || len(tag) > maxTagLen {
		return fmt.Errorf("snapshot tag length %d out of range", len(tag))
	}
	if len(payload) == 0 {
		return errors.New("empty snapshot payload")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(magic)
	_ = binary.Write(&buf, binary.BigEndian, uint8(len(tag)))
	buf.WriteString(tag)
	buf.Write(payload)

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("creating snapshot temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing snapshot temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming snapshot into place: %w", err)
	}
	return nil
}
