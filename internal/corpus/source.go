package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Source supplies the raw CSV bytes of a corpus.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// FileSource reads the corpus from a local file.
type FileSource struct {
	Path string
}

// Open opens the file. A missing or zero-length file is ErrDataUnavailable.
func (s FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s not found", ErrDataUnavailable, s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}

	info, err := f.Stat()
	if err == nil && info.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %s is empty", ErrDataUnavailable, s.Path)
	}
	return f, nil
}

func (s FileSource) String() string {
	return s.Path
}

// SnapshotGetter fetches a stored corpus snapshot by name.
// Implemented by storage.Client.
type SnapshotGetter interface {
	GetSnapshot(ctx context.Context, name string) ([]byte, error)
}

// ObjectSource reads the corpus from a snapshot in object storage.
type ObjectSource struct {
	Store SnapshotGetter
	Name  string
}

// Open downloads the snapshot. Any fetch failure is ErrDataUnavailable.
func (s ObjectSource) Open(ctx context.Context) (io.ReadCloser, error) {
	data, err := s.Store.GetSnapshot(ctx, s.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: snapshot %s is empty", ErrDataUnavailable, s.Name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s ObjectSource) String() string {
	return "s3://snapshots/" + s.Name
}
