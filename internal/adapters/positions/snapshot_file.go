package positions

import (
	"departure-optimizer-service/internal/domain"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

const snapshotVersion = 1

// On-disk snapshot layout: msgpack, compressed with zstd.
type snapshotFile struct {
	Version   int                     `msgpack:"version"`
	CreatedAt time.Time               `msgpack:"created_at"`
	Positions []domain.FlightPosition `msgpack:"positions"`
}

// WriteSnapshot encodes positions to w.
func WriteSnapshot(w io.Writer, positions []domain.FlightPosition) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer zw.Close()

	f := snapshotFile{
		Version:   snapshotVersion,
		CreatedAt: time.Now().UTC(),
		Positions: positions,
	}
	if err := msgpack.NewEncoder(zw).Encode(&f); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}

	return nil
}

// ReadSnapshot decodes positions written by WriteSnapshot.
func ReadSnapshot(r io.Reader) ([]domain.FlightPosition, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var f snapshotFile
	if err := msgpack.NewDecoder(zr).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if f.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", f.Version)
	}

	for i := range f.Positions {
		f.Positions[i].Timestamp = f.Positions[i].Timestamp.UTC()
	}
	return f.Positions, nil
}

// LoadSnapshotFile reads a snapshot file and indexes it.
func LoadSnapshotFile(path string) (*SnapshotStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer f.Close()

	positions, err := ReadSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", path, err)
	}
	return NewSnapshotStore(positions), nil
}

// WriteSnapshotFile writes positions to path, replacing any existing file.
func WriteSnapshotFile(path string, positions []domain.FlightPosition) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	if err := WriteSnapshot(f, positions); err != nil {
		_ = f.Close()
		return fmt.Errorf("write snapshot %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write snapshot %q: %w", path, err)
	}
	return nil
}
