package storage

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

const (
	stagingDir = "staging"
	objectsDir = "objects"
)

// LocalSink implements Sink on the local filesystem.
//
// Staged uploads live under staging/<id>_<name>. Committed objects are
// content addressed: objects/<ab>/<sha3-256>.svg.
type LocalSink struct {
	baseDir string
}

var _ Sink = (*LocalSink)(nil)

// NewLocalSink creates a sink rooted at baseDir.
func NewLocalSink(baseDir string) *LocalSink {
	return &LocalSink{baseDir: baseDir}
}

// BaseDir returns the sink root.
func (s *LocalSink) BaseDir() string {
	return s.baseDir
}

// Stage writes r to the staging area.
func (s *LocalSink) Stage(ctx context.Context, fileName string, r io.Reader, limit int64) (*Staged, error) {
	name, err := SanitizeFileName(fileName)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, ErrTooLarge
	}

	id := uuid.NewString()
	key := filepath.Join(stagingDir, id+"_"+name)
	if err := s.write(key, data); err != nil {
		return nil, err
	}
	return &Staged{
		ID:       id,
		Key:      key,
		FileName: name,
		Size:     int64(len(data)),
		Data:     data,
	}, nil
}

// Commit writes clean as a content-addressed object and removes the staged
// file.
func (s *LocalSink) Commit(ctx context.Context, st *Staged, clean []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	staged, err := s.resolve(st.Key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(staged); errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotStaged
	}

	key := ObjectKey(clean)
	if err := s.write(key, clean); err != nil {
		return "", err
	}
	if err := os.Remove(staged); err != nil {
		return "", fmt.Errorf("remove staged upload: %w", err)
	}
	return key, nil
}

// Discard removes the staged file.
func (s *LocalSink) Discard(ctx context.Context, st *Staged) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	staged, err := s.resolve(st.Key)
	if err != nil {
		return err
	}
	if err := os.Remove(staged); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotStaged
		}
		return fmt.Errorf("remove staged upload: %w", err)
	}
	return nil
}

// Open opens a committed object for reading.
func (s *LocalSink) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(filepath.Clean(key), objectsDir+string(filepath.Separator)) {
		return nil, ErrInvalidKey
	}
	return os.Open(full)
}

// ObjectKey returns the content-addressed key for data.
func ObjectKey(data []byte) string {
	sum := sha3.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	return filepath.Join(objectsDir, digest[:2], digest+".svg")
}

func (s *LocalSink) resolve(key string) (string, error) {
	clean := filepath.Clean(key)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.baseDir, clean), nil
}

// write stores data at key through a temporary file and a rename, so readers
// never see a partial object.
func (s *LocalSink) write(key string, data []byte) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write body: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
