// Package backup snapshots the index database before bulk mutation.
//
// A snapshot is a consistent copy made with VACUUM INTO, compressed with xz
// and accompanied by a .blake3 file in b3sum format holding the digest of
// the compressed bytes.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/jward/stindex/internal/store"
)

// ErrDigestMismatch is returned when a snapshot does not match its digest.
var ErrDigestMismatch = errors.New("snapshot digest mismatch")

const (
	snapshotExt = ".db.xz"
	digestExt   = ".blake3"
	stampLayout = "20060102T150405.000Z"
)

// Snapshot describes a written snapshot.
type Snapshot struct {
	Path       string    `json:"path"`
	DigestPath string    `json:"digest_path"`
	Digest     string    `json:"digest"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}

// Create writes a snapshot of s into dir, which is created if needed. An
// empty dir selects a "backups" directory next to the database.
func Create(ctx context.Context, s *store.Store, dir string) (*Snapshot, error) {
	if dir == "" {
		dir = filepath.Join(filepath.Dir(s.Path()), "backups")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("backup: create dir: %w", err)
	}

	now := time.Now().UTC()
	base := strings.TrimSuffix(filepath.Base(s.Path()), filepath.Ext(s.Path()))
	name := fmt.Sprintf("%s-%s%s", base, now.Format(stampLayout), snapshotExt)
	snap := &Snapshot{
		Path:      filepath.Join(dir, name),
		CreatedAt: now,
	}
	snap.DigestPath = snap.Path + digestExt

	tmp := filepath.Join(dir, "."+name+".vacuum")
	if _, err := s.DB().ExecContext(ctx, "VACUUM INTO ?", tmp); err != nil {
		return nil, fmt.Errorf("backup: vacuum into: %w", err)
	}
	defer os.Remove(tmp)

	digest, size, err := compress(tmp, snap.Path)
	if err != nil {
		os.Remove(snap.Path)
		return nil, fmt.Errorf("backup: %w", err)
	}
	snap.Digest, snap.Size = digest, size

	line := fmt.Sprintf("%s  %s\n", digest, name)
	if err := os.WriteFile(snap.DigestPath, []byte(line), 0o644); err != nil {
		return nil, fmt.Errorf("backup: write digest: %w", err)
	}
	return snap, nil
}

// compress xz-compresses src into dst, returning the BLAKE3 digest and size
// of the compressed output.
func compress(src, dst string) (string, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, fmt.Errorf("open vacuum copy: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create snapshot: %w", err)
	}
	defer out.Close()

	h := blake3.New()
	counter := &countingWriter{w: io.MultiWriter(out, h)}
	zw, err := xz.NewWriter(counter)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := io.Copy(zw, in); err != nil {
		return "", 0, fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", 0, fmt.Errorf("compress: close: %w", err)
	}
	if err := out.Sync(); err != nil {
		return "", 0, fmt.Errorf("compress: sync: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), counter.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Verify checks a snapshot against its .blake3 file and returns the digest.
func Verify(snapshot string) (string, error) {
	data, err := os.ReadFile(snapshot + digestExt)
	if err != nil {
		return "", fmt.Errorf("backup: read digest: %w", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", fmt.Errorf("backup: empty digest file")
	}
	want := strings.ToLower(fields[0])

	got, err := store.HashFile(snapshot)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	if got != want {
		return "", fmt.Errorf("%s: %w", filepath.Base(snapshot), ErrDigestMismatch)
	}
	return got, nil
}

// Restore verifies a snapshot and decompresses it to target. An existing
// target is only replaced when overwrite is set; the database must not be
// open while it is replaced.
func Restore(snapshot, target string, overwrite bool) error {
	if _, err := Verify(snapshot); err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("backup: restore target %s already exists", target)
		}
	}

	in, err := os.Open(snapshot)
	if err != nil {
		return fmt.Errorf("backup: open snapshot: %w", err)
	}
	defer in.Close()
	zr, err := xz.NewReader(in)
	if err != nil {
		return fmt.Errorf("failed to create xz reader: %w", err)
	}

	tmp := target + ".restore"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("backup: create target: %w", err)
	}
	if _, err := io.Copy(out, zr); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("backup: decompress: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("backup: close target: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		os.Remove(target + suffix)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("backup: rename: %w", err)
	}
	return nil
}

// List returns the snapshots in dir, oldest first.
func List(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+snapshotExt))
	if err != nil {
		return nil, fmt.Errorf("backup: list: %w", err)
	}
	return matches, nil
}
