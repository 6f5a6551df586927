// Package storage saves uploaded movie posters on local disk.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalAssets writes files under Dir and exposes them below URLPrefix.
type LocalAssets struct {
	Dir       string
	URLPrefix string
}

// NewLocalAssets returns a store rooted at dir.  The directory is created
// on first save.
func NewLocalAssets(dir, urlPrefix string) *LocalAssets {
	if urlPrefix == "" {
		urlPrefix = "/movie-posters"
	}
	return &LocalAssets{Dir: dir, URLPrefix: "/" + strings.Trim(urlPrefix, "/")}
}

// Save copies r into a fresh "<uuid><ext>" file and returns its public
// path.  An empty reader stores nothing and returns "".
func (s *LocalAssets) Save(ctx context.Context, r io.Reader, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r == nil {
		return "", nil
	}
	// peek one byte so empty uploads leave no file behind
	var first [1]byte
	n, err := io.ReadFull(r, first[:])
	if n == 0 {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return "", nil
		}
		return "", fmt.Errorf("read upload: %w", err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", s.Dir, err)
	}
	name := uuid.NewString() + cleanExt(ext)
	full := filepath.Join(s.Dir, name)
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	_, werr := f.Write(first[:n])
	if werr == nil {
		_, werr = io.Copy(f, r)
	}
	if werr != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write %s: %w", name, werr)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return path.Join(s.URLPrefix, name), nil
}

// Remove deletes a file previously returned by Save.  Paths outside
// URLPrefix and files already gone are ignored.
func (s *LocalAssets) Remove(ctx context.Context, public string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, ok := strings.CutPrefix(public, s.URLPrefix+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

func cleanExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
