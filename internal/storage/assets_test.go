package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "posters")
	s := NewLocalAssets(dir, "movie-posters/")

	p, err := s.Save(context.Background(), strings.NewReader("png-bytes"), ".PNG")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^/movie-posters/[0-9a-f-]{36}\.png$`), p)

	body, err := os.ReadFile(filepath.Join(dir, filepath.Base(p)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))

	q, err := s.Save(context.Background(), strings.NewReader("x"), "jpg")
	require.NoError(t, err)
	assert.NotEqual(t, p, q)
	assert.True(t, strings.HasSuffix(q, ".jpg"))
}

func TestSaveEmptyIsNoop(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "posters")
	s := NewLocalAssets(dir, "")

	p, err := s.Save(context.Background(), strings.NewReader(""), ".png")
	require.NoError(t, err)
	assert.Empty(t, p)

	p, err = s.Save(context.Background(), nil, ".png")
	require.NoError(t, err)
	assert.Empty(t, p)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveRejectsPathInExtension(t *testing.T) {
	s := NewLocalAssets(t.TempDir(), "")
	p, err := s.Save(context.Background(), strings.NewReader("x"), "/../../evil")
	require.NoError(t, err)
	assert.Regexp(t, `^/movie-posters/[0-9a-f-]{36}$`, p)
}

// brokenReader yields its data once and then fails.
type brokenReader struct {
	data []byte
	done bool
}

func (b *brokenReader) Read(p []byte) (int, error) {
	if b.done {
		return 0, errors.New("client disconnected mid-upload")
	}
	b.done = true
	return copy(p, b.data), nil
}

func TestSaveReportsReadFailure(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalAssets(dir, "")

	p, err := s.Save(context.Background(), &brokenReader{data: []byte("x")}, ".png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client disconnected")
	assert.Empty(t, p)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial upload must not stay on disk")
}

func TestRemoveDeletesSavedFile(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalAssets(dir, "")

	p, err := s.Save(context.Background(), strings.NewReader("png"), ".png")
	require.NoError(t, err)
	require.NoError(t, s.Remove(context.Background(), p))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// unknown or foreign paths are ignored
	assert.NoError(t, s.Remove(context.Background(), p))
	assert.NoError(t, s.Remove(context.Background(), "/elsewhere/x.png"))
}
