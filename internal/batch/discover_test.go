package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func rels(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = relPath(root, p)
	}
	return out
}

func TestDiscover(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"a.tsx":                  "return null;",
		"scenes/b.jsx":           "return null;",
		"scenes/deep/c.ts":       "return null;",
		"scenes/notes.md":        "# notes",
		"node_modules/dep/x.tsx": "return null;",
		"dist/out.js":            "return null;",
	})

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{"default", nil, []string{"a.tsx", "scenes/b.jsx", "scenes/deep/c.ts"}},
		{"top level only", []string{"*.tsx"}, []string{"a.tsx"}},
		{"subtree", []string{"scenes/**/*"}, []string{"scenes/b.jsx", "scenes/deep/c.ts", "scenes/notes.md"}},
		{"several", []string{"*.tsx", "**/*.md"}, []string{"a.tsx", "scenes/notes.md"}},
		{"no match", []string{"**/*.vue"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths, err := Discover(context.Background(), root, tt.patterns)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, rels(t, root, paths))
		})
	}
}

func TestDiscoverSortsPaths(t *testing.T) {
	root := writeFiles(t, map[string]string{"c.tsx": "", "a.tsx": "", "b/a.tsx": ""})
	paths, err := Discover(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.tsx", "b/a.tsx", "c.tsx"}, rels(t, root, paths))
}

func TestDiscoverFileRoot(t *testing.T) {
	root := writeFiles(t, map[string]string{"one.tsx": "return null;"})
	file := filepath.Join(root, "one.tsx")

	paths, err := Discover(context.Background(), file, []string{"*.vue"})
	require.NoError(t, err)
	assert.Equal(t, []string{file}, paths)
}

func TestDiscoverErrors(t *testing.T) {
	_, err := Discover(context.Background(), t.TempDir(), []string{"[unclosed"})
	assert.ErrorContains(t, err, "invalid pattern")

	_, err = Discover(context.Background(), filepath.Join(t.TempDir(), "missing"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscoverCancelled(t *testing.T) {
	root := writeFiles(t, map[string]string{"a.tsx": ""})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Discover(ctx, root, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"ok.tsx":          "export const X = () => null;\n",
		"bad.fail.tsx":    "return 42;",
		"latin1.tsx":      "const caf\xe9 = \"cr\xe8me br\xfbl\xe9e\"; // fran\xe7ais\n",
		"image.tsx":       "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01",
		"big/src.tsx":     "return null; // padding padding padding",
		"empty/blank.tsx": "",
	})

	t.Run("utf-8 source", func(t *testing.T) {
		f, err := Load(root, filepath.Join(root, "ok.tsx"), 0)
		require.NoError(t, err)
		assert.Equal(t, "ok.tsx", f.Rel)
		assert.Equal(t, "utf-8", f.Charset)
		assert.Contains(t, f.MIME, "text/plain")
		assert.Equal(t, "export const X = () => null;\n", f.Source)
		assert.EqualValues(t, len(f.Source), f.Size)
		assert.False(t, f.ExpectFailure)
	})

	t.Run("expected failure", func(t *testing.T) {
		f, err := Load(root, filepath.Join(root, "bad.fail.tsx"), 0)
		require.NoError(t, err)
		assert.True(t, f.ExpectFailure)
	})

	t.Run("not utf-8", func(t *testing.T) {
		f, err := Load(root, filepath.Join(root, "latin1.tsx"), 0)
		assert.ErrorIs(t, err, ErrEncoding)
		require.NotNil(t, f)
		assert.NotEmpty(t, f.Charset)
		assert.NotEqual(t, "utf-8", f.Charset)
		assert.Empty(t, f.Source)
	})

	t.Run("binary", func(t *testing.T) {
		f, err := Load(root, filepath.Join(root, "image.tsx"), 0)
		assert.ErrorIs(t, err, ErrBinary)
		require.NotNil(t, f)
		assert.Equal(t, "image/png", f.MIME)
	})

	t.Run("too large", func(t *testing.T) {
		f, err := Load(root, filepath.Join(root, "big/src.tsx"), 8)
		assert.ErrorIs(t, err, ErrTooLarge)
		assert.Nil(t, f)
	})

	t.Run("empty", func(t *testing.T) {
		f, err := Load(root, filepath.Join(root, "empty/blank.tsx"), 0)
		require.NoError(t, err)
		assert.Empty(t, f.Source)
		assert.Equal(t, "empty/blank.tsx", f.Rel)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Load(root, filepath.Join(root, "nope.tsx"), 0)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
