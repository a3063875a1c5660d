package compose

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func TestLoadTree_NestedDirectories(t *testing.T) {
	fsys := mapFS(map[string]string{
		"a.yaml":   "x: 1\n",
		"b/c.yaml": "y: 2\n",
	})

	tree, err := LoadTree(context.Background(), fsys)
	require.NoError(t, err)

	want := map[string]any{
		"a": map[string]any{"x": 1},
		"b": map[string]any{"c": map[string]any{"y": 2}},
	}
	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTree_DuplicateKey(t *testing.T) {
	testCases := []struct {
		name  string
		files map[string]string
	}{
		{
			name: "file versus directory",
			files: map[string]string{
				"foo.yaml":     "x: 1\n",
				"foo/bar.yaml": "y: 2\n",
			},
		},
		{
			name: "yaml versus yml",
			files: map[string]string{
				"foo.yaml": "x: 1\n",
				"foo.yml":  "y: 2\n",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadTree(context.Background(), mapFS(tc.files))
			var dup *DuplicateKeyError
			require.ErrorAs(t, err, &dup)
			assert.Equal(t, "foo", dup.Key)
			assert.Equal(t, ".", dup.Dir)
		})
	}
}

func TestLoadTree_NonMappingDocuments(t *testing.T) {
	// Bare sequence and scalar documents are recovered by the plain-YAML
	// fallback instead of surfacing as null-wrapped mappings.
	fsys := mapFS(map[string]string{
		"numbers.yaml": "[1, 2, 3]\n",
		"port.yaml":    "8080\n",
	})

	tree, err := LoadTree(context.Background(), fsys)
	require.NoError(t, err)

	want := map[string]any{
		"numbers": []any{1, 2, 3},
		"port":    8080,
	}
	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTree_SingleNullKeyMappingIsKept(t *testing.T) {
	// A genuine one-field mapping with a null value re-reads as the same
	// mapping, which is not a scalar, so the unwrap heuristic leaves it be.
	fsys := mapFS(map[string]string{
		"retry.yaml": "limit:\n",
	})

	tree, err := LoadTree(context.Background(), fsys)
	require.NoError(t, err)

	want := map[string]any{
		"retry": map[string]any{"limit": nil},
	}
	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTree_SkipsForeignEntries(t *testing.T) {
	fsys := mapFS(map[string]string{
		"a.yaml":      "x: 1\n",
		"README.md":   "# docs\n",
		".hidden.yml": "secret: true\n",
	})

	tree, err := LoadTree(context.Background(), fsys)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"x": 1}}, tree)
}

func TestLoadTree_InvalidYAMLIsFatal(t *testing.T) {
	fsys := mapFS(map[string]string{
		"bad/broken.yaml": "a: [1,\n",
	})

	_, err := LoadTree(context.Background(), fsys)
	var invalid *InvalidFormatError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, filepath.Join("bad", "broken.yaml"), invalid.Path)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()

	t.Run("mapping document", func(t *testing.T) {
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("a: 1\nb:\n  c: 2\n"), 0o644))

		tree, err := Load(context.Background(), path)
		require.NoError(t, err)
		want := map[string]any{"a": 1, "b": map[string]any{"c": 2}}
		assert.Empty(t, cmp.Diff(want, tree))
	})

	t.Run("empty document", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		tree, err := Load(context.Background(), path)
		require.NoError(t, err)
		assert.Empty(t, tree)
	})

	t.Run("non-mapping document cannot become a tree", func(t *testing.T) {
		path := filepath.Join(dir, "list.yaml")
		require.NoError(t, os.WriteFile(path, []byte("[1, 2, 3]\n"), 0o644))

		_, err := Load(context.Background(), path)
		var invalid *InvalidFormatError
		require.ErrorAs(t, err, &invalid)
	})
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "db"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte("name: demo\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db", "conn.yaml"), []byte("host: localhost\n"), 0o644))

	tree, err := Load(context.Background(), dir)
	require.NoError(t, err)

	want := map[string]any{
		"app": map[string]any{"name": "demo"},
		"db":  map[string]any{"conn": map[string]any{"host": "localhost"}},
	}
	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDocument_AcceptsAnyDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "numbers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[1, 2, 3]\n"), 0o644))

	doc, err := LoadDocument(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, doc)
}
