package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultExts = []string{".json", ".geojson"}

// createTree creates files (relative, slash-separated) below root.
// Names ending in "/" become empty directories.
func createTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if p[len(p)-1] == '/' {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("{}"), 0o644))
	}
}

func newScanner(t *testing.T, respectIgnore bool) *Scanner {
	t.Helper()
	s, err := New(Options{Extensions: defaultExts, RespectIgnoreFiles: respectIgnore})
	require.NoError(t, err)
	return s
}

func TestNew_RequiresExtensions(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestExtensionSet_Match(t *testing.T) {
	tests := []struct {
		name string
		file string
		want bool
	}{
		{name: "json", file: "a.json", want: true},
		{name: "geojson", file: "zoneA.geojson", want: true},
		{name: "case sensitive", file: "A.JSON", want: false},
		{name: "text", file: "notes.txt", want: false},
		{name: "suffix only", file: "json", want: false},
		{name: "double extension", file: "a.json.bak", want: false},
		{name: "hidden json", file: ".json", want: true},
	}

	set := ExtensionSet(defaultExts)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, set.Match(tt.file))
		})
	}
}

func TestListEntities_SortedDirectoriesOnly(t *testing.T) {
	// Given: a domain with directories and a stray file
	root := t.TempDir()
	createTree(t, root, "ZNY/", "KJFK/a.json", "KEWR/", "README.json")

	// When: listing entities
	entities, err := newScanner(t, false).ListEntities(context.Background(), root)

	// Then: only directories, sorted
	require.NoError(t, err)
	assert.Equal(t, []string{"KEWR", "KJFK", "ZNY"}, entities)
}

func TestListEntities_MissingDomain(t *testing.T) {
	entities, err := newScanner(t, false).ListEntities(context.Background(), filepath.Join(t.TempDir(), "enroute"))

	require.NoError(t, err)
	assert.Nil(t, entities)
}

func TestListEntities_DomainIsFile(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, "enroute")

	entities, err := newScanner(t, false).ListEntities(context.Background(), filepath.Join(root, "enroute"))

	require.NoError(t, err)
	assert.Nil(t, entities)
}

func TestListEntities_SkipsSymlinkedDirectories(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	createTree(t, root, "real/KTST/", "domain/")
	require.NoError(t, os.Symlink(filepath.Join(root, "real", "KTST"), filepath.Join(root, "domain", "LINK")))

	entities, err := newScanner(t, false).ListEntities(context.Background(), filepath.Join(root, "domain"))

	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestListEntities_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newScanner(t, false).ListEntities(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanEntity_CollectsNestedMatches(t *testing.T) {
	// Given: an entity with nested data files and noise
	entity := t.TempDir()
	createTree(t, entity,
		"charts/a.geojson",
		"charts/deep/er/b.json",
		"notes.txt",
		"sectors/zoneA.geojson",
		"sectors/zoneA.geojson.orig",
		"empty/",
	)

	// When: scanning
	files, err := newScanner(t, false).ScanEntity(context.Background(), entity)

	// Then: every match once, slash-relative, sorted
	require.NoError(t, err)
	assert.Equal(t, []string{
		"charts/a.geojson",
		"charts/deep/er/b.json",
		"sectors/zoneA.geojson",
	}, files)
}

func TestScanEntity_EmptyEntityReturnsEmptySlice(t *testing.T) {
	files, err := newScanner(t, false).ScanEntity(context.Background(), t.TempDir())

	require.NoError(t, err)
	require.NotNil(t, files)
	assert.Empty(t, files)
}

func TestScanEntity_EntityNameRecursInPath(t *testing.T) {
	// An entity identifier repeated deeper in the tree must not confuse the
	// relative path.
	root := t.TempDir()
	entity := filepath.Join(root, "KTST")
	createTree(t, root, "KTST/KTST/KTST.json")

	files, err := newScanner(t, false).ScanEntity(context.Background(), entity)

	require.NoError(t, err)
	assert.Equal(t, []string{"KTST/KTST.json"}, files)
}

func TestScanEntity_MissingDirIsError(t *testing.T) {
	_, err := newScanner(t, false).ScanEntity(context.Background(), filepath.Join(t.TempDir(), "gone"))
	assert.Error(t, err)
}

func TestScanEntity_PermissionErrorIsFatal(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}
	entity := t.TempDir()
	createTree(t, entity, "locked/a.json", "open/b.json")
	locked := filepath.Join(entity, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	_, err := newScanner(t, false).ScanEntity(context.Background(), entity)

	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestScanEntity_CanceledContext(t *testing.T) {
	entity := t.TempDir()
	createTree(t, entity, "a.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newScanner(t, false).ScanEntity(ctx, entity)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanEntity_IgnoreFilesDisabledByDefault(t *testing.T) {
	entity := t.TempDir()
	createTree(t, entity, "a.json", "drafts/b.json")
	require.NoError(t, os.WriteFile(filepath.Join(entity, ".indexignore"), []byte("drafts/\n"), 0o644))

	files, err := newScanner(t, false).ScanEntity(context.Background(), entity)

	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "drafts/b.json"}, files)
}

func TestScanEntity_RespectsIgnoreFiles(t *testing.T) {
	// Given: root and nested ignore files
	entity := t.TempDir()
	createTree(t, entity,
		"a.json",
		"old.json",
		"drafts/b.json",
		"sectors/zoneA.geojson",
		"sectors/zoneB.geojson",
		"sectors/tmp.json",
	)
	require.NoError(t, os.WriteFile(filepath.Join(entity, ".indexignore"),
		[]byte("# root rules\ndrafts/\n/old.json\n*.geojson\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(entity, "sectors", ".indexignore"),
		[]byte("!zoneA.geojson\ntmp.json\n"), 0o644))

	// When: scanning with ignore files enabled
	s := newScanner(t, true)
	files, err := s.ScanEntity(context.Background(), entity)

	// Then: nested negation re-includes zoneA, everything else ignored
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "sectors/zoneA.geojson"}, files)
	assert.Positive(t, s.ignoreCache.Len())

	s.InvalidateIgnoreCache()
	assert.Zero(t, s.ignoreCache.Len())
}
