// FILE: lixenwraith/settings/settings_test.go
package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampleObjects() (*testServer, *testNode) {
	srv := &testServer{
		host: "localhost",
		db:   &testDB{host: "db.local", port: 5432},
		port: 8080,
		tags: []string{"api", "public"},
	}
	node := &testNode{id: 7, name: "root", children: []*testNode{
		{id: 8, name: "left"},
		{id: 9, name: "right"},
	}}
	return srv, node
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{"ini", "xml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "app."+ext)

			s, err := NewWithOptions(Options{File: path})
			require.ErrorIs(t, err, ErrFileNotFound, "missing file is reported but not fatal")
			require.NotNil(t, s)
			assert.Equal(t, Format(ext), s.Format())

			srv, node := sampleObjects()
			require.NoError(t, s.AddObjects(srv, node))
			require.NoError(t, s.Save())
			assert.FileExists(t, path)

			require.NoError(t, s.LoadFile(path))
			tree, err := s.GetConfigAsObject()
			require.NoError(t, err)
			assert.Equal(t, []string{"testServer_1", "testNode_7"}, tree.Keys())

			host, err := tree.String("testServer_1.db.host")
			require.NoError(t, err)
			assert.Equal(t, "db.local", host)

			name, err := tree.String("testNode_7.children.1.name")
			require.NoError(t, err)
			assert.Equal(t, "right", name)

			array, err := s.GetConfigAsArray()
			require.NoError(t, err)
			assert.Equal(t, []any{"api", "public"}, array["testServer_1"].(map[string]any)["tags"])

			var decoded struct {
				Host string   `settings:"host"`
				Port int      `settings:"port"`
				Tags []string `settings:"tags"`
				DB   struct {
					Host string `settings:"host"`
					Port int    `settings:"port"`
				} `settings:"db"`
			}
			require.NoError(t, s.Scan("testServer_1", &decoded))
			assert.Equal(t, 8080, decoded.Port)
			assert.Equal(t, []string{"api", "public"}, decoded.Tags)
			assert.Equal(t, 5432, decoded.DB.Port)

			padPath := filepath.Join(t.TempDir(), "padded."+ext)
			require.NoError(t, Quick(padPath, &testDB{host: "  padded  ", port: 1}))
			require.NoError(t, s.LoadFile(padPath))
			loaded, err := s.GetConfigAsObject()
			require.NoError(t, err)
			padded, err := loaded.String("testDB_1.host")
			require.NoError(t, err)
			assert.Equal(t, "  padded  ", padded)
		})
	}
}

func TestSettingsState(t *testing.T) {
	dir := t.TempDir()
	s := New()
	assert.Equal(t, StateEmpty, s.State())
	assert.Equal(t, FormatINI, s.Format())

	srv, _ := sampleObjects()
	require.NoError(t, s.AddObject(srv))
	assert.Equal(t, StateHasObjects, s.State())

	require.NoError(t, s.AddFilename(filepath.Join(dir, "state.ini")))
	require.NoError(t, s.Save())
	assert.Equal(t, StateSaved, s.State())

	require.NoError(t, s.LoadFile(filepath.Join(dir, "state.ini")))
	s.Reset()
	assert.Equal(t, StateLoaded, s.State(), "reset keeps the loaded config")

	_, err := s.GetConfigAsObject()
	assert.NoError(t, err)
	assert.ErrorIs(t, s.Save(), ErrNoObjects)

	assert.Equal(t, "saved", StateSaved.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestSettingsErrors(t *testing.T) {
	t.Run("NoObjects", func(t *testing.T) {
		assert.ErrorIs(t, New().Save(), ErrNoObjects)
	})

	t.Run("NoFileLoaded", func(t *testing.T) {
		s := New()
		_, err := s.GetConfigAsObject()
		assert.ErrorIs(t, err, ErrNoFileLoaded)
		_, err = s.GetConfigAsArray()
		assert.ErrorIs(t, err, ErrNoFileLoaded)
		assert.ErrorIs(t, s.Scan("x", &struct{}{}), ErrNoFileLoaded)
		assert.ErrorIs(t, s.WriteLoaded("out.ini"), ErrNoFileLoaded)
	})

	t.Run("NoFilename", func(t *testing.T) {
		s := New()
		require.NoError(t, s.AddObject(&testDB{}))
		assert.ErrorIs(t, s.Save(), ErrNoFilename)
	})

	t.Run("UnknownExtension", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "app.json")
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

		s := New()
		assert.ErrorIs(t, s.LoadFile(path), ErrUnknownExtension)

		require.NoError(t, s.AddObject(&testDB{}))
		require.NoError(t, s.AddFilename(filepath.Join(dir, "out.toml")))
		assert.ErrorIs(t, s.Save(), ErrUnknownExtension)
	})

	t.Run("UnknownFormatOption", func(t *testing.T) {
		_, err := NewWithOptions(Options{Format: FormatTOML})
		assert.ErrorIs(t, err, ErrUnknownExtension)
	})

	t.Run("MissingLoadFile", func(t *testing.T) {
		s := New()
		err := s.LoadFile(filepath.Join(t.TempDir(), "missing.ini"))
		assert.ErrorIs(t, err, ErrFileNotFound)
		assert.Equal(t, StateEmpty, s.State())
	})

	t.Run("InvalidObjects", func(t *testing.T) {
		s := New()
		assert.ErrorIs(t, s.AddObject(42), ErrInvalidArgument)
		assert.ErrorIs(t, s.AddObject(nil), ErrInvalidArgument)
		assert.ErrorIs(t, s.AddObject((*testServer)(nil)), ErrInvalidArgument)

		err := s.AddObjects(&testDB{}, "text", &testServer{})
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Contains(t, err.Error(), "object 1")
		assert.Equal(t, StateEmpty, s.State(), "nothing registered when any object is invalid")

		assert.ErrorIs(t, s.AddFilename(""), ErrInvalidArgument)
		assert.ErrorIs(t, s.AddFilenames("a.ini", ""), ErrInvalidArgument)
	})

	t.Run("ParseErrorOnConstruction", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.xml")
		require.NoError(t, os.WriteFile(path, []byte("<settings><a>"), 0644))

		s, err := NewWithOptions(Options{File: path})
		assert.ErrorIs(t, err, ErrParse)
		assert.Nil(t, s)
	})
}

func TestSaveDestinations(t *testing.T) {
	t.Run("FilenamesAndSavePath", func(t *testing.T) {
		dir := t.TempDir()
		s := New()
		s.SetSavePath(dir)
		s.SetSavePath("")

		srv, node := sampleObjects()
		require.NoError(t, s.AddObjects(srv, node))
		require.NoError(t, s.AddFilenames("servers.ini", "nodes.xml"))
		require.NoError(t, s.Save())

		assert.FileExists(t, filepath.Join(dir, "servers.ini"))
		assert.FileExists(t, filepath.Join(dir, "nodes.xml"))

		require.NoError(t, s.LoadFile(filepath.Join(dir, "nodes.xml")))
		tree, _ := s.GetConfigAsObject()
		assert.Equal(t, []string{"testNode_7"}, tree.Keys())
	})

	t.Run("FallbackToDefaultFile", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewWithOptions(Options{File: "main.xml", SavePath: dir})
		require.ErrorIs(t, err, ErrFileNotFound)

		srv, node := sampleObjects()
		require.NoError(t, s.AddObjects(srv, node, &testDB{host: "x"}))
		require.NoError(t, s.AddFilename("first.ini"))
		require.NoError(t, s.Save())

		assert.FileExists(t, filepath.Join(dir, "first.ini"))
		require.NoError(t, s.LoadFile(filepath.Join(dir, "main.xml")))
		tree, _ := s.GetConfigAsObject()
		assert.Equal(t, []string{"testNode_7", "testDB_1"}, tree.Keys())
	})

	t.Run("ExtensionAppended", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewWithOptions(Options{Format: FormatXML, SavePath: dir})
		require.NoError(t, err)

		require.NoError(t, s.AddObject(&testDB{host: "x"}))
		require.NoError(t, s.AddFilename("plain"))
		require.NoError(t, s.Save())
		assert.FileExists(t, filepath.Join(dir, "plain.xml"))
	})

	t.Run("AbsoluteFilenameIgnoresSavePath", func(t *testing.T) {
		saveDir := t.TempDir()
		otherDir := t.TempDir()
		s := New()
		s.SetSavePath(saveDir)

		require.NoError(t, s.AddObject(&testDB{}))
		require.NoError(t, s.AddFilename(filepath.Join(otherDir, "abs.ini")))
		require.NoError(t, s.Save())
		assert.FileExists(t, filepath.Join(otherDir, "abs.ini"))
	})

	t.Run("NoPartialOutput", func(t *testing.T) {
		dir := t.TempDir()
		s := New()
		s.SetSavePath(dir)

		node := &testNode{id: 2}
		node.parent = node
		require.NoError(t, s.AddObjects(&testDB{}, node))
		require.NoError(t, s.AddFilenames("ok.ini", "cycle.ini"))

		assert.ErrorIs(t, s.Save(), ErrCyclicGraph)
		assert.NoFileExists(t, filepath.Join(dir, "ok.ini"))
		assert.NoFileExists(t, filepath.Join(dir, "cycle.ini"))
	})

	t.Run("DuplicateAcrossFiles", func(t *testing.T) {
		dir := t.TempDir()
		s := New()
		s.SetSavePath(dir)

		require.NoError(t, s.AddObjects(&testNode{id: 1}, &testNode{id: 1}))
		require.NoError(t, s.AddFilenames("a.ini", "b.ini"))
		assert.ErrorIs(t, s.Save(), ErrDuplicateSection)
	})
}

func TestSaveAccessorPolicy(t *testing.T) {
	t.Run("LenientRecordsSkipped", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		path := filepath.Join(t.TempDir(), "flaky.ini")

		s, err := NewWithOptions(Options{File: path, Logger: zap.New(core)})
		require.ErrorIs(t, err, ErrFileNotFound)

		require.NoError(t, s.AddObject(&testFlaky{ok: "yes"}))
		require.NoError(t, s.Save())

		skipped := s.Skipped()
		require.Len(t, skipped, 2)
		assert.ErrorIs(t, skipped[0], ErrAccessorFailure)

		assert.Equal(t, 2, logs.FilterMessage("skipping attribute after accessor failure").Len())
		saved := logs.FilterMessage("settings saved").All()
		require.Len(t, saved, 1)
		assert.Equal(t, int64(2), saved[0].ContextMap()["skipped"])
	})

	t.Run("StrictAborts", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flaky.ini")
		s, err := NewWithOptions(Options{File: path, Strict: true})
		require.ErrorIs(t, err, ErrFileNotFound)

		require.NoError(t, s.AddObject(&testFlaky{ok: "yes"}))
		assert.ErrorIs(t, s.Save(), ErrAccessorFailure)
		assert.NoFileExists(t, path)
		assert.Equal(t, StateHasObjects, s.State())
	})
}

func TestConstructionLoadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.ini")
	require.NoError(t, os.WriteFile(path, []byte("[Cache_1]\nttl = 30s\nsize = 128\n"), 0644))

	s, err := NewWithOptions(Options{File: path})
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, s.State())
	assert.Equal(t, path, s.File())

	var cache struct {
		TTL  time.Duration `settings:"ttl"`
		Size int           `settings:"size"`
	}
	require.NoError(t, s.Scan("Cache_1", &cache))
	assert.Equal(t, 30*time.Second, cache.TTL)
	assert.Equal(t, 128, cache.Size)
}

func TestWriteLoaded(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.ini")
	require.NoError(t, Quick(src, sampleObjectsSlice()...))

	opts := DefaultOptions()
	opts.Backends = ExtendedBackends()
	s, err := NewWithOptions(opts)
	require.NoError(t, err)
	require.NoError(t, s.LoadFile(src))

	original, err := s.GetConfigAsArray()
	require.NoError(t, err)

	for _, name := range []string{"out.xml", "out.toml", "out.yaml"} {
		dst := filepath.Join(dir, name)
		require.NoError(t, s.WriteLoaded(dst))

		reloaded := New()
		reloaded.opts.Backends = ExtendedBackends()
		require.NoError(t, reloaded.LoadFile(dst))
		converted, err := reloaded.GetConfigAsArray()
		require.NoError(t, err)
		assert.Equal(t, original, converted, name)
	}

	assert.ErrorIs(t, s.WriteLoaded(filepath.Join(dir, "out.json")), ErrUnknownExtension)
}

func sampleObjectsSlice() []any {
	srv, node := sampleObjects()
	return []any{srv, node}
}
