package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/cinemaadmin/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingFS wraps OSFileSystem, records every call and can fail renames out of given directories
type recordingFS struct {
	OSFileSystem
	mu          sync.Mutex
	calls       []string
	exdevFrom   string
	renameErr   error
	removeErr   error
	removeCalls []string
}

func (r *recordingFS) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recordingFS) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recordingFS) called(prefix string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (r *recordingFS) ReadDir(name string) ([]fs.DirEntry, error) {
	r.record("readdir " + name)
	return r.OSFileSystem.ReadDir(name)
}

func (r *recordingFS) Stat(name string) (fs.FileInfo, error) {
	r.record("stat " + name)
	return r.OSFileSystem.Stat(name)
}

func (r *recordingFS) MkdirAll(path string, perm fs.FileMode) error {
	r.record("mkdir " + path)
	return r.OSFileSystem.MkdirAll(path, perm)
}

func (r *recordingFS) Rename(oldpath, newpath string) error {
	r.record("rename " + oldpath)
	if r.renameErr != nil {
		return r.renameErr
	}
	if r.exdevFrom != "" && filepath.Dir(oldpath) == r.exdevFrom {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	return r.OSFileSystem.Rename(oldpath, newpath)
}

func (r *recordingFS) Remove(name string) error {
	r.record("remove " + name)
	if r.removeErr != nil {
		return r.removeErr
	}
	return r.OSFileSystem.Remove(name)
}

func (r *recordingFS) Open(name string) (io.ReadCloser, error) {
	r.record("open " + name)
	return r.OSFileSystem.Open(name)
}

func (r *recordingFS) CreateTemp(dir, pattern string) (File, error) {
	r.record("createtemp " + dir)
	return r.OSFileSystem.CreateTemp(dir, pattern)
}

func setupFolders(t *testing.T) Folders {
	t.Helper()
	root := t.TempDir()
	folders, err := NewFolders(filepath.Join(root, "movies"), filepath.Join(root, "series"))
	require.NoError(t, err)
	require.NoError(t, folders.Ensure(OSFileSystem{}))
	return folders
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewFolders(t *testing.T) {
	tests := []struct {
		name          string
		movie, series string
		expectedError bool
	}{
		{name: "valid", movie: "/data/movies", series: "/data/series"},
		{name: "missing movie", movie: "", series: "/data/series", expectedError: true},
		{name: "same folder", movie: "/data/media", series: "/data/media/", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folders, err := NewFolders(tt.movie, tt.series)
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			movie, err := folders.For(models.CategoryMovie)
			require.NoError(t, err)
			assert.Equal(t, tt.movie, movie)

			_, err = folders.For("Documentary")
			assert.ErrorIs(t, err, ErrUnknownCategory)
		})
	}
}

func TestResolveFileName(t *testing.T) {
	folders := setupFolders(t)
	writeFile(t, filepath.Join(folders.Movie, "clip.mp4"), "x")
	writeFile(t, filepath.Join(folders.Movie, "clipper.mkv"), "x")
	require.NoError(t, os.Mkdir(filepath.Join(folders.Movie, "trailer.d"), 0o755))

	tests := []struct {
		name     string
		baseName string
		folder   string
		expected string
	}{
		{name: "extension kept", baseName: "other.webm", folder: folders.Movie, expected: "other.webm"},
		{name: "extension resolved", baseName: "clip", folder: folders.Movie, expected: "clip.mp4"},
		{name: "prefix must end at dot", baseName: "clipp", folder: folders.Movie, expected: "clipp"},
		{name: "directories ignored", baseName: "trailer", folder: folders.Movie, expected: "trailer"},
		{name: "no match", baseName: "missing", folder: folders.Movie, expected: "missing"},
		{name: "unreadable folder", baseName: "clip", folder: filepath.Join(folders.Movie, "nope"), expected: "clip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveFileName(OSFileSystem{}, tt.baseName, tt.folder))
		})
	}
}

func TestResolveFileName_ExtensionSkipsListing(t *testing.T) {
	fsys := &recordingFS{}

	assert.Equal(t, "a.mp4", ResolveFileName(fsys, "a.mp4", "/does/not/matter"))
	assert.Zero(t, fsys.callCount())
}

func TestLocateFile(t *testing.T) {
	t.Run("primary hit does not consult fallback", func(t *testing.T) {
		folders := setupFolders(t)
		writeFile(t, filepath.Join(folders.Movie, "a.mp4"), "x")
		writeFile(t, filepath.Join(folders.Series, "a.mp4"), "y")
		fsys := &recordingFS{}

		path, err := LocateFile(fsys, "a.mp4", folders.Movie, folders.Series)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(folders.Movie, "a.mp4"), path)
		assert.Equal(t, []string{"stat " + filepath.Join(folders.Movie, "a.mp4")}, fsys.calls)
	})

	t.Run("fallback hit", func(t *testing.T) {
		folders := setupFolders(t)
		writeFile(t, filepath.Join(folders.Series, "a.mp4"), "y")

		path, err := LocateFile(OSFileSystem{}, "a.mp4", folders.Movie, folders.Series)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(folders.Series, "a.mp4"), path)
	})

	t.Run("absent from both", func(t *testing.T) {
		folders := setupFolders(t)

		_, err := LocateFile(OSFileSystem{}, "a.mp4", folders.Movie, folders.Series)

		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("directory is not a file", func(t *testing.T) {
		folders := setupFolders(t)
		require.NoError(t, os.Mkdir(filepath.Join(folders.Movie, "a.mp4"), 0o755))

		_, err := LocateFile(OSFileSystem{}, "a.mp4", folders.Movie, folders.Series)

		assert.ErrorIs(t, err, ErrFileNotFound)
	})
}

func TestMover_Move(t *testing.T) {
	t.Run("rename", func(t *testing.T) {
		folders := setupFolders(t)
		src := filepath.Join(folders.Movie, "a.mp4")
		dst := filepath.Join(folders.Series, "a.mp4")
		writeFile(t, src, "video")

		err := NewMover(OSFileSystem{}, zap.NewNop()).Move(src, dst)

		require.NoError(t, err)
		assert.NoFileExists(t, src)
		assert.Equal(t, "video", readFile(t, dst))
	})

	t.Run("cross device falls back to copy and delete", func(t *testing.T) {
		folders := setupFolders(t)
		src := filepath.Join(folders.Movie, "a.mp4")
		dst := filepath.Join(folders.Series, "a.mp4")
		writeFile(t, src, strings.Repeat("frame", 10000))
		require.NoError(t, os.Chmod(src, 0o644))
		fsys := &recordingFS{exdevFrom: folders.Movie}

		err := NewMover(fsys, zap.NewNop()).Move(src, dst)

		require.NoError(t, err)
		assert.NoFileExists(t, src)
		assert.Equal(t, strings.Repeat("frame", 10000), readFile(t, dst))
		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

		entries, err := os.ReadDir(folders.Series)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "staging file must not remain")
	})

	t.Run("source removal failure still succeeds", func(t *testing.T) {
		folders := setupFolders(t)
		src := filepath.Join(folders.Movie, "a.mp4")
		dst := filepath.Join(folders.Series, "a.mp4")
		writeFile(t, src, "video")
		fsys := &recordingFS{exdevFrom: folders.Movie, removeErr: errors.New("busy")}

		err := NewMover(fsys, zap.NewNop()).Move(src, dst)

		require.NoError(t, err)
		assert.FileExists(t, src)
		assert.Equal(t, "video", readFile(t, dst))
	})

	t.Run("other rename errors are returned", func(t *testing.T) {
		folders := setupFolders(t)
		src := filepath.Join(folders.Movie, "a.mp4")
		writeFile(t, src, "video")
		fsys := &recordingFS{renameErr: &os.LinkError{Op: "rename", Err: syscall.EACCES}}

		err := NewMover(fsys, zap.NewNop()).Move(src, filepath.Join(folders.Series, "a.mp4"))

		require.Error(t, err)
		assert.ErrorIs(t, err, syscall.EACCES)
		assert.FileExists(t, src)
		assert.Empty(t, fsys.called("open "))
	})

	t.Run("cross device with missing source leaves no partial file", func(t *testing.T) {
		folders := setupFolders(t)
		fsys := &recordingFS{exdevFrom: folders.Movie}

		err := NewMover(fsys, zap.NewNop()).Move(filepath.Join(folders.Movie, "gone.mp4"), filepath.Join(folders.Series, "gone.mp4"))

		require.Error(t, err)
		entries, err := os.ReadDir(folders.Series)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestRelocator_NoOps(t *testing.T) {
	tests := []struct {
		name        string
		item        *models.MediaItem
		newCategory models.Category
	}{
		{name: "nil item", item: nil, newCategory: models.CategorySeries},
		{name: "same category", item: &models.MediaItem{ID: 1, Category: models.CategoryMovie, VideoFileName: "clip"}, newCategory: models.CategoryMovie},
		{name: "no video", item: &models.MediaItem{ID: 1, Category: models.CategoryMovie}, newCategory: models.CategorySeries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := &recordingFS{}
			relocator := NewRelocator(Folders{Movie: "/m", Series: "/s"}, fsys, zap.NewNop())

			err := relocator.RelocateForCategoryChange(tt.item, tt.newCategory)

			assert.NoError(t, err)
			assert.Zero(t, fsys.callCount())
		})
	}
}

func TestRelocator_ResolvesExtensionAndMoves(t *testing.T) {
	folders := setupFolders(t)
	writeFile(t, filepath.Join(folders.Movie, "clip.mp4"), "video")
	relocator := NewRelocator(folders, OSFileSystem{}, zap.NewNop())
	item := &models.MediaItem{ID: 7, Category: models.CategoryMovie, VideoFileName: "clip"}

	err := relocator.RelocateForCategoryChange(item, models.CategorySeries)

	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(folders.Movie, "clip.mp4"))
	assert.Equal(t, "video", readFile(t, filepath.Join(folders.Series, "clip.mp4")))
	assert.Equal(t, "clip", item.VideoFileName)
	assert.Equal(t, models.CategoryMovie, item.Category)
}

func TestRelocator_CrossDevice(t *testing.T) {
	folders := setupFolders(t)
	writeFile(t, filepath.Join(folders.Movie, "clip.mp4"), "video")
	fsys := &recordingFS{exdevFrom: folders.Movie}
	relocator := NewRelocator(folders, fsys, zap.NewNop())
	item := &models.MediaItem{ID: 7, Category: models.CategoryMovie, VideoFileName: "clip.mp4"}

	err := relocator.RelocateForCategoryChange(item, models.CategorySeries)

	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(folders.Movie, "clip.mp4"))
	assert.Equal(t, "video", readFile(t, filepath.Join(folders.Series, "clip.mp4")))
	assert.Equal(t, "clip", item.VideoFileName)
}

func TestRelocator_FallbackAlreadyInDestination(t *testing.T) {
	folders := setupFolders(t)
	writeFile(t, filepath.Join(folders.Series, "clip.mp4"), "video")
	fsys := &recordingFS{}
	relocator := NewRelocator(folders, fsys, zap.NewNop())
	item := &models.MediaItem{ID: 7, Category: models.CategoryMovie, VideoFileName: "clip"}

	err := relocator.RelocateForCategoryChange(item, models.CategorySeries)

	require.NoError(t, err)
	assert.Empty(t, fsys.called("rename "))
	assert.FileExists(t, filepath.Join(folders.Series, "clip.mp4"))
	assert.Equal(t, "clip", item.VideoFileName)
}

func TestRelocator_FallbackFromOtherFolder(t *testing.T) {
	folders := setupFolders(t)
	// stale metadata: the item is a series but the file still sits in the movie folder
	writeFile(t, filepath.Join(folders.Movie, "ep1.mkv"), "video")
	relocator := NewRelocator(folders, OSFileSystem{}, zap.NewNop())
	item := &models.MediaItem{ID: 3, Category: models.CategorySeries, VideoFileName: "ep1.mkv"}

	err := relocator.RelocateForCategoryChange(item, models.CategoryMovie)

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(folders.Movie, "ep1.mkv"))
	assert.Equal(t, "ep1", item.VideoFileName)
}

func TestRelocator_NotFound(t *testing.T) {
	folders := setupFolders(t)
	fsys := &recordingFS{}
	relocator := NewRelocator(folders, fsys, zap.NewNop())
	item := &models.MediaItem{ID: 9, Category: models.CategoryMovie, VideoFileName: "missing"}

	err := relocator.RelocateForCategoryChange(item, models.CategorySeries)

	var relocErr *RelocationError
	require.ErrorAs(t, err, &relocErr)
	assert.True(t, relocErr.IsNotFound())
	assert.Equal(t, 9, relocErr.MediaID)
	assert.Empty(t, fsys.called("rename "))
	assert.Empty(t, fsys.called("mkdir "))
	assert.Equal(t, "missing", item.VideoFileName)
}

func TestRelocator_VideoPath(t *testing.T) {
	folders := setupFolders(t)
	writeFile(t, filepath.Join(folders.Movie, "clip.mp4"), "video")
	// moved to the series folder, record still says Movie
	writeFile(t, filepath.Join(folders.Series, "ep1.mkv"), "video")
	relocator := NewRelocator(folders, OSFileSystem{}, zap.NewNop())

	tests := []struct {
		name         string
		item         *models.MediaItem
		expectedPath string
		expectedErr  error
	}{
		{name: "own folder", item: &models.MediaItem{Category: models.CategoryMovie, VideoFileName: "clip"}, expectedPath: filepath.Join(folders.Movie, "clip.mp4")},
		{name: "other folder", item: &models.MediaItem{Category: models.CategoryMovie, VideoFileName: "ep1"}, expectedPath: filepath.Join(folders.Series, "ep1.mkv")},
		{name: "other folder with extension", item: &models.MediaItem{Category: models.CategoryMovie, VideoFileName: "ep1.mkv"}, expectedPath: filepath.Join(folders.Series, "ep1.mkv")},
		{name: "missing", item: &models.MediaItem{Category: models.CategorySeries, VideoFileName: "gone"}, expectedErr: ErrFileNotFound},
		{name: "unknown category", item: &models.MediaItem{Category: "Anime", VideoFileName: "clip"}, expectedErr: ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := relocator.VideoPath(tt.item)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedPath, path)
		})
	}
}

func TestRelocator_MoveFailure(t *testing.T) {
	folders := setupFolders(t)
	writeFile(t, filepath.Join(folders.Movie, "clip.mp4"), "video")
	fsys := &recordingFS{renameErr: &os.LinkError{Op: "rename", Err: syscall.EPERM}}
	relocator := NewRelocator(folders, fsys, zap.NewNop())
	item := &models.MediaItem{ID: 4, Category: models.CategoryMovie, VideoFileName: "clip"}

	err := relocator.RelocateForCategoryChange(item, models.CategorySeries)

	var relocErr *RelocationError
	require.ErrorAs(t, err, &relocErr)
	assert.False(t, relocErr.IsNotFound())
	assert.Equal(t, "move", relocErr.Op)
	assert.Equal(t, "clip", item.VideoFileName)
	assert.FileExists(t, filepath.Join(folders.Movie, "clip.mp4"))
}

func TestRelocator_ConcurrentSameItem(t *testing.T) {
	folders := setupFolders(t)
	writeFile(t, filepath.Join(folders.Movie, "clip.mp4"), "video")
	relocator := NewRelocator(folders, OSFileSystem{}, zap.NewNop())

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			item := &models.MediaItem{ID: 1, Category: models.CategoryMovie, VideoFileName: "clip"}
			errs[i] = relocator.RelocateForCategoryChange(item, models.CategorySeries)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, "video", readFile(t, filepath.Join(folders.Series, "clip.mp4")))
	assert.NoFileExists(t, filepath.Join(folders.Movie, "clip.mp4"))
}

func TestKeyedMutex(t *testing.T) {
	locks := NewKeyedMutex[int]()

	unlock := locks.Lock(1)
	acquired := make(chan struct{})
	go func() {
		release := locks.Lock(1)
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first is held")
	case <-time.After(50 * time.Millisecond):
	}

	otherUnlock := locks.Lock(2)
	otherUnlock()

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}

	assert.Eventually(t, func() bool { return locks.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in, expected string
	}{
		{"movie.mp4", "movie.mp4"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\clip.mov`, "clip.mov"},
		{"..", ""},
		{"", ""},
		{"/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFileName(tt.in))
		})
	}
}

func TestIsWithin(t *testing.T) {
	assert.True(t, IsWithin("/data/movies/a.mp4", "/data/series", "/data/movies"))
	assert.True(t, IsWithin("/data/movies/sub/../a.mp4", "/data/movies"))
	assert.False(t, IsWithin("/data/movies/../secret", "/data/movies"))
	assert.False(t, IsWithin("/data/movies", "/data/movies"))
	assert.False(t, IsWithin("/data/moviesX/a.mp4", "/data/movies"))
}

func TestAssetStore(t *testing.T) {
	store := NewAssetStore(filepath.Join(t.TempDir(), "thumbs"))

	w, err := store.Create("a.jpg")
	require.NoError(t, err)
	_, err = w.Write([]byte("jpeg"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	f, err := store.Open("a.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "jpeg", string(data))

	_, err = store.Open("../a.jpg")
	assert.Error(t, err)

	require.NoError(t, store.Delete("a.jpg"))
	_, err = store.Open("a.jpg")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestGenerateFileName(t *testing.T) {
	assert.True(t, strings.HasSuffix(GenerateFileName("jpg"), ".jpg"))
	assert.True(t, strings.HasSuffix(GenerateFileName(".png"), ".png"))
	assert.Len(t, GenerateFileName(""), 36)
}
