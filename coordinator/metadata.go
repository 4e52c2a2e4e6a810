package coordinator

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"go.cachefs.dev/core/fserr"
)

// FileInfo is the metadata record the coordinator keeps per live path:
// owner identity, permission bits, size, directory flag, and the
// creation/modification timestamps. It is created at file creation,
// mutated by writes and permission changes, and destroyed at delete.
type FileInfo struct {
	Path       string
	Owner      string
	Perms      os.FileMode
	Size       int64
	IsDir      bool
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// metadataTable is the in-memory map of live paths to FileInfo, persisted
// to a tab-separated sidecar and reloaded at startup. A single mutex
// guards both the map and the sidecar flush, per §5's resource table.
type metadataTable struct {
	mu      sync.Mutex
	fs      afero.Fs
	path    string
	entries map[string]*FileInfo
}

func openMetadataTable(fs afero.Fs, path string) (*metadataTable, error) {
	var t = &metadataTable{fs: fs, path: path, entries: make(map[string]*FileInfo)}
	if err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

// load reloads the sidecar's rows, each
// `path\towner\tperms\tsize\tis_dir\tcreated_at\tmodified_at`, into the
// in-memory table. A missing sidecar is not an error: the table starts
// empty.
func (t *metadataTable) load() error {
	var f, err = t.fs.Open(t.path)
	if err != nil {
		if afero.IsNotExist(err) {
			return nil
		}
		return fserr.Wrapf(err, fserr.Internal, "coordinator.metadata", "opening %s", t.path)
	}
	defer f.Close()

	var r = csv.NewReader(bufio.NewReader(f))
	r.Comma = '\t'
	r.FieldsPerRecord = 7

	for {
		var row, rerr = r.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fserr.Wrapf(rerr, fserr.Internal, "coordinator.metadata", "parsing %s", t.path)
		}

		var perms, _ = strconv.ParseUint(row[2], 8, 32)
		var size, _ = strconv.ParseInt(row[3], 10, 64)
		var isDir, _ = strconv.ParseBool(row[4])
		var createdAt, _ = time.Parse(time.RFC3339Nano, row[5])
		var modifiedAt, _ = time.Parse(time.RFC3339Nano, row[6])

		t.entries[row[0]] = &FileInfo{
			Path: row[0], Owner: row[1], Perms: os.FileMode(perms), Size: size, IsDir: isDir,
			CreatedAt: createdAt, ModifiedAt: modifiedAt,
		}
	}
	return nil
}

// flush rewrites the sidecar from the current in-memory table.
func (t *metadataTable) flush() error {
	var f, err = t.fs.OpenFile(t.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fserr.Wrapf(err, fserr.Internal, "coordinator.metadata", "creating %s", t.path)
	}
	defer f.Close()

	var w = csv.NewWriter(f)
	w.Comma = '\t'

	for _, info := range t.entries {
		var row = []string{
			info.Path,
			info.Owner,
			strconv.FormatUint(uint64(info.Perms), 8),
			strconv.FormatInt(info.Size, 10),
			strconv.FormatBool(info.IsDir),
			info.CreatedAt.Format(time.RFC3339Nano),
			info.ModifiedAt.Format(time.RFC3339Nano),
		}
		if err := w.Write(row); err != nil {
			return fserr.Wrapf(err, fserr.Internal, "coordinator.metadata", "writing row for %s", info.Path)
		}
	}
	w.Flush()
	return fserr.Wrap(w.Error(), fserr.Internal, "coordinator.metadata")
}

func (t *metadataTable) get(path string) (*FileInfo, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var info, ok = t.entries[path]
	return info, ok
}

func (t *metadataTable) put(info *FileInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[info.Path] = info
}

func (t *metadataTable) delete(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, path)
}

// list returns every known path whose parent directory is exactly dir.
func (t *metadataTable) list(dir string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for p := range t.entries {
		if filepath.Dir(p) == dir {
			out = append(out, p)
		}
	}
	return out
}

// walk returns every known path under (and including) dir.
func (t *metadataTable) walk(dir string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for p := range t.entries {
		if p == dir || strings.HasPrefix(p, dir+"/") {
			out = append(out, p)
		}
	}
	return out
}

func (t *metadataTable) sync() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flush()
}
