// Package backup implements directory snapshots: a full or incremental
// copy of a source tree plus a sidecar describing it. Create and Restore
// fan per-file copies out across a bounded pool of goroutines using
// golang.org/x/sync/errgroup, the same fan-out shape the teacher uses to
// suspend many journals in parallel from gazctlcmd. Descriptors are
// cached by name with github.com/hashicorp/golang-lru so repeated List
// and Restore calls do not re-parse the sidecar from disk, and a backup
// left unnamed is given a friendly two-word name by
// github.com/dustinkirkland/golang-petname.
package backup

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	petname "github.com/dustinkirkland/golang-petname"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"go.cachefs.dev/core/fserr"
)

const sidecarName = "MANIFEST.backup"

// Descriptor records everything Restore and List need without walking the
// backup's own copied tree.
type Descriptor struct {
	Name        string
	Location    string
	CreatedAt   time.Time
	ModifiedAt  time.Time
	TotalFiles  int
	TotalBytes  int64
	Incremental bool
	Parent      string
	Files       []string
}

func (d *Descriptor) clone() *Descriptor {
	var c = *d
	c.Files = append([]string(nil), d.Files...)
	return &c
}

// Manager creates, restores, lists, and deletes backups rooted under a
// single directory, one subdirectory per backup.
type Manager struct {
	fs          afero.Fs
	root        string
	concurrency int
	cache       *lru.Cache
}

// NewManager builds a Manager rooted at root, using afero for all host
// filesystem access. concurrency bounds how many files Create and
// Restore copy at once; cacheSize bounds how many parsed Descriptors are
// kept in memory.
func NewManager(fs afero.Fs, root string, concurrency, cacheSize int) (*Manager, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	if cacheSize <= 0 {
		cacheSize = 32
	}
	var cache, err = lru.New(cacheSize)
	if err != nil {
		return nil, fserr.Wrap(err, fserr.Internal, "backup.NewManager")
	}
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fserr.Wrapf(err, fserr.Internal, "backup.NewManager", "creating %s", root)
	}
	return &Manager{fs: fs, root: root, concurrency: concurrency, cache: cache}, nil
}

// Create walks sourceDir, copies every regular file into a new backup
// named name (or a generated petname if name is empty), and writes its
// sidecar. It refuses to overwrite an existing backup of the same name.
func (m *Manager) Create(name, sourceDir string) (*Descriptor, error) {
	return m.create(name, sourceDir, false, "", time.Time{})
}

// CreateIncremental behaves like Create, but only copies files under
// sourceDir modified after the parent backup's CreatedAt. Extending a
// backup with an incremental child counts as modifying it, so the
// parent's ModifiedAt is bumped to the child's creation time and its
// sidecar is rewritten.
func (m *Manager) CreateIncremental(name, sourceDir, parent string) (*Descriptor, error) {
	var parentDesc, err = m.descriptor(parent)
	if err != nil {
		return nil, err
	}
	var desc, cerr = m.create(name, sourceDir, true, parent, parentDesc.CreatedAt)
	if cerr != nil {
		return nil, cerr
	}

	parentDesc.ModifiedAt = desc.CreatedAt
	if err := writeSidecar(m.fs, filepath.Join(parentDesc.Location, sidecarName), parentDesc); err != nil {
		return nil, err
	}
	m.cache.Add(parent, parentDesc.clone())

	return desc, nil
}

func (m *Manager) create(name, sourceDir string, incremental bool, parent string, since time.Time) (*Descriptor, error) {
	if name == "" {
		name = petname.Generate(2, "-")
	}
	var location = filepath.Join(m.root, name)

	if exists, err := afero.DirExists(m.fs, location); err != nil {
		return nil, fserr.Wrapf(err, fserr.Internal, "backup.Create", "checking %s", location)
	} else if exists {
		return nil, fserr.New(fserr.AlreadyExists, "backup.Create", "backup "+name+" already exists")
	}

	type file struct {
		rel  string
		abs  string
		size int64
	}
	var files []file
	err := afero.Walk(m.fs, sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if incremental && !info.ModTime().After(since) {
			return nil
		}
		var rel, rerr = filepath.Rel(sourceDir, path)
		if rerr != nil {
			return rerr
		}
		files = append(files, file{rel: rel, abs: path, size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fserr.Wrapf(err, fserr.Internal, "backup.Create", "walking %s", sourceDir)
	}

	if err := m.fs.MkdirAll(location, 0o755); err != nil {
		return nil, fserr.Wrapf(err, fserr.Internal, "backup.Create", "creating %s", location)
	}

	var group = &errgroup.Group{}
	group.SetLimit(m.concurrency)
	for _, f := range files {
		var f = f
		group.Go(func() error {
			var dest = filepath.Join(location, f.rel)
			if err := m.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return fserr.Wrapf(err, fserr.Internal, "backup.Create", "creating %s", filepath.Dir(dest))
			}
			return copyFile(m.fs, f.abs, dest)
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var rels = make([]string, 0, len(files))
	var total int64
	for _, f := range files {
		rels = append(rels, f.rel)
		total += f.size
	}
	sort.Strings(rels)

	var now = time.Now()
	var desc = &Descriptor{
		Name:        name,
		Location:    location,
		CreatedAt:   now,
		ModifiedAt:  now,
		TotalFiles:  len(rels),
		TotalBytes:  total,
		Incremental: incremental,
		Parent:      parent,
		Files:       rels,
	}

	if err := writeSidecar(m.fs, filepath.Join(location, sidecarName), desc); err != nil {
		return nil, err
	}

	m.cache.Add(name, desc.clone())
	return desc, nil
}

// Restore recreates the tree recorded by backup name under targetDir,
// fanning the per-file copy out the same way Create does.
func (m *Manager) Restore(name, targetDir string) error {
	var desc, err = m.descriptor(name)
	if err != nil {
		return err
	}

	if err := m.fs.MkdirAll(targetDir, 0o755); err != nil {
		return fserr.Wrapf(err, fserr.Internal, "backup.Restore", "creating %s", targetDir)
	}

	var group = &errgroup.Group{}
	group.SetLimit(m.concurrency)
	for _, rel := range desc.Files {
		var rel = rel
		group.Go(func() error {
			var dest = filepath.Join(targetDir, rel)
			if err := m.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return fserr.Wrapf(err, fserr.Internal, "backup.Restore", "creating %s", filepath.Dir(dest))
			}
			return copyFile(m.fs, filepath.Join(desc.Location, rel), dest)
		})
	}
	return group.Wait()
}

// Delete removes a backup's directory, sidecar included, and evicts it
// from the descriptor cache.
func (m *Manager) Delete(name string) error {
	var location = filepath.Join(m.root, name)
	if exists, err := afero.DirExists(m.fs, location); err != nil {
		return fserr.Wrapf(err, fserr.Internal, "backup.Delete", "checking %s", location)
	} else if !exists {
		return fserr.New(fserr.NotFound, "backup.Delete", "backup "+name+" does not exist")
	}
	if err := m.fs.RemoveAll(location); err != nil {
		return fserr.Wrapf(err, fserr.Internal, "backup.Delete", "removing %s", location)
	}
	m.cache.Remove(name)
	return nil
}

// List returns every backup's Descriptor, most recently created first.
func (m *Manager) List() ([]*Descriptor, error) {
	var infos, err = afero.ReadDir(m.fs, m.root)
	if err != nil {
		return nil, fserr.Wrapf(err, fserr.Internal, "backup.List", "reading %s", m.root)
	}

	var out []*Descriptor
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		var desc, derr = m.descriptor(info.Name())
		if derr != nil {
			continue
		}
		out = append(out, desc)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Descriptor returns the parsed sidecar for backup name, preferring the
// in-memory cache to re-reading it from disk.
func (m *Manager) Descriptor(name string) (*Descriptor, error) {
	return m.descriptor(name)
}

func (m *Manager) descriptor(name string) (*Descriptor, error) {
	if cached, ok := m.cache.Get(name); ok {
		return cached.(*Descriptor).clone(), nil
	}

	var location = filepath.Join(m.root, name)
	var desc, err = readSidecar(m.fs, filepath.Join(location, sidecarName))
	if err != nil {
		return nil, err
	}
	desc.Name = name
	desc.Location = location

	m.cache.Add(name, desc.clone())
	return desc, nil
}

func copyFile(fs afero.Fs, src, dest string) error {
	var in, err = fs.Open(src)
	if err != nil {
		return fserr.Wrapf(err, fserr.Internal, "backup.copyFile", "opening %s", src)
	}
	defer in.Close()

	var out afero.File
	out, err = fs.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fserr.Wrapf(err, fserr.Internal, "backup.copyFile", "creating %s", dest)
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return fserr.Wrapf(err, fserr.Internal, "backup.copyFile", "copying %s to %s", src, dest)
	}
	return nil
}

// writeSidecar renders a Descriptor as key=value lines, one per field,
// with the file list as a trailing comma-joined line.
func writeSidecar(fs afero.Fs, path string, d *Descriptor) error {
	var f, err = fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fserr.Wrapf(err, fserr.Internal, "backup.writeSidecar", "creating %s", path)
	}
	defer f.Close()

	var w = bufio.NewWriter(f)
	fmt.Fprintf(w, "created_at=%s\n", d.CreatedAt.Format(time.RFC3339Nano))
	fmt.Fprintf(w, "modified_at=%s\n", d.ModifiedAt.Format(time.RFC3339Nano))
	fmt.Fprintf(w, "total_files=%d\n", d.TotalFiles)
	fmt.Fprintf(w, "total_bytes=%d\n", d.TotalBytes)
	fmt.Fprintf(w, "incremental=%t\n", d.Incremental)
	fmt.Fprintf(w, "parent=%s\n", d.Parent)
	fmt.Fprintf(w, "files=%s\n", strings.Join(d.Files, ","))

	return fserr.Wrap(w.Flush(), fserr.Internal, "backup.writeSidecar")
}

func readSidecar(fs afero.Fs, path string) (*Descriptor, error) {
	var f, err = fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fserr.New(fserr.NotFound, "backup.readSidecar", "backup sidecar not found at "+path)
		}
		return nil, fserr.Wrapf(err, fserr.Internal, "backup.readSidecar", "opening %s", path)
	}
	defer f.Close()

	var d = &Descriptor{}
	var scanner = bufio.NewScanner(f)
	for scanner.Scan() {
		var line = scanner.Text()
		var idx = strings.IndexByte(line, '=')
		if idx < 0 {
			continue
		}
		var key, value = line[:idx], line[idx+1:]
		switch key {
		case "created_at":
			d.CreatedAt, _ = time.Parse(time.RFC3339Nano, value)
		case "modified_at":
			d.ModifiedAt, _ = time.Parse(time.RFC3339Nano, value)
		case "total_files":
			d.TotalFiles, _ = strconv.Atoi(value)
		case "total_bytes":
			d.TotalBytes, _ = strconv.ParseInt(value, 10, 64)
		case "incremental":
			d.Incremental, _ = strconv.ParseBool(value)
		case "parent":
			d.Parent = value
		case "files":
			if value != "" {
				d.Files = strings.Split(value, ",")
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fserr.Wrapf(err, fserr.Internal, "backup.readSidecar", "scanning %s", path)
	}

	return d, nil
}
