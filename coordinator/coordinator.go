// Package coordinator implements the filesystem coordinator: the
// component that owns the cache, the metadata table, the journal, the
// compression codec, and the backup manager, and enforces their ordering
// on every mutating operation. It is grounded on the teacher's
// serveBroker.Execute wiring order (construct each dependency, wire them
// together, then accept requests) and on broker/stores/fs's afero-backed
// host filesystem access.
package coordinator

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"go.cachefs.dev/core/async"
	"go.cachefs.dev/core/auth"
	"go.cachefs.dev/core/backup"
	"go.cachefs.dev/core/cache"
	"go.cachefs.dev/core/cache/sharded"
	"go.cachefs.dev/core/codec"
	"go.cachefs.dev/core/fserr"
	"go.cachefs.dev/core/journal"
	"go.cachefs.dev/core/metrics"
	"go.cachefs.dev/core/worker"
)

// Config parameterizes a Coordinator's mount.
type Config struct {
	Root                  string
	MetadataPath          string
	JournalPath           string
	BackupRoot            string
	ShardCount            int
	CacheCapacityPerShard int
	CachePolicy           cache.Kind
	BackupConcurrency     int
	BackupCacheSize       int
}

// Coordinator orchestrates the cache, metadata table, journal, codec, and
// backup manager behind the operation set in §6. Every operation except
// Mount, Unmount, Sync and the statistics accessors requires an
// authenticated *auth.Session; read and write
// paths additionally require the caller be the path's owner or an
// administrator (checked with auth.CanAccess).
type Coordinator struct {
	cfg  Config
	fs   afero.Fs
	pool *worker.Pool

	mu       sync.Mutex
	mounted  bool
	metadata *metadataTable
	journal  *journal.Journal
	backups  *backup.Manager
	cache    *sharded.Cache[[]byte]

	pathLocks sync.Map // path -> *sync.RWMutex

	metricsMu        sync.Mutex
	lastShardReports []cache.Report
}

// New constructs an unmounted Coordinator. Mount must be called before any
// other operation.
func New(fs afero.Fs, pool *worker.Pool, cfg Config) *Coordinator {
	if cfg.ShardCount < 1 {
		cfg.ShardCount = 1
	}
	if cfg.CacheCapacityPerShard < 1 {
		cfg.CacheCapacityPerShard = 128
	}
	return &Coordinator{cfg: cfg, fs: fs, pool: pool}
}

func (c *Coordinator) lockFor(path string) *sync.RWMutex {
	var l, _ = c.pathLocks.LoadOrStore(path, &sync.RWMutex{})
	return l.(*sync.RWMutex)
}

// Mount opens (or creates) the backing root directory, the metadata
// sidecar, the journal, and the backup manager. Mounting an already
// mounted Coordinator is a no-op that returns success.
func (c *Coordinator) Mount() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mounted {
		return nil
	}

	if err := c.fs.MkdirAll(c.cfg.Root, 0o755); err != nil {
		return fserr.Wrapf(err, fserr.Internal, "coordinator.Mount", "creating root %s", c.cfg.Root)
	}

	var metadata, err = openMetadataTable(c.fs, c.cfg.MetadataPath)
	if err != nil {
		return err
	}
	var j *journal.Journal
	j, err = journal.Open(c.fs, c.cfg.JournalPath)
	if err != nil {
		return err
	}
	var backups *backup.Manager
	backups, err = backup.NewManager(c.fs, c.cfg.BackupRoot, c.cfg.BackupConcurrency, c.cfg.BackupCacheSize)
	if err != nil {
		return err
	}

	c.metadata = metadata
	c.journal = j
	c.backups = backups
	c.cache = sharded.New[[]byte](c.cfg.ShardCount, c.cfg.CachePolicy, c.cfg.CacheCapacityPerShard, c.pool)
	c.mounted = true
	return nil
}

// Unmount syncs the metadata table and journal and releases them.
// Unmounting an already unmounted Coordinator is a no-op that returns
// success.
func (c *Coordinator) Unmount() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return nil
	}
	if err := c.metadata.sync(); err != nil {
		return err
	}
	if err := c.journal.Checkpoint(); err != nil {
		return err
	}
	c.mounted = false
	return nil
}

// Sync flushes the metadata table to its sidecar and checkpoints the
// journal.
func (c *Coordinator) Sync() error {
	if err := c.metadata.sync(); err != nil {
		return err
	}
	return c.journal.Checkpoint()
}

// Statistics returns the aggregate cache report across every shard, for
// the stats CLI and for callers that want a snapshot without going
// through the prometheus registry.
func (c *Coordinator) Statistics() cache.Report {
	return c.cache.Statistics()
}

// ChangeCachePolicy switches every shard to a different eviction policy at
// the given per-shard capacity. Resident entries are lost, the same
// discard-and-reconstruct contract cache.Manager.SwitchPolicy documents.
func (c *Coordinator) ChangeCachePolicy(session *auth.Session, kind cache.Kind, capacityPerShard int) error {
	if err := requireSession(session); err != nil {
		return err
	}
	c.cache.SwitchPolicy(kind, capacityPerShard)
	return nil
}

// ResizeCache reconstructs every shard's policy cache at the new per-shard
// capacity, keeping each shard's current Kind. Resident entries are lost.
func (c *Coordinator) ResizeCache(session *auth.Session, capacityPerShard int) error {
	if err := requireSession(session); err != nil {
		return err
	}
	c.cache.Resize(capacityPerShard)
	return nil
}

func requireSession(session *auth.Session) error {
	if session == nil {
		return fserr.New(fserr.Permission, "coordinator", "authentication required")
	}
	return nil
}

func requireOwnerOrAdmin(session *auth.Session, owner string) error {
	if !auth.CanAccess(session, owner) {
		return fserr.New(fserr.Permission, "coordinator", "caller is neither owner nor administrator")
	}
	return nil
}

func (c *Coordinator) hostPath(path string) string {
	return filepath.Join(c.cfg.Root, path)
}

// CreateFile creates an empty file at path, owned by the session's
// subject. Fails with AlreadyExists if path is already known.
func (c *Coordinator) CreateFile(session *auth.Session, path string) (bool, error) {
	if err := requireSession(session); err != nil {
		return false, err
	}

	var lock = c.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	if _, exists := c.metadata.get(path); exists {
		return false, fserr.New(fserr.AlreadyExists, "coordinator.CreateFile", "path already exists: "+path)
	}

	var host = c.hostPath(path)
	if err := c.fs.MkdirAll(filepath.Dir(host), 0o755); err != nil {
		return false, fserr.Wrapf(err, fserr.Internal, "coordinator.CreateFile", "creating parent of %s", host)
	}
	var f, err = c.fs.OpenFile(host, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fserr.Wrapf(err, fserr.Internal, "coordinator.CreateFile", "creating %s", host)
	}
	f.Close()

	if _, err := c.journal.Append(journal.CreateFile, nil, []byte(path)); err != nil {
		return false, err
	}

	var now = time.Now()
	c.metadata.put(&FileInfo{
		Path: path, Owner: session.Subject, Perms: 0o644,
		CreatedAt: now, ModifiedAt: now,
	})
	return true, nil
}

// WriteFile overwrites path's content, updating in-memory metadata and
// the read-through cache atomically with respect to other writes to the
// same path.
func (c *Coordinator) WriteFile(session *auth.Session, path string, data []byte) (ok bool, err error) {
	defer metrics.ObserveOperation("WriteFile", time.Now(), &err)

	if err := requireSession(session); err != nil {
		return false, err
	}
	var info, exists = c.metadata.get(path)
	if !exists {
		return false, fserr.New(fserr.NotFound, "coordinator.WriteFile", "path not found: "+path)
	}
	if err := requireOwnerOrAdmin(session, info.Owner); err != nil {
		return false, err
	}

	var lock = c.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	if _, err := c.journal.Append(journal.WriteData, nil, []byte(path)); err != nil {
		return false, err
	}

	var host = c.hostPath(path)
	f, err := c.fs.OpenFile(host, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fserr.Wrapf(err, fserr.Internal, "coordinator.WriteFile", "writing %s", host)
	}
	_, err = f.Write(data)
	f.Close()
	if err != nil {
		return false, fserr.Wrapf(err, fserr.Internal, "coordinator.WriteFile", "writing %s", host)
	}

	info.Size = int64(len(data))
	info.ModifiedAt = time.Now()
	c.metadata.put(info)
	c.cache.Put(path, data)
	return true, nil
}

// ReadFile consults the cache first; on a miss it loads the whole file
// from the host FS, inserts it into the cache, and returns it. On a hit
// the host FS is never touched.
func (c *Coordinator) ReadFile(session *auth.Session, path string) (data []byte, err error) {
	defer metrics.ObserveOperation("ReadFile", time.Now(), &err)

	if err := requireSession(session); err != nil {
		return nil, err
	}
	var info, ok = c.metadata.get(path)
	if !ok {
		return nil, fserr.New(fserr.NotFound, "coordinator.ReadFile", "path not found: "+path)
	}
	if err := requireOwnerOrAdmin(session, info.Owner); err != nil {
		return nil, err
	}

	var lock = c.lockFor(path)
	lock.RLock()
	if data, err := c.cache.Get(path); err == nil {
		lock.RUnlock()
		return data, nil
	}
	lock.RUnlock()

	lock.Lock()
	defer lock.Unlock()

	if cached, cerr := c.cache.Get(path); cerr == nil {
		return cached, nil
	}

	data, err = afero.ReadFile(c.fs, c.hostPath(path))
	if err != nil {
		return nil, fserr.Wrapf(err, fserr.Internal, "coordinator.ReadFile", "reading %s", path)
	}
	c.cache.Put(path, data)
	return data, nil
}

// DeleteFile removes path from the host FS, the metadata table, and the
// cache.
func (c *Coordinator) DeleteFile(session *auth.Session, path string) (bool, error) {
	if err := requireSession(session); err != nil {
		return false, err
	}
	var info, ok = c.metadata.get(path)
	if !ok {
		return false, fserr.New(fserr.NotFound, "coordinator.DeleteFile", "path not found: "+path)
	}
	if err := requireOwnerOrAdmin(session, info.Owner); err != nil {
		return false, err
	}

	var lock = c.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	if _, err := c.journal.Append(journal.DeleteFile, nil, []byte(path)); err != nil {
		return false, err
	}
	if err := c.fs.Remove(c.hostPath(path)); err != nil && !os.IsNotExist(err) {
		return false, fserr.Wrapf(err, fserr.Internal, "coordinator.DeleteFile", "removing %s", path)
	}

	c.metadata.delete(path)
	c.cache.Remove(path)
	return true, nil
}

// CreateDir creates an empty directory at path.
func (c *Coordinator) CreateDir(session *auth.Session, path string) (bool, error) {
	if err := requireSession(session); err != nil {
		return false, err
	}

	var lock = c.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	if _, exists := c.metadata.get(path); exists {
		return false, fserr.New(fserr.AlreadyExists, "coordinator.CreateDir", "path already exists: "+path)
	}

	var host = c.hostPath(path)
	if err := c.fs.MkdirAll(host, 0o755); err != nil {
		return false, fserr.Wrapf(err, fserr.Internal, "coordinator.CreateDir", "creating %s", host)
	}

	if _, err := c.journal.Append(journal.CreateDir, nil, []byte(path)); err != nil {
		return false, err
	}

	var now = time.Now()
	c.metadata.put(&FileInfo{Path: path, Owner: session.Subject, Perms: 0o755, IsDir: true, CreatedAt: now, ModifiedAt: now})
	return true, nil
}

// ListDir returns every known path whose parent is exactly path, as full
// paths, sorted lexically for deterministic output.
func (c *Coordinator) ListDir(session *auth.Session, path string) ([]string, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	var names = c.metadata.list(path)
	sort.Strings(names)
	return names, nil
}

// Copy reads src through the coordinator's own ReadFile, creates dst, and
// writes src's content to it, so caching, metadata, and statistics update
// uniformly.
func (c *Coordinator) Copy(session *auth.Session, src, dst string) (bool, error) {
	var data, err = c.ReadFile(session, src)
	if err != nil {
		return false, err
	}
	if _, err := c.CreateFile(session, dst); err != nil {
		return false, err
	}
	return c.WriteFile(session, dst, data)
}

// Move is Copy followed by DeleteFile(src); if the delete fails, dst is
// removed as a best-effort compensation to restore the precondition.
func (c *Coordinator) Move(session *auth.Session, src, dst string) (bool, error) {
	if _, err := c.Copy(session, src, dst); err != nil {
		return false, err
	}
	if _, err := c.DeleteFile(session, src); err != nil {
		_, _ = c.DeleteFile(session, dst)
		return false, err
	}
	return true, nil
}

// Rename is Move under another name, matching the spec's Copy/Move/Rename
// operation row.
func (c *Coordinator) Rename(session *auth.Session, src, dst string) (bool, error) {
	return c.Move(session, src, dst)
}

// Find walks dir and returns every known path whose base name matches
// pattern: glob matching if pattern contains `*`/`?`, substring match
// otherwise.
func (c *Coordinator) Find(session *auth.Session, dir, pattern string) ([]string, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	var candidates = c.metadata.walk(dir)
	var out []string
	for _, p := range candidates {
		if matchesPattern(pattern, filepath.Base(p)) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Info returns path's metadata record.
func (c *Coordinator) Info(session *auth.Session, path string) (FileInfo, error) {
	if err := requireSession(session); err != nil {
		return FileInfo{}, err
	}
	var info, ok = c.metadata.get(path)
	if !ok {
		return FileInfo{}, fserr.New(fserr.NotFound, "coordinator.Info", "path not found: "+path)
	}
	return *info, nil
}

// Permissions updates path's permission bits on the host FS and in the
// metadata table.
func (c *Coordinator) Permissions(session *auth.Session, path string, perms os.FileMode) (bool, error) {
	if err := requireSession(session); err != nil {
		return false, err
	}
	var info, ok = c.metadata.get(path)
	if !ok {
		return false, fserr.New(fserr.NotFound, "coordinator.Permissions", "path not found: "+path)
	}
	if err := requireOwnerOrAdmin(session, info.Owner); err != nil {
		return false, err
	}

	var lock = c.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	if err := c.fs.Chmod(c.hostPath(path), perms); err != nil {
		return false, fserr.Wrapf(err, fserr.Internal, "coordinator.Permissions", "chmod %s", path)
	}
	if _, err := c.journal.Append(journal.UpdateMetadata, nil, []byte(path)); err != nil {
		return false, err
	}

	info.Perms = perms
	info.ModifiedAt = time.Now()
	c.metadata.put(info)
	return true, nil
}

// CompressFile rewrites path's host-FS content as an RLE-framed buffer,
// per §4.7. It bypasses the cache, operating directly on the bytes
// currently on disk.
func (c *Coordinator) CompressFile(session *auth.Session, path string) (bool, error) {
	return c.transformFile(session, path, func(data []byte) ([]byte, error) {
		return codec.Compress(codec.RLE, data)
	})
}

// DecompressFile reverses CompressFile. It fails with a Protocol error if
// path's content is not framed.
func (c *Coordinator) DecompressFile(session *auth.Session, path string) (bool, error) {
	return c.transformFile(session, path, func(data []byte) ([]byte, error) {
		if !codec.IsCompressed(data) {
			return nil, fserr.New(fserr.Protocol, "coordinator.DecompressFile", "path is not compressed: "+path)
		}
		return codec.Decompress(data)
	})
}

func (c *Coordinator) transformFile(session *auth.Session, path string, transform func([]byte) ([]byte, error)) (bool, error) {
	if err := requireSession(session); err != nil {
		return false, err
	}
	var info, ok = c.metadata.get(path)
	if !ok {
		return false, fserr.New(fserr.NotFound, "coordinator.transformFile", "path not found: "+path)
	}
	if err := requireOwnerOrAdmin(session, info.Owner); err != nil {
		return false, err
	}

	var lock = c.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	var host = c.hostPath(path)
	var data, err = afero.ReadFile(c.fs, host)
	if err != nil {
		return false, fserr.Wrapf(err, fserr.Internal, "coordinator.transformFile", "reading %s", path)
	}

	var out []byte
	out, err = transform(data)
	if err != nil {
		return false, err
	}

	if err := afero.WriteFile(c.fs, host, out, 0o644); err != nil {
		return false, fserr.Wrapf(err, fserr.Internal, "coordinator.transformFile", "writing %s", path)
	}

	info.Size = int64(len(out))
	info.ModifiedAt = time.Now()
	c.metadata.put(info)
	c.cache.Remove(path)
	return true, nil
}

// CreateBackup snapshots sourceDir into a new backup, delegating to the
// backup manager.
func (c *Coordinator) CreateBackup(session *auth.Session, name, sourceDir string) (*backup.Descriptor, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	return c.backups.Create(name, c.hostPath(sourceDir))
}

// RestoreBackup restores backup name into targetDir.
func (c *Coordinator) RestoreBackup(session *auth.Session, name, targetDir string) (bool, error) {
	if err := requireSession(session); err != nil {
		return false, err
	}
	if err := c.backups.Restore(name, c.hostPath(targetDir)); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteBackup removes backup name.
func (c *Coordinator) DeleteBackup(session *auth.Session, name string) (bool, error) {
	if err := requireSession(session); err != nil {
		return false, err
	}
	if err := c.backups.Delete(name); err != nil {
		return false, err
	}
	return true, nil
}

// ListBackup returns every known backup, newest first.
func (c *Coordinator) ListBackup(session *auth.Session) ([]*backup.Descriptor, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	return c.backups.List()
}

// ExportCacheMetrics reports each shard's hit/miss/eviction/prefetch
// counts to the cachefs_cache_* collectors as the delta since the
// previous call, so it is safe to call repeatedly from a polling loop
// (e.g. cmd/cachefsd's periodic exporter) without double-counting.
func (c *Coordinator) ExportCacheMetrics() {
	c.metricsMu.Lock()
	defer c.metricsMu.Unlock()

	var shardCount = c.cache.ShardCount()
	if len(c.lastShardReports) != shardCount {
		c.lastShardReports = make([]cache.Report, shardCount)
	}

	for i := 0; i < shardCount; i++ {
		var shard = strconv.Itoa(i)
		var report = c.cache.ShardStatistics(i)
		var prev = c.lastShardReports[i]

		metrics.CacheHitsTotal.WithLabelValues(shard).Add(float64(report.Hits - prev.Hits))
		metrics.CacheMissesTotal.WithLabelValues(shard).Add(float64(report.Misses - prev.Misses))
		metrics.CacheEvictionsTotal.WithLabelValues(shard).Add(float64(report.Evictions - prev.Evictions))
		metrics.CachePrefetchedTotal.WithLabelValues(shard).Add(float64(report.Prefetched - prev.Prefetched))

		c.lastShardReports[i] = report
	}
}

// submitAsync runs fn on the shared worker pool and returns a Future for
// its eventual result. Every *Async method on Coordinator is a thin
// wrapper over this around its synchronous twin: the operation itself is
// never re-implemented for the async path (§9, Coroutine-ish API).
func submitAsync[T any](pool *worker.Pool, fn func() (T, error)) *async.Future[T] {
	var f = async.NewFuture[T]()
	pool.Submit(func(ctx context.Context) (interface{}, error) {
		return fn()
	}, func(v interface{}, err error) {
		var value T
		if v != nil {
			value = v.(T)
		}
		f.Resolve(value, err)
	})
	return f
}

func (c *Coordinator) CreateFileAsync(session *auth.Session, path string) *async.Future[bool] {
	return submitAsync(c.pool, func() (bool, error) { return c.CreateFile(session, path) })
}

func (c *Coordinator) WriteFileAsync(session *auth.Session, path string, data []byte) *async.Future[bool] {
	return submitAsync(c.pool, func() (bool, error) { return c.WriteFile(session, path, data) })
}

func (c *Coordinator) ReadFileAsync(session *auth.Session, path string) *async.Future[[]byte] {
	return submitAsync(c.pool, func() ([]byte, error) { return c.ReadFile(session, path) })
}

func (c *Coordinator) DeleteFileAsync(session *auth.Session, path string) *async.Future[bool] {
	return submitAsync(c.pool, func() (bool, error) { return c.DeleteFile(session, path) })
}

func (c *Coordinator) CreateDirAsync(session *auth.Session, path string) *async.Future[bool] {
	return submitAsync(c.pool, func() (bool, error) { return c.CreateDir(session, path) })
}

func (c *Coordinator) ListDirAsync(session *auth.Session, path string) *async.Future[[]string] {
	return submitAsync(c.pool, func() ([]string, error) { return c.ListDir(session, path) })
}

func (c *Coordinator) CopyAsync(session *auth.Session, src, dst string) *async.Future[bool] {
	return submitAsync(c.pool, func() (bool, error) { return c.Copy(session, src, dst) })
}

func (c *Coordinator) MoveAsync(session *auth.Session, src, dst string) *async.Future[bool] {
	return submitAsync(c.pool, func() (bool, error) { return c.Move(session, src, dst) })
}

func (c *Coordinator) RenameAsync(session *auth.Session, src, dst string) *async.Future[bool] {
	return submitAsync(c.pool, func() (bool, error) { return c.Rename(session, src, dst) })
}

func (c *Coordinator) FindAsync(session *auth.Session, dir, pattern string) *async.Future[[]string] {
	return submitAsync(c.pool, func() ([]string, error) { return c.Find(session, dir, pattern) })
}

func (c *Coordinator) InfoAsync(session *auth.Session, path string) *async.Future[FileInfo] {
	return submitAsync(c.pool, func() (FileInfo, error) { return c.Info(session, path) })
}

func (c *Coordinator) PermissionsAsync(session *auth.Session, path string, perms os.FileMode) *async.Future[bool] {
	return submitAsync(c.pool, func() (bool, error) { return c.Permissions(session, path, perms) })
}

func (c *Coordinator) CompressFileAsync(session *auth.Session, path string) *async.Future[bool] {
	return submitAsync(c.pool, func() (bool, error) { return c.CompressFile(session, path) })
}

func (c *Coordinator) DecompressFileAsync(session *auth.Session, path string) *async.Future[bool] {
	return submitAsync(c.pool, func() (bool, error) { return c.DecompressFile(session, path) })
}

func (c *Coordinator) CreateBackupAsync(session *auth.Session, name, sourceDir string) *async.Future[*backup.Descriptor] {
	return submitAsync(c.pool, func() (*backup.Descriptor, error) { return c.CreateBackup(session, name, sourceDir) })
}

func (c *Coordinator) RestoreBackupAsync(session *auth.Session, name, targetDir string) *async.Future[bool] {
	return submitAsync(c.pool, func() (bool, error) { return c.RestoreBackup(session, name, targetDir) })
}

func (c *Coordinator) DeleteBackupAsync(session *auth.Session, name string) *async.Future[bool] {
	return submitAsync(c.pool, func() (bool, error) { return c.DeleteBackup(session, name) })
}

func (c *Coordinator) ListBackupAsync(session *auth.Session) *async.Future[[]*backup.Descriptor] {
	return submitAsync(c.pool, func() ([]*backup.Descriptor, error) { return c.ListBackup(session) })
}

func (c *Coordinator) SyncAsync() *async.Future[struct{}] {
	return submitAsync(c.pool, func() (struct{}, error) { return struct{}{}, c.Sync() })
}

func (c *Coordinator) MountAsync() *async.Future[struct{}] {
	return submitAsync(c.pool, func() (struct{}, error) { return struct{}{}, c.Mount() })
}

func (c *Coordinator) UnmountAsync() *async.Future[struct{}] {
	return submitAsync(c.pool, func() (struct{}, error) { return struct{}{}, c.Unmount() })
}

// BatchItem is a single item's outcome from a *Batch call, positioned at
// the same index as its input.
type BatchItem[T any] struct {
	Path  string
	Value T
	Err   error
}

// runBatch fans fn out per path via errgroup, collecting results in
// input order. A per-item error does not abort the other items.
func runBatch[T any](ctx context.Context, paths []string, fn func(path string) (T, error)) []BatchItem[T] {
	var results = make([]BatchItem[T], len(paths))
	var eg, _ = errgroup.WithContext(ctx)

	for i, p := range paths {
		var i, p = i, p
		eg.Go(func() error {
			var v, err = fn(p)
			results[i] = BatchItem[T]{Path: p, Value: v, Err: err}
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

func (c *Coordinator) CreateFileBatch(ctx context.Context, session *auth.Session, paths []string) []BatchItem[bool] {
	return runBatch(ctx, paths, func(p string) (bool, error) { return c.CreateFile(session, p) })
}

func (c *Coordinator) ReadFileBatch(ctx context.Context, session *auth.Session, paths []string) []BatchItem[[]byte] {
	return runBatch(ctx, paths, func(p string) ([]byte, error) { return c.ReadFile(session, p) })
}

func (c *Coordinator) DeleteFileBatch(ctx context.Context, session *auth.Session, paths []string) []BatchItem[bool] {
	return runBatch(ctx, paths, func(p string) (bool, error) { return c.DeleteFile(session, p) })
}

func (c *Coordinator) InfoBatch(ctx context.Context, session *auth.Session, paths []string) []BatchItem[FileInfo] {
	return runBatch(ctx, paths, func(p string) (FileInfo, error) { return c.Info(session, p) })
}

func (c *Coordinator) CompressFileBatch(ctx context.Context, session *auth.Session, paths []string) []BatchItem[bool] {
	return runBatch(ctx, paths, func(p string) (bool, error) { return c.CompressFile(session, p) })
}

func (c *Coordinator) DecompressFileBatch(ctx context.Context, session *auth.Session, paths []string) []BatchItem[bool] {
	return runBatch(ctx, paths, func(p string) (bool, error) { return c.DecompressFile(session, p) })
}

// PathData pairs a path with the content WriteFileBatch should write to
// it.
type PathData struct {
	Path string
	Data []byte
}

func (c *Coordinator) WriteFileBatch(ctx context.Context, session *auth.Session, items []PathData) []BatchItem[bool] {
	var results = make([]BatchItem[bool], len(items))
	var eg, _ = errgroup.WithContext(ctx)

	for i, item := range items {
		var i, item = i, item
		eg.Go(func() error {
			var ok, err = c.WriteFile(session, item.Path, item.Data)
			results[i] = BatchItem[bool]{Path: item.Path, Value: ok, Err: err}
			return nil
		})
	}
	_ = eg.Wait()
	return results
}
