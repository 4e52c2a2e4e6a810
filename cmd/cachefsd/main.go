package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"go.cachefs.dev/core/cache"
	"go.cachefs.dev/core/coordinator"
	mbp "go.cachefs.dev/core/mainboilerplate"
	"go.cachefs.dev/core/worker"
)

const iniFilename = "cachefsd.ini"

// Config is the top-level configuration object of a cachefsd daemon.
var Config = new(struct {
	Mount struct {
		Root         string `long:"root" env:"ROOT" default:"/var/lib/cachefs/data" description:"Host directory backing every stored file"`
		MetadataPath string `long:"metadata-path" env:"METADATA_PATH" default:"/var/lib/cachefs/metadata.tsv" description:"Path to the metadata sidecar"`
		JournalPath  string `long:"journal-path" env:"JOURNAL_PATH" default:"/var/lib/cachefs/journal.log" description:"Path to the mutation journal"`
		BackupRoot   string `long:"backup-root" env:"BACKUP_ROOT" default:"/var/lib/cachefs/backups" description:"Host directory holding backup snapshots"`
	} `group:"Mount" namespace:"mount" env-namespace:"MOUNT"`

	Cache struct {
		Shards            int           `long:"shards" env:"SHARDS" default:"16" description:"Number of independent cache shards"`
		CapacityPerShard  int           `long:"capacity-per-shard" env:"CAPACITY_PER_SHARD" default:"4096" description:"Maximum entries held per shard"`
		Policy            string        `long:"policy" env:"POLICY" default:"lru" choice:"lru" choice:"lfu" choice:"fifo" choice:"lifo" description:"Eviction policy shared by every shard"`
		MetricsPollPeriod time.Duration `long:"metrics-poll-period" env:"METRICS_POLL_PERIOD" default:"5s" description:"Interval between cache metrics exports"`
	} `group:"Cache" namespace:"cache" env-namespace:"CACHE"`

	Backup struct {
		Concurrency int `long:"concurrency" env:"CONCURRENCY" default:"4" description:"Maximum concurrent file copies during a backup operation"`
		CacheSize   int `long:"cache-size" env:"CACHE_SIZE" default:"64" description:"Number of backup descriptors cached in memory"`
	} `group:"Backup" namespace:"backup" env-namespace:"BACKUP"`

	Workers int `long:"workers" env:"WORKERS" default:"8" description:"Size of the worker pool backing every *Async operation"`

	Log         mbp.LogConfig         `group:"Logging" namespace:"log" env-namespace:"LOG"`
	Diagnostics mbp.DiagnosticsConfig `group:"Debug" namespace:"debug" env-namespace:"DEBUG"`
})

func cachePolicy(name string) cache.Kind {
	switch name {
	case "lfu":
		return cache.KindLFU
	case "fifo":
		return cache.KindFIFO
	case "lifo":
		return cache.KindLIFO
	default:
		return cache.KindLRU
	}
}

type serveDaemon struct{}

func (serveDaemon) Execute(args []string) error {
	defer mbp.InitDiagnosticsAndRecover(Config.Diagnostics)()
	mbp.InitLog(Config.Log)

	log.WithField("config", Config).Info("starting cachefsd")

	var ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	var pool = worker.NewPool(ctx, Config.Workers)
	defer pool.Stop()

	var coord = coordinator.New(afero.NewOsFs(), pool, coordinator.Config{
		Root:                  Config.Mount.Root,
		MetadataPath:          Config.Mount.MetadataPath,
		JournalPath:           Config.Mount.JournalPath,
		BackupRoot:            Config.Mount.BackupRoot,
		ShardCount:            Config.Cache.Shards,
		CacheCapacityPerShard: Config.Cache.CapacityPerShard,
		CachePolicy:           cachePolicy(Config.Cache.Policy),
		BackupConcurrency:     Config.Backup.Concurrency,
		BackupCacheSize:       Config.Backup.CacheSize,
	})
	mbp.Must(coord.Mount(), "mounting coordinator")

	var signalCh = make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGTERM, syscall.SIGINT)

	var ticker = time.NewTicker(Config.Cache.MetricsPollPeriod)
	defer ticker.Stop()

	log.Info("cachefsd mounted, serving until signaled")
loop:
	for {
		select {
		case <-ticker.C:
			coord.ExportCacheMetrics()
		case <-signalCh:
			log.Info("signal received, unmounting")
			break loop
		}
	}

	mbp.Must(coord.Unmount(), "unmounting coordinator")
	log.Info("goodbye")
	return nil
}

func main() {
	var parser = flags.NewParser(Config, flags.Default)

	_, _ = parser.AddCommand("serve", "Serve as a cachefs daemon", `
Mount the cache engine, metadata table, journal, and backup manager and serve
filesystem operations until signaled to exit (via SIGTERM or SIGINT). Upon
receiving a signal, the daemon flushes metadata and checkpoints the journal
before exiting.
`, &serveDaemon{})

	mbp.AddPrintConfigCmd(parser, iniFilename)
	mbp.MustParseConfig(parser, iniFilename)
}
