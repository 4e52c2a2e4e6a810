// Package cachefsctl implements the cachefsctl command-line program:
// one subcommand type per §6 filesystem operation, each registered in an
// init() against the shared CommandRegistry, mirroring the teacher's
// gazctlcmd package (CommandRegistry.AddCommand calls scattered one per
// file, collected by Execute at startup).
package cachefsctl

import (
	"context"

	"github.com/jessevdk/go-flags"
	"github.com/spf13/afero"

	"go.cachefs.dev/core/auth"
	"go.cachefs.dev/core/cache"
	"go.cachefs.dev/core/coordinator"
	mbp "go.cachefs.dev/core/mainboilerplate"
	"go.cachefs.dev/core/worker"
)

const iniFilename = "cachefsctl.ini"

// baseCfg holds the flags every subcommand needs to mount the same
// on-disk store a running cachefsd is serving, and to verify a caller's
// token.
var baseCfg = new(struct {
	Mount struct {
		Root             string `long:"root" env:"ROOT" default:"/var/lib/cachefs/data" description:"Host directory backing every stored file"`
		MetadataPath     string `long:"metadata-path" env:"METADATA_PATH" default:"/var/lib/cachefs/metadata.tsv" description:"Path to the metadata sidecar"`
		JournalPath      string `long:"journal-path" env:"JOURNAL_PATH" default:"/var/lib/cachefs/journal.log" description:"Path to the mutation journal"`
		BackupRoot       string `long:"backup-root" env:"BACKUP_ROOT" default:"/var/lib/cachefs/backups" description:"Host directory holding backup snapshots"`
		Shards           int    `long:"shards" env:"SHARDS" default:"16" description:"Number of independent cache shards"`
		CapacityPerShard int    `long:"capacity-per-shard" env:"CAPACITY_PER_SHARD" default:"4096" description:"Maximum entries held per shard"`
	} `group:"Mount" namespace:"mount" env-namespace:"MOUNT"`

	Auth struct {
		Keys string `long:"keys" env:"KEYS" required:"true" description:"Comma or whitespace separated, base64 encoded pre-shared signing keys"`
	} `group:"Auth" namespace:"auth" env-namespace:"AUTH"`

	Log mbp.LogConfig `group:"Logging" namespace:"log" env-namespace:"LOG"`
})

// CommandRegistry collects every subcommand's AddCommand call, added to
// the root parser by Execute.
var CommandRegistry = mbp.NewCommandRegistry()

// mustCoordinator mounts a Coordinator against the same on-disk paths a
// running cachefsd would use. cachefsctl is a one-shot process: each
// invocation mounts, performs one operation, and unmounts.
func mustCoordinator() *coordinator.Coordinator {
	var pool = worker.NewPool(context.Background(), 1)
	var coord = coordinator.New(afero.NewOsFs(), pool, coordinator.Config{
		Root:                  baseCfg.Mount.Root,
		MetadataPath:          baseCfg.Mount.MetadataPath,
		JournalPath:           baseCfg.Mount.JournalPath,
		BackupRoot:            baseCfg.Mount.BackupRoot,
		ShardCount:            baseCfg.Mount.Shards,
		CacheCapacityPerShard: baseCfg.Mount.CapacityPerShard,
		CachePolicy:           cache.KindLRU,
		BackupConcurrency:     4,
		BackupCacheSize:       64,
	})
	mbp.Must(coord.Mount(), "mounting coordinator")
	return coord
}

// mustSession verifies token against the configured auth store, requiring
// at least require's capabilities.
func mustSession(token string, require auth.Capability) *auth.Session {
	var store, err = auth.NewStore(baseCfg.Auth.Keys)
	mbp.Must(err, "building auth store")
	var session *auth.Session
	session, err = store.Verify(token, require)
	mbp.Must(err, "verifying token")
	return session
}

func startup() {
	mbp.InitLog(baseCfg.Log)
}

// Execute builds the parser, adds every registered subcommand, and parses
// argv, exiting the process per mbp.MustParseConfig's rules.
func Execute() {
	var parser = flags.NewParser(baseCfg, flags.Default)
	parser.LongDescription = `cachefsctl drives a cachefs store from the command line: one subcommand
per filesystem operation, plus stats, login, and logout.

Optionally configure cachefsctl with a '` + iniFilename + `' file in the current working
directory, or with '~/.config/gazette/` + iniFilename + `'. Use the 'print-config'
sub-command to inspect the tool's current configuration.
`
	mbp.AddPrintConfigCmd(parser, iniFilename)
	mbp.Must(CommandRegistry.AddCommands("", parser.Command, true), "could not add subcommand")
	mbp.MustParseConfig(parser, iniFilename)
}
