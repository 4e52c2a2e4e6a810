// Command cachefs-bench drives synthetic read/write workloads against the
// cache engine, the sharded façade, and the raw block store, and reports
// throughput and hit rate the way the teacher's own tools report
// humanized byte counts (github.com/dustin/go-humanize). It also compares
// RLE against the codec package's additive GZIP/SNAPPY/ZSTD bodies on a
// sample of the generated values.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"

	"go.cachefs.dev/core/blockstore"
	"go.cachefs.dev/core/cache"
	"go.cachefs.dev/core/cache/sharded"
	"go.cachefs.dev/core/codec"
	"go.cachefs.dev/core/metrics"
	"go.cachefs.dev/core/worker"
)

var opts struct {
	Keys             int     `long:"keys" default:"10000" description:"Number of distinct keys in the working set"`
	Operations       int     `long:"operations" default:"200000" description:"Total Get/Put operations to issue"`
	ReadFraction     float64 `long:"read-fraction" default:"0.9" description:"Fraction of operations that are reads"`
	ValueSize        int     `long:"value-size" default:"256" description:"Size in bytes of each generated value"`
	Shards           int     `long:"shards" default:"16" description:"Number of cache shards"`
	CapacityPerShard int     `long:"capacity-per-shard" default:"256" description:"Entries held per shard"`
	Policy           string  `long:"policy" default:"lru" choice:"lru" choice:"lfu" choice:"fifo" choice:"lifo" description:"Eviction policy under test"`
	ZipfS            float64 `long:"zipf-s" default:"1.1" description:"Zipfian skew parameter (> 1, higher is more skewed)"`
	BlockStorePath   string  `long:"blockstore-path" default:"" description:"If set, also benchmark raw block-store throughput against this backing file"`
}

func parsePolicy(name string) cache.Kind {
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

func main() {
	var parser = flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	benchmarkCache()
	benchmarkCodecs()

	if opts.BlockStorePath != "" {
		benchmarkBlockStore()
	}
}

func benchmarkCache() {
	var pool = worker.NewPool(context.Background(), 4)
	defer pool.Stop()

	var c = sharded.New[[]byte](opts.Shards, parsePolicy(opts.Policy), opts.CapacityPerShard, pool)

	var rnd = rand.New(rand.NewSource(1))
	var zipf = rand.NewZipf(rnd, opts.ZipfS, 1, uint64(opts.Keys-1))

	var value = make([]byte, opts.ValueSize)
	_, _ = rnd.Read(value)

	var start = time.Now()
	for i := 0; i < opts.Operations; i++ {
		var key = fmt.Sprintf("key-%d", zipf.Uint64())
		if rnd.Float64() < opts.ReadFraction {
			if _, err := c.Get(key); err != nil {
				c.Put(key, value)
			}
		} else {
			c.Put(key, value)
		}
	}
	var elapsed = time.Since(start)

	var report = c.Statistics()
	var throughput = float64(opts.Operations) / elapsed.Seconds()

	fmt.Printf("cache[%s]: %s in %s (%s ops/sec), hit_rate=%.4f, bytes_touched=%s\n",
		opts.Policy,
		humanize.Comma(int64(opts.Operations)),
		elapsed.Round(time.Millisecond),
		humanize.Comma(int64(throughput)),
		report.HitRate,
		humanize.Bytes(uint64(report.TotalAccesses)*uint64(opts.ValueSize)),
	)
}

func benchmarkCodecs() {
	var rnd = rand.New(rand.NewSource(2))
	var sample = make([]byte, 64*1024)
	for i := range sample {
		if i%37 == 0 {
			sample[i] = byte(rnd.Intn(256))
		}
	}

	for _, kind := range []codec.Kind{codec.RLE, codec.GZIP, codec.SNAPPY, codec.ZSTD} {
		var start = time.Now()
		var out, err = codec.Compress(kind, sample)
		if err != nil {
			fmt.Printf("codec[%d]: compress failed: %v\n", kind, err)
			continue
		}
		var elapsed = time.Since(start)
		var ratio = float64(len(out)) / float64(len(sample))

		fmt.Printf("codec[%d]: %s -> %s (ratio=%.3f) in %s\n",
			kind, humanize.Bytes(uint64(len(sample))), humanize.Bytes(uint64(len(out))), ratio, elapsed)
	}
}

func benchmarkBlockStore() {
	var f, err = os.OpenFile(opts.BlockStorePath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		fmt.Println("blockstore: opening backing file:", err)
		return
	}
	defer f.Close()
	defer os.Remove(opts.BlockStorePath)

	var size = int64(blockstore.BlockSize)*int64(blockstore.MaxBlocks) + 1024
	if err := f.Truncate(size); err != nil {
		fmt.Println("blockstore: sizing backing file:", err)
		return
	}

	var store = blockstore.Open(f)
	if err := store.Format(); err != nil {
		fmt.Println("blockstore: formatting:", err)
		return
	}

	var payload = make([]byte, blockstore.BlockSize)
	var start = time.Now()
	var ids []int
	for store.FreeCount() > 0 {
		var id, err = store.Allocate()
		if err != nil {
			break
		}
		if err := store.Write(id, payload); err != nil {
			fmt.Println("blockstore: write:", err)
			break
		}
		ids = append(ids, id)
	}
	var elapsed = time.Since(start)

	metrics.BlockStoreFreeBlocks.Set(float64(store.FreeCount()))

	var throughput = float64(len(ids)) * float64(blockstore.BlockSize) / elapsed.Seconds()
	fmt.Printf("blockstore: filled %d/%d blocks in %s (%s/sec), free=%d\n",
		len(ids), blockstore.MaxBlocks, elapsed.Round(time.Millisecond), humanize.Bytes(uint64(throughput)), store.FreeCount())
}
