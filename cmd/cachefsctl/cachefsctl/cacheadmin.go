package cachefsctl

import (
	"fmt"

	"go.cachefs.dev/core/auth"
	"go.cachefs.dev/core/cache"
	mbp "go.cachefs.dev/core/mainboilerplate"
)

type cmdChangeCachePolicy struct {
	Token            string `long:"token" required:"true" description:"Session token"`
	Policy           string `long:"policy" required:"true" choice:"lru" choice:"lfu" choice:"fifo" choice:"lifo" description:"New eviction policy"`
	CapacityPerShard int    `long:"capacity-per-shard" required:"true" description:"New per-shard capacity"`
}

func init() {
	CommandRegistry.AddCommand("", "change-cache-policy", "Switch every shard's eviction policy, discarding resident entries", "", &cmdChangeCachePolicy{})
}

func (cmd *cmdChangeCachePolicy) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapAdmin)
	var coord = mustCoordinator()
	defer coord.Unmount()

	mbp.Must(coord.ChangeCachePolicy(session, cachePolicyKind(cmd.Policy), cmd.CapacityPerShard), "changing cache policy")
	fmt.Println("cache policy changed")
	return nil
}

type cmdResizeCache struct {
	Token            string `long:"token" required:"true" description:"Session token"`
	CapacityPerShard int    `long:"capacity-per-shard" required:"true" description:"New per-shard capacity"`
}

func init() {
	CommandRegistry.AddCommand("", "resize-cache", "Resize every shard's capacity, discarding resident entries", "", &cmdResizeCache{})
}

func (cmd *cmdResizeCache) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapAdmin)
	var coord = mustCoordinator()
	defer coord.Unmount()

	mbp.Must(coord.ResizeCache(session, cmd.CapacityPerShard), "resizing cache")
	fmt.Println("cache resized")
	return nil
}

func cachePolicyKind(name string) cache.Kind {
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
