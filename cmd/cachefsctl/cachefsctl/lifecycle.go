package cachefsctl

import (
	"fmt"

	mbp "go.cachefs.dev/core/mainboilerplate"
)

// Mount and Unmount are exercised implicitly by every other subcommand
// (mustCoordinator/coord.Unmount). These three expose Sync/Mount/Unmount as
// standalone operations for scripting and health checks, per §6's
// Sync/Mount/Unmount row.

type cmdSync struct{}

func init() { CommandRegistry.AddCommand("", "sync", "Flush metadata and checkpoint the journal", "", &cmdSync{}) }

func (cmd *cmdSync) Execute([]string) error {
	startup()
	var coord = mustCoordinator()
	defer coord.Unmount()

	mbp.Must(coord.Sync(), "syncing")
	fmt.Println("synced")
	return nil
}

type cmdMount struct{}

func init() { CommandRegistry.AddCommand("", "mount", "Mount the store and exit", "", &cmdMount{}) }

func (cmd *cmdMount) Execute([]string) error {
	startup()
	var coord = mustCoordinator()
	defer coord.Unmount()
	fmt.Println("mounted")
	return nil
}

type cmdUnmount struct{}

func init() { CommandRegistry.AddCommand("", "unmount", "Flush and unmount the store", "", &cmdUnmount{}) }

func (cmd *cmdUnmount) Execute([]string) error {
	startup()
	var coord = mustCoordinator()
	mbp.Must(coord.Unmount(), "unmounting")
	fmt.Println("unmounted")
	return nil
}
