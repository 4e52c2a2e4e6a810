package cachefsctl

import (
	"fmt"
	"os"
	"strconv"

	"go.cachefs.dev/core/auth"
	mbp "go.cachefs.dev/core/mainboilerplate"
)

type cmdInfo struct{ pathArg }

func init() { CommandRegistry.AddCommand("", "info", "Show a path's metadata", "", &cmdInfo{}) }

func (cmd *cmdInfo) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapRead)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var info, err = coord.Info(session, cmd.Path)
	mbp.Must(err, "getting info")

	fmt.Printf("path:     %s\n", info.Path)
	fmt.Printf("owner:    %s\n", info.Owner)
	fmt.Printf("perms:    %s\n", info.Perms)
	fmt.Printf("size:     %d\n", info.Size)
	fmt.Printf("is_dir:   %t\n", info.IsDir)
	fmt.Printf("created:  %s\n", info.CreatedAt)
	fmt.Printf("modified: %s\n", info.ModifiedAt)
	return nil
}

type cmdPermissions struct {
	pathArg
	Mode string `long:"mode" required:"true" description:"Octal permission bits, e.g. 0644"`
}

func init() {
	CommandRegistry.AddCommand("", "permissions", "Change a path's permission bits", "", &cmdPermissions{})
}

func (cmd *cmdPermissions) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapWrite)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var bits, err = strconv.ParseUint(cmd.Mode, 8, 32)
	mbp.Must(err, "parsing mode")

	_, err = coord.Permissions(session, cmd.Path, os.FileMode(bits))
	mbp.Must(err, "setting permissions")
	fmt.Println("updated permissions of", cmd.Path)
	return nil
}
