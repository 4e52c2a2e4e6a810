package cachefsctl

import (
	"fmt"

	"go.cachefs.dev/core/auth"
	mbp "go.cachefs.dev/core/mainboilerplate"
)

type srcDstArg struct {
	Token string `long:"token" env:"TOKEN" required:"true" description:"Bearer token returned by login"`
	Src   string `long:"src" required:"true" description:"Source path"`
	Dst   string `long:"dst" required:"true" description:"Destination path"`
}

type cmdCopy struct{ srcDstArg }

func init() { CommandRegistry.AddCommand("", "copy", "Copy a file to a new path", "", &cmdCopy{}) }

func (cmd *cmdCopy) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapRead|auth.CapWrite)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var _, err = coord.Copy(session, cmd.Src, cmd.Dst)
	mbp.Must(err, "copying")
	fmt.Printf("copied %s to %s\n", cmd.Src, cmd.Dst)
	return nil
}

type cmdMove struct{ srcDstArg }

func init() { CommandRegistry.AddCommand("", "move", "Move a file to a new path", "", &cmdMove{}) }

func (cmd *cmdMove) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapRead|auth.CapWrite)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var _, err = coord.Move(session, cmd.Src, cmd.Dst)
	mbp.Must(err, "moving")
	fmt.Printf("moved %s to %s\n", cmd.Src, cmd.Dst)
	return nil
}

type cmdRename struct{ srcDstArg }

func init() { CommandRegistry.AddCommand("", "rename", "Rename a file", "", &cmdRename{}) }

func (cmd *cmdRename) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapRead|auth.CapWrite)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var _, err = coord.Rename(session, cmd.Src, cmd.Dst)
	mbp.Must(err, "renaming")
	fmt.Printf("renamed %s to %s\n", cmd.Src, cmd.Dst)
	return nil
}

type cmdCompressFile struct{ pathArg }

func init() {
	CommandRegistry.AddCommand("", "compress-file", "Compress a file's content in place", "", &cmdCompressFile{})
}

func (cmd *cmdCompressFile) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapWrite)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var _, err = coord.CompressFile(session, cmd.Path)
	mbp.Must(err, "compressing file")
	fmt.Println("compressed", cmd.Path)
	return nil
}

type cmdDecompressFile struct{ pathArg }

func init() {
	CommandRegistry.AddCommand("", "decompress-file", "Decompress a file's content in place", "", &cmdDecompressFile{})
}

func (cmd *cmdDecompressFile) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapWrite)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var _, err = coord.DecompressFile(session, cmd.Path)
	mbp.Must(err, "decompressing file")
	fmt.Println("decompressed", cmd.Path)
	return nil
}
