package cachefsctl

import (
	"fmt"

	"go.cachefs.dev/core/auth"
	mbp "go.cachefs.dev/core/mainboilerplate"
)

type cmdCreateDir struct{ pathArg }

func init() { CommandRegistry.AddCommand("", "create-dir", "Create an empty directory", "", &cmdCreateDir{}) }

func (cmd *cmdCreateDir) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapWrite)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var _, err = coord.CreateDir(session, cmd.Path)
	mbp.Must(err, "creating directory")
	fmt.Println("created", cmd.Path)
	return nil
}

type cmdListDir struct{ pathArg }

func init() { CommandRegistry.AddCommand("", "list-dir", "List a directory's direct children", "", &cmdListDir{}) }

func (cmd *cmdListDir) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapRead)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var names, err = coord.ListDir(session, cmd.Path)
	mbp.Must(err, "listing directory")
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

type cmdFind struct {
	pathArg
	Pattern string `long:"pattern" required:"true" description:"Glob (supports * and ?) or substring pattern to match against each entry's base name"`
}

func init() {
	CommandRegistry.AddCommand("", "find", "Find paths under a directory matching a pattern", "", &cmdFind{})
}

func (cmd *cmdFind) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapRead)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var matches, err = coord.Find(session, cmd.Path, cmd.Pattern)
	mbp.Must(err, "finding paths")
	for _, m := range matches {
		fmt.Println(m)
	}
	return nil
}
