package cachefsctl

import (
	"fmt"
	"io/ioutil"
	"os"

	"go.cachefs.dev/core/auth"
	mbp "go.cachefs.dev/core/mainboilerplate"
)

type pathArg struct {
	Token string `long:"token" env:"TOKEN" required:"true" description:"Bearer token returned by login"`
	Path  string `long:"path" required:"true" description:"Path of the file or directory"`
}

type cmdCreateFile struct{ pathArg }

func init() { CommandRegistry.AddCommand("", "create-file", "Create an empty file", "", &cmdCreateFile{}) }

func (cmd *cmdCreateFile) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapWrite)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var _, err = coord.CreateFile(session, cmd.Path)
	mbp.Must(err, "creating file")
	fmt.Println("created", cmd.Path)
	return nil
}

type cmdWriteFile struct {
	pathArg
	DataPath string `long:"data" description:"Path to a file with the content to write; defaults to stdin" default:"-"`
}

func init() { CommandRegistry.AddCommand("", "write-file", "Overwrite a file's content", "", &cmdWriteFile{}) }

func (cmd *cmdWriteFile) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapWrite)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var data []byte
	var err error
	if cmd.DataPath == "-" {
		data, err = ioutil.ReadAll(os.Stdin)
	} else {
		data, err = ioutil.ReadFile(cmd.DataPath)
	}
	mbp.Must(err, "reading input")

	_, err = coord.WriteFile(session, cmd.Path, data)
	mbp.Must(err, "writing file")
	fmt.Println("wrote", len(data), "bytes to", cmd.Path)
	return nil
}

type cmdReadFile struct{ pathArg }

func init() { CommandRegistry.AddCommand("", "read-file", "Read a file's content", "", &cmdReadFile{}) }

func (cmd *cmdReadFile) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapRead)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var data, err = coord.ReadFile(session, cmd.Path)
	mbp.Must(err, "reading file")
	os.Stdout.Write(data)
	return nil
}

type cmdDeleteFile struct{ pathArg }

func init() { CommandRegistry.AddCommand("", "delete-file", "Delete a file", "", &cmdDeleteFile{}) }

func (cmd *cmdDeleteFile) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapWrite)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var _, err = coord.DeleteFile(session, cmd.Path)
	mbp.Must(err, "deleting file")
	fmt.Println("deleted", cmd.Path)
	return nil
}
