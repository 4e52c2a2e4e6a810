package cachefsctl

import (
	"fmt"

	"go.cachefs.dev/core/auth"
	mbp "go.cachefs.dev/core/mainboilerplate"
)

type cmdCreateBackup struct {
	Token     string `long:"token" env:"TOKEN" required:"true" description:"Bearer token returned by login"`
	Name      string `long:"name" description:"Backup name; a friendly name is generated when omitted"`
	SourceDir string `long:"source" required:"true" description:"Directory to snapshot"`
}

func init() {
	CommandRegistry.AddCommand("", "create-backup", "Snapshot a directory into a new backup", "", &cmdCreateBackup{})
}

func (cmd *cmdCreateBackup) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapRead|auth.CapAdmin)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var desc, err = coord.CreateBackup(session, cmd.Name, cmd.SourceDir)
	mbp.Must(err, "creating backup")
	fmt.Printf("created backup %q: %d files, %d bytes\n", desc.Name, desc.TotalFiles, desc.TotalBytes)
	return nil
}

type cmdRestoreBackup struct {
	Token     string `long:"token" env:"TOKEN" required:"true" description:"Bearer token returned by login"`
	Name      string `long:"name" required:"true" description:"Backup name to restore"`
	TargetDir string `long:"target" required:"true" description:"Directory to restore into"`
}

func init() {
	CommandRegistry.AddCommand("", "restore-backup", "Restore a backup into a directory", "", &cmdRestoreBackup{})
}

func (cmd *cmdRestoreBackup) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapWrite|auth.CapAdmin)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var _, err = coord.RestoreBackup(session, cmd.Name, cmd.TargetDir)
	mbp.Must(err, "restoring backup")
	fmt.Printf("restored backup %q into %s\n", cmd.Name, cmd.TargetDir)
	return nil
}

type cmdDeleteBackup struct {
	Token string `long:"token" env:"TOKEN" required:"true" description:"Bearer token returned by login"`
	Name  string `long:"name" required:"true" description:"Backup name to delete"`
}

func init() { CommandRegistry.AddCommand("", "delete-backup", "Delete a backup", "", &cmdDeleteBackup{}) }

func (cmd *cmdDeleteBackup) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapAdmin)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var _, err = coord.DeleteBackup(session, cmd.Name)
	mbp.Must(err, "deleting backup")
	fmt.Println("deleted backup", cmd.Name)
	return nil
}

type cmdListBackup struct {
	Token string `long:"token" env:"TOKEN" required:"true" description:"Bearer token returned by login"`
}

func init() { CommandRegistry.AddCommand("", "list-backup", "List every known backup", "", &cmdListBackup{}) }

func (cmd *cmdListBackup) Execute([]string) error {
	startup()
	var session = mustSession(cmd.Token, auth.CapRead)
	var coord = mustCoordinator()
	defer coord.Unmount()

	var list, err = coord.ListBackup(session)
	mbp.Must(err, "listing backups")
	for _, desc := range list {
		fmt.Printf("%s\t%s\t%d files\t%d bytes\n", desc.Name, desc.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), desc.TotalFiles, desc.TotalBytes)
	}
	return nil
}
