package cachefsctl

import (
	"fmt"
	"time"

	"go.cachefs.dev/core/auth"
	mbp "go.cachefs.dev/core/mainboilerplate"
)

type cmdLogin struct {
	Subject       string        `long:"subject" required:"true" description:"Identity the session is issued to"`
	Administrator bool          `long:"administrator" description:"Issue the session with administrator privileges"`
	Read          bool          `long:"read" description:"Grant read capability"`
	Write         bool          `long:"write" description:"Grant write capability"`
	Admin         bool          `long:"admin" description:"Grant admin capability"`
	TTL           time.Duration `long:"ttl" default:"24h" description:"Session lifetime"`
}

func init() { CommandRegistry.AddCommand("", "login", "Issue a signed session token", "", &cmdLogin{}) }

func (cmd *cmdLogin) Execute([]string) error {
	startup()

	var store, err = auth.NewStore(baseCfg.Auth.Keys)
	mbp.Must(err, "building auth store")

	var capability auth.Capability
	if cmd.Read {
		capability |= auth.CapRead
	}
	if cmd.Write {
		capability |= auth.CapWrite
	}
	if cmd.Admin {
		capability |= auth.CapAdmin
	}

	var session *auth.Session
	session, err = store.Login(cmd.Subject, cmd.Administrator, capability, cmd.TTL)
	mbp.Must(err, "logging in")

	fmt.Println(session.Token)
	return nil
}

type cmdLogout struct {
	Token string `long:"token" required:"true" description:"Token to revoke"`
}

func init() { CommandRegistry.AddCommand("", "logout", "Revoke a session token", "", &cmdLogout{}) }

func (cmd *cmdLogout) Execute([]string) error {
	startup()

	var store, err = auth.NewStore(baseCfg.Auth.Keys)
	mbp.Must(err, "building auth store")

	var session *auth.Session
	session, err = store.Verify(cmd.Token, 0)
	mbp.Must(err, "verifying token")

	store.Logout(session)
	fmt.Println("logged out", session.Subject)
	return nil
}
