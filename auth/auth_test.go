package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.cachefs.dev/core/auth"
)

func TestLoginAndVerifyRoundTrip(t *testing.T) {
	var store, err = auth.NewStore("c2VjcmV0,b3RoZXI=")
	require.NoError(t, err)

	var session, lerr = store.Login("alice", false, auth.CapRead|auth.CapWrite, time.Hour)
	require.NoError(t, lerr)
	require.NotEmpty(t, session.Token)

	var verified, verr = store.Verify(session.Token, auth.CapRead)
	require.NoError(t, verr)
	require.Equal(t, "alice", verified.Subject)
	require.False(t, verified.Administrator)
}

func TestVerifyRejectsMissingCapability(t *testing.T) {
	var store, err = auth.NewStore("c2VjcmV0")
	require.NoError(t, err)

	var session, lerr = store.Login("bob", false, auth.CapRead, time.Hour)
	require.NoError(t, lerr)

	var _, verr = store.Verify(session.Token, auth.CapAdmin)
	require.Error(t, verr)
	require.Contains(t, verr.Error(), "ADMIN")
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	var signing, err = auth.NewStore("c2VjcmV0")
	require.NoError(t, err)
	var verifying, verr2 = auth.NewStore("b3RoZXI=")
	require.NoError(t, verr2)

	var session, lerr = signing.Login("carol", false, auth.CapRead, time.Hour)
	require.NoError(t, lerr)

	var _, verr = verifying.Verify(session.Token, auth.CapRead)
	require.Error(t, verr)
}

func TestLogoutRevokesToken(t *testing.T) {
	var store, err = auth.NewStore("c2VjcmV0")
	require.NoError(t, err)

	var session, lerr = store.Login("dave", false, auth.CapRead, time.Hour)
	require.NoError(t, lerr)

	_, verr := store.Verify(session.Token, auth.CapRead)
	require.NoError(t, verr)

	store.Logout(session)

	_, verr = store.Verify(session.Token, auth.CapRead)
	require.Error(t, verr)
}

func TestCanAccessOwnerOrAdministrator(t *testing.T) {
	var store, err = auth.NewStore("c2VjcmV0")
	require.NoError(t, err)

	owner, lerr := store.Login("owner", false, auth.CapRead, time.Hour)
	require.NoError(t, lerr)
	require.True(t, auth.CanAccess(owner, "owner"))
	require.False(t, auth.CanAccess(owner, "someone-else"))

	admin, aerr := store.Login("root", true, auth.CapRead|auth.CapAdmin, time.Hour)
	require.NoError(t, aerr)
	require.True(t, auth.CanAccess(admin, "anyone"))
}

func TestExpiredTokenFailsVerify(t *testing.T) {
	var store, err = auth.NewStore("c2VjcmV0")
	require.NoError(t, err)

	var session, lerr = store.Login("eve", false, auth.CapRead, -time.Minute)
	require.NoError(t, lerr)

	var _, verr = store.Verify(session.Token, auth.CapRead)
	require.Error(t, verr)
}
