package journal

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestAppendAssignsMonotonicSequence(t *testing.T) {
	var fs = afero.NewMemMapFs()
	var j, err = Open(fs, "/mnt/journal.log")
	require.NoError(t, err)

	e1, err := j.Append(CreateFile, nil, []byte("/a"))
	require.NoError(t, err)
	e2, err := j.Append(WriteData, []int{1, 2}, []byte("/a"))
	require.NoError(t, err)

	require.Equal(t, uint64(1), e1.Sequence)
	require.Equal(t, uint64(2), e2.Sequence)
}

func TestCheckpointClearsEntriesKeepsSequence(t *testing.T) {
	var fs = afero.NewMemMapFs()
	var j, err = Open(fs, "/mnt/journal.log")
	require.NoError(t, err)

	_, _ = j.Append(CreateFile, nil, nil)
	_, _ = j.Append(DeleteFile, nil, nil)
	require.NoError(t, j.Checkpoint())

	require.Empty(t, j.Entries())

	e, err := j.Append(CreateDir, nil, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(3), e.Sequence)
}

func TestReplayDetectsUncleanShutdown(t *testing.T) {
	var fs = afero.NewMemMapFs()
	var j, err = Open(fs, "/mnt/journal.log")
	require.NoError(t, err)

	require.NoError(t, j.Begin())
	_, err = j.Append(WriteData, nil, []byte("in flight"))
	require.NoError(t, err)
	require.False(t, j.NeedsRecovery())

	var reopened, rerr = Open(fs, "/mnt/journal.log")
	require.NoError(t, rerr)
	require.True(t, reopened.NeedsRecovery())
}

func TestCommitClearsInTransactionOnReplay(t *testing.T) {
	var fs = afero.NewMemMapFs()
	var j, err = Open(fs, "/mnt/journal.log")
	require.NoError(t, err)

	require.NoError(t, j.Begin())
	_, _ = j.Append(WriteData, nil, nil)
	require.NoError(t, j.Commit())

	var reopened, rerr = Open(fs, "/mnt/journal.log")
	require.NoError(t, rerr)
	require.False(t, reopened.NeedsRecovery())
}
