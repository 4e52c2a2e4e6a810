package blockstore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// memBacking is a minimal in-memory ReaderAt/WriterAt standing in for the
// backing file in tests.
type memBacking struct {
	mu   sync.Mutex
	data []byte
}

func newMemBacking(size int64) *memBacking {
	return &memBacking{data: make([]byte, size)}
}

func (m *memBacking) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := copy(p, m.data[off:])
	return n, nil
}

func (m *memBacking) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := copy(m.data[off:], p)
	return n, nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	var b = newMemBacking(int64(bitmapBytes) + int64(MaxBlocks)*BlockSize)
	var s = Open(b)
	require.NoError(t, s.Format())
	return s
}

func TestAllocateFirstFit(t *testing.T) {
	var s = newTestStore(t)

	id0, err := s.Allocate()
	require.NoError(t, err)
	require.Equal(t, 0, id0)

	id1, err := s.Allocate()
	require.NoError(t, err)
	require.Equal(t, 1, id1)

	require.NoError(t, s.Free(id0))

	id2, err := s.Allocate()
	require.NoError(t, err)
	require.Equal(t, 0, id2)
}

func TestWriteReadRoundTrip(t *testing.T) {
	var s = newTestStore(t)
	id, err := s.Allocate()
	require.NoError(t, err)

	var payload = []byte("hello block store")
	require.NoError(t, s.Write(id, payload))

	data, err := s.Read(id)
	require.NoError(t, err)
	require.Equal(t, payload, data[:len(payload)])
}

func TestWriteUnallocatedIsError(t *testing.T) {
	var s = newTestStore(t)
	require.Error(t, s.Write(5, []byte("x")))
}

func TestReadUnallocatedIsError(t *testing.T) {
	var s = newTestStore(t)
	_, err := s.Read(5)
	require.Error(t, err)
}

func TestFreeCountAndIsFree(t *testing.T) {
	var s = newTestStore(t)
	require.Equal(t, MaxBlocks, s.FreeCount())

	id, err := s.Allocate()
	require.NoError(t, err)
	require.Equal(t, MaxBlocks-1, s.FreeCount())

	free, err := s.IsFree(id)
	require.NoError(t, err)
	require.False(t, free)
}

func TestAllocateExhaustion(t *testing.T) {
	var s = newTestStore(t)
	for i := 0; i < MaxBlocks; i++ {
		_, err := s.Allocate()
		require.NoError(t, err)
	}
	_, err := s.Allocate()
	require.Error(t, err)
}

func TestFreeInvalidBlockID(t *testing.T) {
	var s = newTestStore(t)
	require.Error(t, s.Free(-1))
	require.Error(t, s.Free(MaxBlocks))
}
