// Package journal implements an append-only sequence of metadata-mutation
// records with transaction brackets, persisted to a flat file so a restart
// can detect an unclean shutdown. It mirrors the teacher's recoverylog
// Recorder: a single mutex guards both the in-memory sequence and the
// write to durable storage, and the journal never physically undoes a
// recorded operation — Begin/Commit/Rollback are bookkeeping only, and
// recovery is a replay decision left to the caller.
package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/spf13/afero"

	"go.cachefs.dev/core/fserr"
)

// Kind classifies a journal Entry.
type Kind int

const (
	CreateFile Kind = iota
	DeleteFile
	WriteData
	CreateDir
	DeleteDir
	UpdateMetadata
	txBegin
	txCommit
	txRollback
)

// Entry is a single append-only journal record: a monotonic sequence
// number, an operation kind, a timestamp, the blocks it affected (if any),
// an opaque payload, and whether it was recorded inside an open
// transaction.
type Entry struct {
	Sequence      uint64    `json:"sequence"`
	Kind          Kind      `json:"kind"`
	Timestamp     time.Time `json:"timestamp"`
	Blocks        []int     `json:"blocks,omitempty"`
	Payload       []byte    `json:"payload,omitempty"`
	InTransaction bool      `json:"in_transaction"`
}

// Journal is an append-only vector of Entry persisted as one JSON record
// per line in the file given to Open.
type Journal struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string

	entries       []Entry
	sequence      uint64
	inTransaction bool
	needsRecovery bool
}

// Open opens (or creates) the journal file at path and replays any
// existing entries, so NeedsRecovery reflects the state of the journal at
// the time of a prior unclean shutdown.
func Open(fs afero.Fs, path string) (*Journal, error) {
	var j = &Journal{fs: fs, path: path}
	if err := j.replay(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Journal) replay() error {
	var f, err = j.fs.Open(j.path)
	if err != nil {
		if afero.IsNotExist(err) {
			return nil
		}
		return fserr.Wrapf(err, fserr.Internal, "journal.Open", "opening %s", j.path)
	}
	defer f.Close()

	var scanner = bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return fserr.Wrapf(err, fserr.Internal, "journal.Open", "decoding entry")
		}
		j.entries = append(j.entries, e)
		if e.Sequence > j.sequence {
			j.sequence = e.Sequence
		}
		switch e.Kind {
		case txBegin:
			j.inTransaction = true
		case txCommit, txRollback:
			j.inTransaction = false
		}
	}
	if err := scanner.Err(); err != nil {
		return fserr.Wrapf(err, fserr.Internal, "journal.Open", "scanning %s", j.path)
	}

	j.needsRecovery = j.inTransaction
	return nil
}

func (j *Journal) appendLocked(kind Kind, blocks []int, payload []byte) (Entry, error) {
	j.sequence++
	var e = Entry{
		Sequence:      j.sequence,
		Kind:          kind,
		Timestamp:     time.Now(),
		Blocks:        blocks,
		Payload:       payload,
		InTransaction: j.inTransaction,
	}

	var line, err = json.Marshal(e)
	if err != nil {
		return Entry{}, fserr.Wrapf(err, fserr.Internal, "journal.Append", "encoding entry")
	}
	line = append(line, '\n')

	var f afero.File
	f, err = j.fs.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Entry{}, fserr.Wrapf(err, fserr.Internal, "journal.Append", "opening %s", j.path)
	}
	defer f.Close()

	if _, err = f.Write(line); err != nil {
		return Entry{}, fserr.Wrapf(err, fserr.Internal, "journal.Append", "writing entry")
	}

	j.entries = append(j.entries, e)
	return e, nil
}

// Append records a new Entry and returns it.
func (j *Journal) Append(kind Kind, blocks []int, payload []byte) (Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.appendLocked(kind, blocks, payload)
}

// Begin marks subsequent entries as being recorded inside a transaction,
// until Commit or Rollback. Begin/Commit/Rollback are informational only:
// no entry is ever physically undone.
func (j *Journal) Begin() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inTransaction = true
	_, err := j.appendLocked(txBegin, nil, nil)
	return err
}

// Commit closes the current transaction.
func (j *Journal) Commit() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.appendLocked(txCommit, nil, nil)
	j.inTransaction = false
	return err
}

// Rollback closes the current transaction without undoing any entry
// recorded since Begin; the caller decides what, if anything, to compensate.
func (j *Journal) Rollback() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.appendLocked(txRollback, nil, nil)
	j.inTransaction = false
	return err
}

// Checkpoint truncates the log at the current sequence: every entry
// accounted for up to this point is assumed durable elsewhere, so the
// on-disk log is cleared while the in-memory sequence counter keeps
// counting monotonically.
func (j *Journal) Checkpoint() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.fs.Remove(j.path); err != nil && !afero.IsNotExist(err) {
		return fserr.Wrapf(err, fserr.Internal, "journal.Checkpoint", "removing %s", j.path)
	}
	j.entries = nil
	j.needsRecovery = false
	return nil
}

// NeedsRecovery reports whether entries existed while in_transaction was
// set at the time Open replayed the journal.
func (j *Journal) NeedsRecovery() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.needsRecovery
}

// Entries returns a copy of every entry currently in the in-memory log
// (i.e. recorded since the last Checkpoint).
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out = make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Sequence returns the most recently assigned sequence number.
func (j *Journal) Sequence() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.sequence
}
