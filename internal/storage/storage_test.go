package storage

import (
	"testing"
	"time"

	"github.com/benbeisheim/chessboard-backend/internal/testutil"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	testutil.AssertNoError(t, err, "open in-memory store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoad(t *testing.T) {
	s := openMemory(t)
	snap := Snapshot{
		ID:        "abc",
		Placement: "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR",
		UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	testutil.AssertNoError(t, s.Save(snap), "save")

	got, err := s.Load("abc")
	testutil.AssertNoError(t, err, "load")
	testutil.AssertEqual(t, got, snap)

	snap.Placement = "8/8/8/8/8/8/8/8"
	testutil.AssertNoError(t, s.Save(snap), "overwrite")
	got, err = s.Load("abc")
	testutil.AssertNoError(t, err, "reload")
	if got.Placement != snap.Placement {
		t.Errorf("placement = %q, want %q", got.Placement, snap.Placement)
	}
}

func TestLoadMissing(t *testing.T) {
	s := openMemory(t)
	_, err := s.Load("nope")
	testutil.AssertErrorIs(t, err, ErrNotFound)
}

func TestListAndDelete(t *testing.T) {
	s := openMemory(t)
	for _, id := range []string{"b", "a", "c"} {
		testutil.AssertNoError(t, s.Save(Snapshot{ID: id, Placement: "8/8/8/8/8/8/8/8"}), "save "+id)
	}

	snaps, err := s.List()
	testutil.AssertNoError(t, err, "list")
	testutil.AssertEqual(t, snaps, []Snapshot{
		{ID: "a", Placement: "8/8/8/8/8/8/8/8"},
		{ID: "b", Placement: "8/8/8/8/8/8/8/8"},
		{ID: "c", Placement: "8/8/8/8/8/8/8/8"},
	}, cmpopts.EquateApproxTime(time.Second))

	testutil.AssertNoError(t, s.Delete("b"), "delete")
	snaps, err = s.List()
	testutil.AssertNoError(t, err, "list after delete")
	if len(snaps) != 2 {
		t.Errorf("List() returned %d snapshots, want 2", len(snaps))
	}
	_, err = s.Load("b")
	testutil.AssertErrorIs(t, err, ErrNotFound)
}

func TestListSkipsUndecodableValues(t *testing.T) {
	s := openMemory(t)
	testutil.AssertNoError(t, s.Save(Snapshot{ID: "good", Placement: "8/8/8/8/8/8/8/8"}), "save good")
	testutil.AssertNoError(t, s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey("bad"), []byte("{not json"))
	}), "write corrupt value")

	snaps, err := s.List()
	testutil.AssertNoError(t, err, "list")
	if len(snaps) != 1 || snaps[0].ID != "good" {
		t.Errorf("List() = %+v, want only the good snapshot", snaps)
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	testutil.AssertNoError(t, err, "open")
	testutil.AssertNoError(t, s.Save(Snapshot{ID: "persisted", Placement: "8/8/8/8/8/8/8/8"}), "save")
	testutil.AssertNoError(t, s.Close(), "close")

	s, err = Open(dir)
	testutil.AssertNoError(t, err, "reopen")
	defer s.Close()
	if _, err := s.Load("persisted"); err != nil {
		t.Errorf("snapshot lost across reopen: %v", err)
	}
}
