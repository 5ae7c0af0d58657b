package model

import (
	"testing"
	"time"

	"github.com/benbeisheim/variantchess-backend/internal/testutil"
)

func everyone(string) bool { return true }

func TestQueueRejectsDuplicates(t *testing.T) {
	q := NewQueue()
	testutil.AssertNoError(t, q.AddPlayer(NewPlayer("alice", ""), "classic", epoch))
	testutil.AssertErrorIs(t, q.AddPlayer(NewPlayer("alice", ""), "pawn-war", epoch), ErrAlreadyQueued)
	testutil.AssertEqual(t, q.Size(), 1)
}

func TestQueuePairsByVariant(t *testing.T) {
	q := NewQueue()
	for _, entry := range []struct{ id, variant string }{
		{"alice", "classic"},
		{"bob", "pawn-war"},
		{"carol", "classic"},
		{"dave", "pawn-war"},
	} {
		testutil.AssertNoError(t, q.AddPlayer(NewPlayer(entry.id, ""), entry.variant, epoch))
	}

	a, b, ok := q.NextPair(everyone)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, []string{a.Player.ID, b.Player.ID, a.Variant}, []string{"alice", "carol", "classic"})

	a, b, ok = q.NextPair(everyone)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, []string{a.Player.ID, b.Player.ID, a.Variant}, []string{"bob", "dave", "pawn-war"})

	_, _, ok = q.NextPair(everyone)
	testutil.AssertEqual(t, ok, false)
	testutil.AssertEqual(t, q.Size(), 0)
}

func TestQueueSkipsPlayersNotReady(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"alice", "bob", "carol"} {
		testutil.AssertNoError(t, q.AddPlayer(NewPlayer(id, ""), "classic", epoch))
	}

	a, b, ok := q.NextPair(func(id string) bool { return id != "alice" })
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, []string{a.Player.ID, b.Player.ID}, []string{"bob", "carol"})
	testutil.AssertEqual(t, q.Size(), 1)

	testutil.AssertEqual(t, q.Remove("alice"), true)
	testutil.AssertEqual(t, q.Remove("alice"), false)
}

func TestQueueRequeueKeepsJoinOrder(t *testing.T) {
	q := NewQueue()
	for i, id := range []string{"alice", "bob", "carol"} {
		at := epoch.Add(time.Duration(i) * time.Second)
		testutil.AssertNoError(t, q.AddPlayer(NewPlayer(id, ""), "classic", at))
	}

	a, b, ok := q.NextPair(everyone)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertNoError(t, q.AddPlayer(NewPlayer("dave", ""), "classic", epoch.Add(time.Minute)))

	testutil.AssertNoError(t, q.Requeue(b))
	testutil.AssertNoError(t, q.Requeue(a))
	testutil.AssertErrorIs(t, q.Requeue(a), ErrAlreadyQueued)
	testutil.AssertEqual(t, q.Size(), 4)

	first, second, _ := q.NextPair(everyone)
	testutil.AssertEqual(t, []string{first.Player.ID, second.Player.ID}, []string{"alice", "bob"})
	first, second, _ = q.NextPair(everyone)
	testutil.AssertEqual(t, []string{first.Player.ID, second.Player.ID}, []string{"carol", "dave"})
}
