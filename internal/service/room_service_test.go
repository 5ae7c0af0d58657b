package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbeisheim/variantchess-backend/internal/engine"
	"github.com/benbeisheim/variantchess-backend/internal/model"
	"github.com/benbeisheim/variantchess-backend/internal/store"
	"github.com/benbeisheim/variantchess-backend/internal/testutil"
	"github.com/benbeisheim/variantchess-backend/internal/ws"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeConn struct {
	mu     sync.Mutex
	msgs   []ws.Message
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("use of closed connection")
	}
	f.msgs = append(f.msgs, v.(ws.Message))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) types() []ws.MessageType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ws.MessageType, len(f.msgs))
	for i, m := range f.msgs {
		out[i] = m.Type
	}
	return out
}

func (f *fakeConn) last() ws.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.msgs[len(f.msgs)-1]
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = nil
}

type fixture struct {
	store   *store.MemoryStore
	manager *RoomManager
	service *RoomService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st := store.NewMemoryStore()
	ids := 0
	rm := NewRoomManager(st, nil,
		WithClock(func() time.Time { return epoch }),
		WithIDs(func() string {
			ids++
			return "room-" + string(rune('0'+ids))
		}),
	)
	return fixture{store: st, manager: rm, service: NewRoomService(rm, nil)}
}

// seatedRoom creates a room with alice as White and bob as Black, both
// connected.
func (f fixture) seatedRoom(t *testing.T, variant string) (string, *fakeConn, *fakeConn) {
	t.Helper()
	ctx := context.Background()
	rec, _, err := f.service.CreateRoom(ctx, "alice", "Alice", variant)
	testutil.AssertNoError(t, err)
	_, err = f.service.JoinRoom(ctx, rec.ID, "bob", "Bob")
	testutil.AssertNoError(t, err)

	alice, bob := &fakeConn{}, &fakeConn{}
	testutil.AssertNoError(t, f.service.RegisterConnection(rec.ID, "alice", alice))
	testutil.AssertNoError(t, f.service.RegisterConnection(rec.ID, "bob", bob))
	alice.reset()
	bob.reset()
	return rec.ID, alice, bob
}

func (f fixture) play(t *testing.T, roomID string, moves ...[3]string) {
	t.Helper()
	for _, m := range moves {
		err := f.service.HandleMove(context.Background(), roomID, m[0], ws.MovePayload{From: m[1], To: m[2]})
		if err != nil {
			t.Fatalf("%s %s-%s: %v", m[0], m[1], m[2], err)
		}
	}
}

func decode[T any](t *testing.T, msg ws.Message) T {
	t.Helper()
	var v T
	testutil.AssertNoError(t, json.Unmarshal(msg.Payload, &v))
	return v
}

func TestCreateRoomSeatsCreatorAsWhite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, player, err := f.service.CreateRoom(ctx, "alice", "", "faraway_chess")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, player, model.Player{ID: "alice", DisplayName: model.DefaultDisplayName, Color: engine.White})
	testutil.AssertEqual(t, rec.Variant, "faraway-chess")
	testutil.AssertEqual(t, []int{rec.Rows, rec.Cols}, []int{9, 8})

	stored, err := f.store.Load(ctx, rec.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, stored.Players, []model.Player{player})

	_, _, err = f.service.CreateRoom(ctx, "alice", "", "chess960")
	testutil.AssertErrorIs(t, err, engine.ErrUnknownVariant)
	testutil.AssertEqual(t, f.manager.RoomCount(), 1)
}

func TestJoinRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.JoinRoom(ctx, "missing", "bob", "")
	testutil.AssertErrorIs(t, err, ErrRoomNotFound)

	rec, _, err := f.service.CreateRoom(ctx, "alice", "Alice", "classic")
	testutil.AssertNoError(t, err)
	alice := &fakeConn{}
	testutil.AssertNoError(t, f.service.RegisterConnection(rec.ID, "alice", alice))

	bob, err := f.service.JoinRoom(ctx, rec.ID, "bob", "Bob")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, bob.Color, engine.Black)
	testutil.AssertEqual(t, alice.types(), []ws.MessageType{
		ws.MessageTypeRoomState,
		ws.MessageTypeOpponentJoined,
		ws.MessageTypeRoomState,
	})
	testutil.AssertEqual(t, decode[ws.PlayerPayload](t, alice.msgs[1]), ws.PlayerPayload{
		PlayerID: "bob", DisplayName: "Bob", Color: "black",
	})

	_, err = f.service.JoinRoom(ctx, rec.ID, "carol", "")
	testutil.AssertErrorIs(t, err, model.ErrRoomFull)

	again, err := f.service.JoinRoom(ctx, rec.ID, "bob", "")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, again, bob)
	testutil.AssertEqual(t, len(alice.types()), 3, "rejoin is silent")
}

func TestRegisterConnectionRequiresSeat(t *testing.T) {
	f := newFixture(t)
	rec, _, err := f.service.CreateRoom(context.Background(), "alice", "", "classic")
	testutil.AssertNoError(t, err)

	err = f.service.RegisterConnection(rec.ID, "mallory", &fakeConn{})
	testutil.AssertErrorIs(t, err, model.ErrNotAuthorized)
	err = f.service.RegisterConnection("missing", "alice", &fakeConn{})
	testutil.AssertErrorIs(t, err, ErrRoomNotFound)
}

func TestLegalMoves(t *testing.T) {
	f := newFixture(t)
	roomID, _, _ := f.seatedRoom(t, "classic")

	got, err := f.service.LegalMoves(roomID, "e2")
	testutil.AssertNoError(t, err)
	testutil.AssertSameElements(t, got, []string{"e3", "e4"}, func(a, b string) bool { return a < b })

	got, err = f.service.LegalMoves(roomID, "e7")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got, []string{}, "black is not on move")

	_, err = f.service.LegalMoves(roomID, "?")
	testutil.AssertErrorIs(t, err, engine.ErrOutOfBounds)
}

func TestAllMoves(t *testing.T) {
	f := newFixture(t)
	roomID, _, _ := f.seatedRoom(t, "micro-chess")

	moves, err := f.service.AllMoves(roomID)
	testutil.AssertNoError(t, err)
	if len(moves) == 0 {
		t.Fatal("no moves from the starting position")
	}
	testutil.AssertNoError(t, f.service.HandleMove(context.Background(), roomID, "alice", moves[0]))

	_, err = f.service.AllMoves("missing")
	testutil.AssertErrorIs(t, err, ErrRoomNotFound)
}

func TestHandleMoveBroadcastsState(t *testing.T) {
	f := newFixture(t)
	roomID, alice, bob := f.seatedRoom(t, "classic")

	f.play(t, roomID, [3]string{"alice", "e2", "e4"})
	testutil.AssertEqual(t, alice.types(), []ws.MessageType{ws.MessageTypeRoomState})
	testutil.AssertEqual(t, bob.types(), []ws.MessageType{ws.MessageTypeRoomState})

	state := decode[model.Record](t, bob.last())
	testutil.AssertEqual(t, state.Position.ToMove, engine.Black)
	if state.History != nil {
		t.Error("broadcast state carries history")
	}

	stored, err := f.store.Load(context.Background(), roomID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(stored.History), 2, "persisted record keeps history")
}

func TestHandleMoveRejections(t *testing.T) {
	f := newFixture(t)
	roomID, alice, bob := f.seatedRoom(t, "classic")
	ctx := context.Background()

	tests := []struct {
		name    string
		player  string
		payload ws.MovePayload
		want    error
	}{
		{"illegal", "alice", ws.MovePayload{From: "e2", To: "e5"}, engine.ErrIllegalMove},
		{"off board", "alice", ws.MovePayload{From: "e2", To: "e9"}, engine.ErrOutOfBounds},
		{"garbage square", "alice", ws.MovePayload{From: "xx", To: "e4"}, engine.ErrOutOfBounds},
		{"bad promotion", "alice", ws.MovePayload{From: "e2", To: "e4", Promotion: "dragon"}, engine.ErrInvalidPromotion},
		{"king promotion", "alice", ws.MovePayload{From: "e2", To: "e4", Promotion: "king"}, engine.ErrInvalidPromotion},
		{"out of turn", "bob", ws.MovePayload{From: "e7", To: "e5"}, model.ErrNotYourTurn},
		{"stranger", "mallory", ws.MovePayload{From: "e2", To: "e4"}, model.ErrNotInRoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.service.HandleMove(ctx, roomID, tt.player, tt.payload)
			testutil.AssertErrorIs(t, err, tt.want)
		})
	}

	testutil.AssertEqual(t, alice.types(), []ws.MessageType{}, "rejections are not broadcast")
	testutil.AssertEqual(t, bob.types(), []ws.MessageType{})

	err := f.service.HandleMove(ctx, "missing", "alice", ws.MovePayload{From: "e2", To: "e4"})
	testutil.AssertErrorIs(t, err, ErrRoomNotFound)
}

func TestHandleMoveAnnouncesCheckmate(t *testing.T) {
	f := newFixture(t)
	roomID, alice, _ := f.seatedRoom(t, "classic")

	f.play(t, roomID,
		[3]string{"alice", "f2", "f3"}, [3]string{"bob", "e7", "e5"},
		[3]string{"alice", "g2", "g4"}, [3]string{"bob", "d8", "h4"},
	)
	types := alice.types()
	testutil.AssertEqual(t, types[len(types)-2:], []ws.MessageType{
		ws.MessageTypeRoomState,
		ws.MessageTypeStatusChanged,
	})
	testutil.AssertEqual(t, decode[engine.Status](t, alice.last()), engine.Win(engine.Black, engine.ReasonCheckmate))

	err := f.service.HandleMove(context.Background(), roomID, "alice", ws.MovePayload{From: "a2", To: "a3"})
	testutil.AssertErrorIs(t, err, engine.ErrGameOver)
}

func TestHandleMoveThreefoldNotice(t *testing.T) {
	f := newFixture(t)
	roomID, alice, _ := f.seatedRoom(t, "queen-vs-knight")
	shuffle := [][3]string{
		{"alice", "g1", "f3"}, {"bob", "d8", "d7"},
		{"alice", "f3", "g1"}, {"bob", "d7", "d8"},
	}
	f.play(t, roomID, shuffle...)
	f.play(t, roomID, shuffle...)
	f.play(t, roomID, shuffle...)

	var notices []ws.Message
	for _, m := range alice.msgs {
		if m.Type == ws.MessageTypeThreefold {
			notices = append(notices, m)
		}
	}
	testutil.AssertEqual(t, len(notices), 1)
	testutil.AssertEqual(t, decode[ws.NoticePayload](t, notices[0]), ws.NoticePayload{RoomID: roomID, Repetitions: 3})
}

func TestDisconnect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	roomID, alice, bob := f.seatedRoom(t, "classic")

	f.service.Disconnect(ctx, roomID, "alice", &fakeConn{})
	testutil.AssertEqual(t, bob.types(), []ws.MessageType{}, "stale connection is ignored")

	f.service.Disconnect(ctx, roomID, "alice", alice)
	testutil.AssertEqual(t, bob.types(), []ws.MessageType{ws.MessageTypePlayerDisconnected})
	testutil.AssertEqual(t, decode[ws.PlayerPayload](t, bob.last()), ws.PlayerPayload{
		PlayerID: "alice", DisplayName: "Alice", Color: "white",
	})
	rec, err := f.service.GetRoom(roomID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(rec.Players), 1)

	f.service.Disconnect(ctx, roomID, "bob", bob)
	_, err = f.service.GetRoom(roomID)
	testutil.AssertErrorIs(t, err, ErrRoomNotFound)
	_, err = f.store.Load(ctx, roomID)
	testutil.AssertErrorIs(t, err, store.ErrNotFound)
}

func TestRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	roomID, _, _ := f.seatedRoom(t, "active-chess")
	f.play(t, roomID, [3]string{"alice", "e2", "e4"})

	before, err := f.manager.GetRoom(roomID)
	testutil.AssertNoError(t, err)

	bad := before.Record()
	bad.ID = "broken"
	bad.Variant = "no-such-variant"
	testutil.AssertNoError(t, f.store.Save(ctx, bad))

	restarted := NewRoomManager(f.store, nil)
	n, err := restarted.Restore(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 1)

	after, err := restarted.GetRoom(roomID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, after.Record(), before.Record())
	_, err = restarted.GetRoom("broken")
	testutil.AssertErrorIs(t, err, ErrRoomNotFound)
}

func TestVariantsListsEveryRuleSet(t *testing.T) {
	f := newFixture(t)
	var ids []string
	for _, v := range f.service.Variants() {
		ids = append(ids, v.ID)
	}
	if !strings.Contains(strings.Join(ids, ","), "micro-chess") {
		t.Errorf("variants %v missing micro-chess", ids)
	}
	testutil.AssertEqual(t, len(ids), len(engine.Variants()))
}
