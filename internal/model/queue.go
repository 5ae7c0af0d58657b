package model

import (
	"sync"
	"time"
)

type QueuedPlayer struct {
	Player   Player
	Variant  string
	JoinedAt time.Time
}

// Queue pairs players who asked for the same variant, oldest first.
type Queue struct {
	players []QueuedPlayer
	mu      sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{
		players: []QueuedPlayer{},
	}
}

func (q *Queue) AddPlayer(player Player, variant string, now time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, p := range q.players {
		if p.Player.ID == player.ID {
			return ErrAlreadyQueued
		}
	}

	q.players = append(q.players, QueuedPlayer{
		Player:   player,
		Variant:  variant,
		JoinedAt: now,
	})
	return nil
}

// Remove drops playerID from the queue and reports whether it was queued.
func (q *Queue) Remove(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, p := range q.players {
		if p.Player.ID == playerID {
			q.players = append(q.players[:i], q.players[i+1:]...)
			return true
		}
	}
	return false
}

// NextPair removes and returns the two longest-waiting players that share a
// variant and pass ready. Players failing ready keep their place.
func (q *Queue) NextPair(ready func(playerID string) bool) (QueuedPlayer, QueuedPlayer, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := 0; i < len(q.players); i++ {
		first := q.players[i]
		if !ready(first.Player.ID) {
			continue
		}
		for j := i + 1; j < len(q.players); j++ {
			second := q.players[j]
			if second.Variant != first.Variant || !ready(second.Player.ID) {
				continue
			}
			rest := make([]QueuedPlayer, 0, len(q.players)-2)
			rest = append(rest, q.players[:i]...)
			rest = append(rest, q.players[i+1:j]...)
			rest = append(rest, q.players[j+1:]...)
			q.players = rest
			return first, second, true
		}
	}
	return QueuedPlayer{}, QueuedPlayer{}, false
}

// Requeue puts back a player taken by NextPair, ahead of everyone who joined
// later.
func (q *Queue) Requeue(qp QueuedPlayer) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	at := len(q.players)
	for i, p := range q.players {
		if p.Player.ID == qp.Player.ID {
			return ErrAlreadyQueued
		}
		if at == len(q.players) && p.JoinedAt.After(qp.JoinedAt) {
			at = i
		}
	}
	q.players = append(q.players, QueuedPlayer{})
	copy(q.players[at+1:], q.players[at:])
	q.players[at] = qp
	return nil
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.players)
}
