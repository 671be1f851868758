// Package server hosts the lobby shared by every client of the SSH binary.
// Each client simulates its own round; the lobby only tracks who is
// connected and the best results since it started.
package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/santa-rush/internal/loop/config"
)

// GameServer is the interface clients use to talk to the lobby.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	RecordResult(clientID int, score, followers int)
	GetSnapshot() *Snapshot
}

// Lobby tracks connected clients and the session leaderboard.
type Lobby struct {
	logger       *log.Logger
	snapshot     atomic.Pointer[Snapshot]
	clients      map[int]*ClientHandle
	best         map[int]TopScoreEntry
	nextClientID int
	msgCh        chan clientMsg // Joins, results and leaves, in the order each client sent them
	mu           sync.RWMutex
}

// Compile-time check that Lobby implements GameServer.
var _ GameServer = (*Lobby)(nil)

// ClientHandle represents a client's connection to the lobby.
type ClientHandle struct {
	ID       int
	Username string
	EventsCh chan ClientEvent // Closed when the client is unregistered
}

type clientMsgKind int

const (
	msgJoin clientMsgKind = iota
	msgResult
	msgLeave
)

type clientMsg struct {
	kind      clientMsgKind
	handle    *ClientHandle // msgJoin only
	clientID  int
	score     int
	followers int
}

// ClientEvent is sent from the lobby to its clients.
type ClientEvent struct {
	Type     ClientEventType
	Username string // Who set the record
	Score    int
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventNewRecord ClientEventType = iota // Someone took first place
	EventServerShutdown
)

// NewLobby creates an empty lobby.
func NewLobby(logger *log.Logger) *Lobby {
	l := &Lobby{
		logger:       logger,
		clients:      make(map[int]*ClientHandle),
		best:         make(map[int]TopScoreEntry),
		nextClientID: 1,
		msgCh:        make(chan clientMsg, 64),
	}
	l.snapshot.Store(&Snapshot{})
	return l
}

// Run processes registrations and results. Blocks until the context is cancelled.
func (l *Lobby) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-l.msgCh:
			l.handleMsg(msg)
		}
		l.createSnapshot()
	}
}

func (l *Lobby) handleMsg(msg clientMsg) {
	switch msg.kind {
	case msgJoin:
		l.mu.Lock()
		l.clients[msg.handle.ID] = msg.handle
		l.mu.Unlock()
		l.logger.Debug("Client joined", "id", msg.handle.ID, "user", msg.handle.Username)
	case msgResult:
		l.recordResult(msg)
	case msgLeave:
		l.mu.Lock()
		if handle, ok := l.clients[msg.clientID]; ok {
			close(handle.EventsCh)
			delete(l.clients, msg.clientID)
		}
		l.mu.Unlock()
		l.logger.Debug("Client left", "id", msg.clientID)
	}
}

// Shutdown notifies all connected clients and waits for them to disconnect
// (up to the given timeout). The caller should cancel the Run context after
// Shutdown returns.
func (l *Lobby) Shutdown(timeout time.Duration) {
	l.broadcast(ClientEvent{Type: EventServerShutdown})

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			l.mu.RLock()
			remaining := len(l.clients)
			l.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new client with the given username and returns its handle.
func (l *Lobby) RegisterClient(username string) *ClientHandle {
	l.mu.Lock()
	id := l.nextClientID
	l.nextClientID++
	l.mu.Unlock()

	name := sanitizeUsername(username, config.MaxPlayerNameLength)
	if name == "" {
		name = config.DefaultPlayerName
	}
	handle := &ClientHandle{
		ID:       id,
		Username: name,
		EventsCh: make(chan ClientEvent, 16),
	}

	l.msgCh <- clientMsg{kind: msgJoin, handle: handle}
	return handle
}

// UnregisterClient removes a client from the lobby.
func (l *Lobby) UnregisterClient(clientID int) {
	l.msgCh <- clientMsg{kind: msgLeave, clientID: clientID}
}

// RecordResult reports a finished round. Dropped if the lobby is backed up.
func (l *Lobby) RecordResult(clientID int, score, followers int) {
	select {
	case l.msgCh <- clientMsg{kind: msgResult, clientID: clientID, score: score, followers: followers}:
	default:
		l.logger.Warn("Lobby busy, dropping result", "id", clientID, "score", score)
	}
}

// GetSnapshot returns the current lobby snapshot.
func (l *Lobby) GetSnapshot() *Snapshot {
	return l.snapshot.Load()
}

func (l *Lobby) recordResult(r clientMsg) {
	l.mu.Lock()
	handle, ok := l.clients[r.clientID]
	prev, seen := l.best[r.clientID]
	if !ok || (seen && prev.Score >= r.score) {
		l.mu.Unlock()
		return
	}
	leader, hasLeader := l.leaderLocked()
	entry := TopScoreEntry{
		Username:  handle.Username,
		Score:     r.score,
		Followers: r.followers,
		clientID:  r.clientID,
	}
	l.best[r.clientID] = entry
	l.mu.Unlock()

	if r.score > 0 && (!hasLeader || r.score > leader.Score) {
		l.logger.Info("New lobby record", "user", entry.Username, "score", entry.Score)
		l.broadcast(ClientEvent{Type: EventNewRecord, Username: entry.Username, Score: entry.Score})
	}
}

// leaderLocked returns the current first place. Must be called with lock held.
func (l *Lobby) leaderLocked() (TopScoreEntry, bool) {
	var leader TopScoreEntry
	found := false
	for _, e := range l.best {
		if !found || compareEntries(e, leader) < 0 {
			leader = e
			found = true
		}
	}
	return leader, found
}

func (l *Lobby) broadcast(event ClientEvent) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, handle := range l.clients {
		select {
		case handle.EventsCh <- event:
		default:
		}
	}
}

// createSnapshot publishes an immutable view of the lobby.
func (l *Lobby) createSnapshot() {
	l.mu.RLock()
	defer l.mu.RUnlock()

	l.snapshot.Store(&Snapshot{
		Players:   len(l.clients),
		TopScores: rankBest(l.best, config.LeaderboardSize),
	})
}
