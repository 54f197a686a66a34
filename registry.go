package main

import (
	"errors"
	"sync"
)

var (
	errRoomNameEmpty = errors.New("room name must not be empty")
	errRoomExists    = errors.New("room already exists")
	errRoomNotFound  = errors.New("no such room")
)

// Registry owns the name → room table. Membership moves (create, join,
// disconnect) are serialized here so a room can never be joined after its
// last member left and the name was reclaimed. Gameplay never takes this
// lock, only the per-room one.
type Registry struct {
	cfg *Config

	mu    sync.Mutex
	rooms map[string]*Room
}

func newRegistry(cfg *Config) *Registry {
	return &Registry{
		cfg:   cfg,
		rooms: make(map[string]*Room),
	}
}

// createRoom reserves a unique name and moves the caller in as setter. The
// caller leaves any previous room first, with that room's full leave
// handling.
func (reg *Registry) createRoom(name string, s *Session) (*Room, error) {
	if name == "" {
		return nil, errRoomNameEmpty
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.rooms[name]; exists {
		return nil, errRoomExists
	}

	room := newRoom(reg.cfg, name)
	reg.rooms[name] = room

	reg.leaveLocked(s)
	room.add(s)
	s.room = room

	logf(reg.cfg, "GAMES: Created room %q", name)

	return room, nil
}

// joinRoom moves the caller into an existing room, leaving any previous one
// first. Joining the room the caller is already in changes nothing.
func (reg *Registry) joinRoom(name string, s *Session) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[name]
	if !ok {
		return nil, errRoomNotFound
	}

	if s.room != room {
		reg.leaveLocked(s)
		room.add(s)
		s.room = room
	}

	return room, nil
}

// removeMember runs the leave handling for a disconnecting session. Safe to
// call for sessions that never joined a room, and safe to call twice.
func (reg *Registry) removeMember(s *Session) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.leaveLocked(s)
}

func (reg *Registry) leaveLocked(s *Session) {
	room := s.room
	if room == nil {
		return
	}
	s.room = nil

	if room.leave(s) {
		delete(reg.rooms, room.name)
		logf(reg.cfg, "GAMES: Removed empty room %q", room.name)
	}
}
