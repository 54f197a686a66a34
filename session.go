package main

import (
	"strings"

	"github.com/gorilla/websocket"
)

// Session is one connected peer: its socket, outbound queue, display name
// and current room. The room pointer is written only by the registry, and
// only on behalf of this session's own reader goroutine, so handlers may
// read it without further locking.
type Session struct {
	conn *websocket.Conn
	send chan any
	cfg  *Config
	reg  *Registry

	name string
	room *Room
}

func newSession(cfg *Config, reg *Registry, conn *websocket.Conn) *Session {
	return &Session{
		conn: conn,
		send: make(chan any, 8),
		cfg:  cfg,
		reg:  reg,
	}
}

func (s *Session) displayName() string {
	if s.name == "" {
		return "Player"
	}
	return s.name
}

// enqueue queues one outbound frame without blocking. A slow client whose
// queue is full loses the frame; the next full snapshot catches it up.
func (s *Session) enqueue(msg any) {
	select {
	case s.send <- msg:
	default:
	}
}

// handlers maps each inbound message type to its handler. Anything not
// listed here answers with an error to the sender alone.
var handlers = map[string]func(*Session, ClientMessage){
	"hello":       (*Session).handleHello,
	"room_create": (*Session).handleRoomCreate,
	"room_join":   (*Session).handleRoomJoin,
	"set_word":    (*Session).handleSetWord,
	"guess":       (*Session).handleGuess,
}

func (s *Session) dispatch(frame []byte) {
	msg, err := decodeClientMessage(frame)
	if err != nil {
		s.enqueue(errorMsg("Invalid JSON."))
		return
	}

	handler, ok := handlers[msg.Typ]
	if !ok {
		s.enqueue(errorMsg("Unknown message type."))
		return
	}

	handler(s, msg)
}

func (s *Session) handleHello(msg ClientMessage) {
	name := strings.TrimSpace(msg.Nazwa)
	if name == "" {
		name = "Player"
	}

	s.name = name

	s.enqueue(HelloOkMessage{
		Typ:       "hello_ok",
		Wiadomosc: "Welcome, " + name + ". Create a room (room_create) or join one (room_join).",
	})
}

func (s *Session) handleRoomCreate(msg ClientMessage) {
	if !strings.EqualFold(strings.TrimSpace(msg.Gra), gameName) {
		s.enqueue(errorMsg("This server only hosts gra='" + gameName + "'."))
		return
	}

	room, err := s.reg.createRoom(strings.TrimSpace(msg.Room), s)
	switch err {
	case nil:
	case errRoomNameEmpty:
		s.enqueue(errorMsg("Missing room name."))
		return
	case errRoomExists:
		s.enqueue(errorMsg("Room already exists."))
		return
	default:
		s.enqueue(errorMsg(err.Error()))
		return
	}

	s.enqueue(RoomOkMessage{
		Typ:       "room_ok",
		Room:      room.name,
		Wiadomosc: "Room created and joined.",
	})

	room.reset()
}

func (s *Session) handleRoomJoin(msg ClientMessage) {
	room, err := s.reg.joinRoom(strings.TrimSpace(msg.Room), s)
	if err != nil {
		s.enqueue(errorMsg("No such room."))
		return
	}

	s.enqueue(RoomOkMessage{
		Typ:       "room_ok",
		Room:      room.name,
		Wiadomosc: "Joined the room.",
	})

	room.reset()
}

func (s *Session) handleSetWord(msg ClientMessage) {
	room := s.room
	if room == nil {
		s.enqueue(errorMsg("You are not in a room."))
		return
	}

	room.setWord(s, msg.Slowo)
}

func (s *Session) handleGuess(msg ClientMessage) {
	room := s.room
	if room == nil {
		s.enqueue(errorMsg("You are not in a room."))
		return
	}

	room.guessLetter(s, msg.Litera)
}

// readPump drives the session: one frame decoded and handled to completion
// at a time. A read error of any kind means the peer is gone, which removes
// the session from its room and ends the writer.
func (s *Session) readPump() {
	defer func() {
		s.reg.removeMember(s)
		close(s.send)
		_ = s.conn.Close()
	}()

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		s.dispatch(frame)
	}
}

func (s *Session) writePump() {
	defer s.conn.Close()

	for msg := range s.send {
		if err := s.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
