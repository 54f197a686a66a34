package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return newRegistry(&Config{})
}

// newTestSession builds a session with no socket behind it; handlers only
// ever touch the send queue, so the dispatch layer can be driven directly.
func newTestSession(reg *Registry) *Session {
	return &Session{
		send: make(chan any, 64),
		cfg:  reg.cfg,
		reg:  reg,
	}
}

func drainFrames(s *Session) []any {
	var out []any
	for {
		select {
		case msg := <-s.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func send(t *testing.T, s *Session, frame string) {
	t.Helper()
	s.dispatch([]byte(frame))
}

func TestCreateRoomAssignsSetter(t *testing.T) {
	reg := newTestRegistry()
	a := newTestSession(reg)

	send(t, a, `{"typ":"room_create","gra":"wisielec","room":"r1"}`)

	room := a.room
	require.NotNil(t, room)
	assert.Equal(t, "r1", room.name)
	assert.Equal(t, a, room.setter)
	assert.Nil(t, room.guesser)
	assert.False(t, room.active)

	frames := drainFrames(a)
	require.Len(t, frames, 4)
	assert.Equal(t, RoomOkMessage{Typ: "room_ok", Room: "r1", Wiadomosc: "Room created and joined."}, frames[0])
	assert.Equal(t, RoleMessage{Typ: "role", Rola: "ustawiacz"}, frames[1])
	assert.Equal(t, infoMsg("Your role: setter. Set a word (set_word)."), frames[2])
	assert.Equal(t, StateMessage{Typ: "state", Maska: "_", Bledy: 0, MaxBledow: 8, Uzyte: []string{}}, frames[3])
}

func TestJoinAssignsGuesser(t *testing.T) {
	reg := newTestRegistry()
	a := newTestSession(reg)
	b := newTestSession(reg)

	send(t, a, `{"typ":"room_create","gra":"wisielec","room":"r1"}`)
	drainFrames(a)

	send(t, b, `{"typ":"room_join","room":"r1"}`)

	room := a.room
	require.NotNil(t, room)
	assert.Equal(t, room, b.room)
	assert.Equal(t, a, room.setter)
	assert.Equal(t, b, room.guesser)

	bFrames := drainFrames(b)
	require.Len(t, bFrames, 4)
	assert.Equal(t, RoomOkMessage{Typ: "room_ok", Room: "r1", Wiadomosc: "Joined the room."}, bFrames[0])
	assert.Equal(t, RoleMessage{Typ: "role", Rola: "zgadujacy"}, bFrames[1])
	assert.Equal(t, infoMsg("Your role: guesser. Waiting for a word."), bFrames[2])
	assert.Equal(t, StateMessage{Typ: "state", Maska: "_", Bledy: 0, MaxBledow: 8, Uzyte: []string{}}, bFrames[3])

	// The setter sees the reset too, but keeps their role.
	aFrames := drainFrames(a)
	require.Len(t, aFrames, 3)
	assert.Equal(t, RoleMessage{Typ: "role", Rola: "ustawiacz"}, aFrames[0])
}

func TestThirdMemberObserves(t *testing.T) {
	reg := newTestRegistry()
	a := newTestSession(reg)
	b := newTestSession(reg)
	c := newTestSession(reg)

	send(t, a, `{"typ":"room_create","gra":"wisielec","room":"r1"}`)
	send(t, b, `{"typ":"room_join","room":"r1"}`)
	send(t, c, `{"typ":"room_join","room":"r1"}`)

	frames := drainFrames(c)
	require.NotEmpty(t, frames)
	assert.Equal(t, RoleMessage{Typ: "role", Rola: "obserwator"}, frames[1])
}

func TestFullRoundScenario(t *testing.T) {
	reg := newTestRegistry()
	a := newTestSession(reg)
	b := newTestSession(reg)

	send(t, a, `{"typ":"room_create","gra":"wisielec","room":"r1"}`)
	send(t, b, `{"typ":"room_join","room":"r1"}`)
	drainFrames(a)
	drainFrames(b)

	send(t, a, `{"typ":"set_word","slowo":"CAT"}`)

	for _, s := range []*Session{a, b} {
		frames := drainFrames(s)
		require.Len(t, frames, 2)
		assert.Equal(t, GameStartMessage{Typ: "game_start", Maska: "_ _ _", MaxBledow: 8}, frames[0])
		assert.Equal(t, StateMessage{Typ: "state", Maska: "_ _ _", Bledy: 0, MaxBledow: 8, Uzyte: []string{}}, frames[1])
	}

	send(t, b, `{"typ":"guess","litera":"C"}`)

	for _, s := range []*Session{a, b} {
		frames := drainFrames(s)
		require.Len(t, frames, 1)
		assert.Equal(t, StateMessage{Typ: "state", Maska: "C _ _", Bledy: 0, MaxBledow: 8, Uzyte: []string{"C"}}, frames[0])
	}

	send(t, b, `{"typ":"guess","litera":"Z"}`)

	for _, s := range []*Session{a, b} {
		frames := drainFrames(s)
		require.Len(t, frames, 1)
		assert.Equal(t, StateMessage{Typ: "state", Maska: "C _ _", Bledy: 1, MaxBledow: 8, Uzyte: []string{"C", "Z"}}, frames[0])
	}

	send(t, b, `{"typ":"guess","litera":"A"}`)
	drainFrames(a)
	drainFrames(b)

	send(t, b, `{"typ":"guess","litera":"T"}`)

	aFrames := drainFrames(a)
	bFrames := drainFrames(b)

	require.NotEmpty(t, aFrames)
	require.NotEmpty(t, bFrames)
	assert.Equal(t, EndMessage{Typ: "end", Wygrana: true, Slowo: "CAT"}, aFrames[0])
	assert.Equal(t, EndMessage{Typ: "end", Wygrana: true, Slowo: "CAT"}, bFrames[0])

	// Roles swap after the round: the former setter guesses next.
	assert.Equal(t, RoleMessage{Typ: "role", Rola: "zgadujacy"}, aFrames[1])
	assert.Equal(t, RoleMessage{Typ: "role", Rola: "ustawiacz"}, bFrames[1])

	room := a.room
	assert.Equal(t, b, room.setter)
	assert.Equal(t, a, room.guesser)
	assert.False(t, room.active)
	assert.Empty(t, room.secret)
}

func TestSetWordWithoutGuesser(t *testing.T) {
	reg := newTestRegistry()
	a := newTestSession(reg)

	send(t, a, `{"typ":"room_create","gra":"wisielec","room":"r2"}`)
	drainFrames(a)

	send(t, a, `{"typ":"set_word","slowo":"DOG"}`)

	frames := drainFrames(a)
	require.Len(t, frames, 1)
	assert.Equal(t, errorMsg("No second player in the room."), frames[0])

	assert.False(t, a.room.active)
	assert.Empty(t, a.room.secret)
}

func TestSetWordRejectsInvalidWords(t *testing.T) {
	reg := newTestRegistry()
	a := newTestSession(reg)
	b := newTestSession(reg)

	send(t, a, `{"typ":"room_create","gra":"wisielec","room":"r1"}`)
	send(t, b, `{"typ":"room_join","room":"r1"}`)
	drainFrames(a)
	drainFrames(b)

	send(t, a, `{"typ":"set_word","slowo":"   "}`)
	frames := drainFrames(a)
	require.Len(t, frames, 1)
	assert.Equal(t, errorMsg("The word must not be empty."), frames[0])

	send(t, a, `{"typ":"set_word","slowo":"C4T"}`)
	frames = drainFrames(a)
	require.Len(t, frames, 1)
	assert.Equal(t, errorMsg("The word may contain only A-Z and spaces."), frames[0])

	// Invalid attempts must not leak to the other member.
	assert.Empty(t, drainFrames(b))
	assert.False(t, a.room.active)
}

func TestSetWordOnlyBySetter(t *testing.T) {
	reg := newTestRegistry()
	a := newTestSession(reg)
	b := newTestSession(reg)

	send(t, a, `{"typ":"room_create","gra":"wisielec","room":"r1"}`)
	send(t, b, `{"typ":"room_join","room":"r1"}`)
	drainFrames(a)
	drainFrames(b)

	send(t, b, `{"typ":"set_word","slowo":"CAT"}`)

	frames := drainFrames(b)
	require.Len(t, frames, 1)
	assert.Equal(t, errorMsg("Only the setter may set the word."), frames[0])
	assert.Empty(t, drainFrames(a))
}

func TestGuessBeforeWordAndByWrongRole(t *testing.T) {
	reg := newTestRegistry()
	a := newTestSession(reg)
	b := newTestSession(reg)

	send(t, a, `{"typ":"room_create","gra":"wisielec","room":"r1"}`)
	send(t, b, `{"typ":"room_join","room":"r1"}`)
	drainFrames(a)
	drainFrames(b)

	send(t, b, `{"typ":"guess","litera":"A"}`)
	frames := drainFrames(b)
	require.Len(t, frames, 1)
	assert.Equal(t, errorMsg("The round has not started yet (waiting for a word)."), frames[0])

	send(t, a, `{"typ":"set_word","slowo":"CAT"}`)
	drainFrames(a)
	drainFrames(b)

	send(t, a, `{"typ":"guess","litera":"A"}`)
	frames = drainFrames(a)
	require.Len(t, frames, 1)
	assert.Equal(t, errorMsg("Only the guesser may guess letters."), frames[0])
	assert.Empty(t, drainFrames(b))
}

func TestGuessRejectsMalformedLetters(t *testing.T) {
	reg := newTestRegistry()
	a := newTestSession(reg)
	b := newTestSession(reg)

	send(t, a, `{"typ":"room_create","gra":"wisielec","room":"r1"}`)
	send(t, b, `{"typ":"room_join","room":"r1"}`)
	send(t, a, `{"typ":"set_word","slowo":"CAT"}`)
	drainFrames(a)
	drainFrames(b)

	for _, litera := range []string{"", "AB", "5", "Ó"} {
		send(t, b, `{"typ":"guess","litera":"`+litera+`"}`)
		frames := drainFrames(b)
		require.Len(t, frames, 1, "litera %q", litera)
		assert.Equal(t, errorMsg("Provide a single letter A-Z."), frames[0])
	}

	assert.Empty(t, drainFrames(a))
	assert.Equal(t, 0, b.room.errors)
}

func TestGuessIdempotence(t *testing.T) {
	reg := newTestRegistry()
	a := newTestSession(reg)
	b := newTestSession(reg)

	send(t, a, `{"typ":"room_create","gra":"wisielec","room":"r1"}`)
	send(t, b, `{"typ":"room_join","room":"r1"}`)
	send(t, a, `{"typ":"set_word","slowo":"CAT"}`)
	send(t, b, `{"typ":"guess","litera":"Z"}`)
	drainFrames(a)
	drainFrames(b)

	room := b.room
	require.Equal(t, 1, room.errors)

	send(t, b, `{"typ":"guess","litera":"Z"}`)

	assert.Equal(t, 1, room.errors)
	assert.Len(t, room.guessed, 1)

	// The caller gets the current snapshot back; nobody else hears about it.
	frames := drainFrames(b)
	require.Len(t, frames, 1)
	assert.Equal(t, StateMessage{Typ: "state", Maska: "_ _ _", Bledy: 1, MaxBledow: 8, Uzyte: []string{"Z"}}, frames[0])
	assert.Empty(t, drainFrames(a))
}

func TestLossAfterMaxErrors(t *testing.T) {
	reg := newTestRegistry()
	a := newTestSession(reg)
	b := newTestSession(reg)

	send(t, a, `{"typ":"room_create","gra":"wisielec","room":"r1"}`)
	send(t, b, `{"typ":"room_join","room":"r1"}`)
	send(t, a, `{"typ":"set_word","slowo":"CAT"}`)
	drainFrames(a)
	drainFrames(b)

	room := b.room
	for _, litera := range []string{"B", "D", "E", "F", "G", "H", "I", "J"} {
		send(t, b, `{"typ":"guess","litera":"`+litera+`"}`)
	}

	bFrames := drainFrames(b)
	var end *EndMessage
	for _, f := range bFrames {
		if e, ok := f.(EndMessage); ok {
			end = &e
			break
		}
	}
	require.NotNil(t, end)
	assert.Equal(t, EndMessage{Typ: "end", Wygrana: false, Slowo: "CAT"}, *end)

	// Loss also swaps roles and resets the round.
	assert.Equal(t, b, room.setter)
	assert.Equal(t, a, room.guesser)
	assert.False(t, room.active)
}

func TestWinTakesPriorityOverLoss(t *testing.T) {
	reg := newTestRegistry()
	a := newTestSession(reg)
	b := newTestSession(reg)

	room := newRoom(reg.cfg, "r1")
	room.add(a)
	room.add(b)
	drainFrames(a)
	drainFrames(b)

	// Error budget already spent; only one letter still hidden.
	room.secret = "CAT"
	room.guessed = guessedSet('C', 'A')
	room.errors = room.maxErrors
	room.active = true

	room.guessLetter(b, "T")

	frames := drainFrames(b)
	require.NotEmpty(t, frames)
	assert.Equal(t, EndMessage{Typ: "end", Wygrana: true, Slowo: "CAT"}, frames[0])
}

func TestLeaveReassignsRoles(t *testing.T) {
	reg := newTestRegistry()
	a := newTestSession(reg)
	b := newTestSession(reg)
	c := newTestSession(reg)

	send(t, a, `{"typ":"room_create","gra":"wisielec","room":"r1"}`)
	send(t, b, `{"typ":"room_join","room":"r1"}`)
	send(t, c, `{"typ":"room_join","room":"r1"}`)
	drainFrames(a)
	drainFrames(b)
	drainFrames(c)

	room := a.room
	reg.removeMember(b)

	assert.Equal(t, a, room.setter)
	assert.Equal(t, c, room.guesser)
	assert.Len(t, room.members, 2)

	aFrames := drainFrames(a)
	require.NotEmpty(t, aFrames)
	assert.Equal(t, infoMsg("Someone left. Roles have been reassigned."), aFrames[0])

	cFrames := drainFrames(c)
	require.True(t, len(cFrames) >= 2)
	assert.Equal(t, RoleMessage{Typ: "role", Rola: "zgadujacy"}, cFrames[1])
}

func TestSetterLeavingMidRoundAbandonsRound(t *testing.T) {
	reg := newTestRegistry()
	a := newTestSession(reg)
	b := newTestSession(reg)
	c := newTestSession(reg)

	send(t, a, `{"typ":"room_create","gra":"wisielec","room":"r1"}`)
	send(t, b, `{"typ":"room_join","room":"r1"}`)
	send(t, c, `{"typ":"room_join","room":"r1"}`)
	send(t, a, `{"typ":"set_word","slowo":"CAT"}`)
	drainFrames(b)
	drainFrames(c)

	room := a.room
	require.True(t, room.active)

	reg.removeMember(a)

	assert.False(t, room.active)
	assert.Empty(t, room.secret)
	assert.Equal(t, b, room.setter)
	assert.Equal(t, c, room.guesser)
}
