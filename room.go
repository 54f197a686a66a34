package main

import (
	"sort"
	"strings"
	"sync"
)

const defaultMaxErrors = 8

// Room owns one game's state: its members in join order, the two role
// holders, and the current round. Every mutation happens under mu, so a room
// is never observed half-updated by a concurrent connection.
type Room struct {
	name string
	cfg  *Config

	mu        sync.Mutex
	members   []*Session
	setter    *Session
	guesser   *Session
	active    bool
	secret    string
	guessed   map[rune]bool
	errors    int
	maxErrors int
}

func newRoom(cfg *Config, name string) *Room {
	return &Room{
		name:      name,
		cfg:       cfg,
		guessed:   make(map[rune]bool),
		maxErrors: defaultMaxErrors,
	}
}

// add appends a member and hands out a free role. The caller follows up with
// reset() to announce roles and the blank board.
func (room *Room) add(s *Session) {
	room.mu.Lock()
	defer room.mu.Unlock()

	for _, m := range room.members {
		if m == s {
			return
		}
	}

	room.members = append(room.members, s)

	if room.setter == nil {
		room.setter = s
	} else if room.guesser == nil && s != room.setter {
		room.guesser = s
	}

	logf(room.cfg, "GAMES: %q joined room %q", s.displayName(), room.name)
}

// leave removes a member and reports whether the room is now empty (the
// registry then destroys it). Leaving twice is a no-op. If members remain,
// roles are reassigned from the head of the member list and a fresh round
// is announced.
func (room *Room) leave(s *Session) bool {
	room.mu.Lock()
	defer room.mu.Unlock()

	found := false
	dst := room.members[:0]
	for _, m := range room.members {
		if m == s {
			found = true
			continue
		}
		dst = append(dst, m)
	}
	room.members = dst

	if !found {
		return false
	}

	if room.setter == s {
		room.setter = nil
	}
	if room.guesser == s {
		room.guesser = nil
	}

	if len(room.members) == 0 {
		return true
	}

	room.setter = room.members[0]
	room.guesser = nil
	for _, m := range room.members[1:] {
		if m != room.setter {
			room.guesser = m
			break
		}
	}

	room.broadcastLocked(infoMsg("Someone left. Roles have been reassigned."))
	room.resetLocked()

	return false
}

// reset abandons any round in progress and re-announces roles and a blank
// board to everyone.
func (room *Room) reset() {
	room.mu.Lock()
	defer room.mu.Unlock()

	room.resetLocked()
}

func (room *Room) resetLocked() {
	room.active = false
	room.secret = ""
	room.guessed = make(map[rune]bool)
	room.errors = 0
	room.maxErrors = defaultMaxErrors

	if room.setter == nil && len(room.members) > 0 {
		room.setter = room.members[0]
	}
	if room.guesser == nil {
		for _, m := range room.members {
			if m != room.setter {
				room.guesser = m
				break
			}
		}
	}

	for _, m := range room.members {
		switch m {
		case room.setter:
			m.enqueue(RoleMessage{Typ: "role", Rola: "ustawiacz"})
		case room.guesser:
			m.enqueue(RoleMessage{Typ: "role", Rola: "zgadujacy"})
		default:
			m.enqueue(RoleMessage{Typ: "role", Rola: "obserwator"})
		}
	}

	if room.setter != nil {
		room.setter.enqueue(infoMsg("Your role: setter. Set a word (set_word)."))
	}
	if room.guesser != nil {
		room.guesser.enqueue(infoMsg("Your role: guesser. Waiting for a word."))
	}

	room.broadcastLocked(StateMessage{
		Typ:       "state",
		Maska:     "_",
		Bledy:     0,
		MaxBledow: room.maxErrors,
		Uzyte:     []string{},
	})
}

// setWord starts a round. Only the setter may call it, and only once a
// guesser exists; all failures are reported to the caller alone.
func (room *Room) setWord(s *Session, raw string) {
	room.mu.Lock()
	defer room.mu.Unlock()

	if s != room.setter {
		s.enqueue(errorMsg("Only the setter may set the word."))
		return
	}

	if room.guesser == nil {
		s.enqueue(errorMsg("No second player in the room."))
		return
	}

	word := strings.ToUpper(strings.TrimSpace(raw))
	if word == "" {
		s.enqueue(errorMsg("The word must not be empty."))
		return
	}

	if !isValidWord(word) {
		s.enqueue(errorMsg("The word may contain only A-Z and spaces."))
		return
	}

	room.secret = word
	room.guessed = make(map[rune]bool)
	room.errors = 0
	room.maxErrors = defaultMaxErrors
	room.active = true

	logf(room.cfg, "GAMES: %q set a %d-letter word in room %q", s.displayName(), len(word), room.name)

	room.broadcastLocked(GameStartMessage{
		Typ:       "game_start",
		Maska:     mask(room.secret, room.guessed),
		MaxBledow: room.maxErrors,
	})

	room.broadcastLocked(room.stateLocked())
}

// guessLetter scores one guess. A repeated letter is an idempotent no-op
// answered with the current snapshot. A letter that completes the word on the
// final allowed error still counts as a win.
func (room *Room) guessLetter(s *Session, raw string) {
	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.active {
		s.enqueue(errorMsg("The round has not started yet (waiting for a word)."))
		return
	}

	if s != room.guesser {
		s.enqueue(errorMsg("Only the guesser may guess letters."))
		return
	}

	letter := strings.ToUpper(strings.TrimSpace(raw))
	if !isValidLetter(letter) {
		s.enqueue(errorMsg("Provide a single letter A-Z."))
		return
	}

	l := []rune(letter)[0]

	if room.guessed[l] {
		s.enqueue(room.stateLocked())
		return
	}

	room.guessed[l] = true

	if !strings.ContainsRune(room.secret, l) {
		room.errors++
	}

	switch {
	case isSolved(room.secret, room.guessed):
		room.endRoundLocked(true)
	case room.errors >= room.maxErrors:
		room.endRoundLocked(false)
	default:
		room.broadcastLocked(room.stateLocked())
	}
}

func (room *Room) endRoundLocked(won bool) {
	logf(room.cfg, "GAMES: Round over in room %q (guesser won: %t)", room.name, won)

	room.broadcastLocked(EndMessage{
		Typ:     "end",
		Wygrana: won,
		Slowo:   room.secret,
	})

	room.setter, room.guesser = room.guesser, room.setter

	room.resetLocked()
}

func (room *Room) stateLocked() StateMessage {
	letters := make([]string, 0, len(room.guessed))
	for l := range room.guessed {
		letters = append(letters, string(l))
	}
	sort.Strings(letters)

	return StateMessage{
		Typ:       "state",
		Maska:     mask(room.secret, room.guessed),
		Bledy:     room.errors,
		MaxBledow: room.maxErrors,
		Uzyte:     letters,
	}
}

func (room *Room) broadcastLocked(msg any) {
	for _, m := range room.members {
		m.enqueue(msg)
	}
}
