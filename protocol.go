package main

import "encoding/json"

// The wire protocol is one JSON object per websocket text frame, with a
// mandatory "typ" field selecting the message. Field names follow the
// original Polish client vocabulary and are part of the protocol.

// gameName is the only game this server hosts; room_create must ask for it.
const gameName = "wisielec"

// ClientMessage is the single inbound envelope.
type ClientMessage struct {
	Typ    string `json:"typ"`              // "hello", "room_create", "room_join", "set_word", "guess"
	Nazwa  string `json:"nazwa,omitempty"`  // hello: display name
	Gra    string `json:"gra,omitempty"`    // room_create: requested game, must be "wisielec"
	Room   string `json:"room,omitempty"`   // room_create / room_join
	Slowo  string `json:"slowo,omitempty"`  // set_word: the secret word
	Litera string `json:"litera,omitempty"` // guess: a single letter
}

// InfoMessage carries free-form informational text.
type InfoMessage struct {
	Typ       string `json:"typ"` // "info"
	Wiadomosc string `json:"wiadomosc"`
}

// ErrorMessage is only ever sent to the offending client, never broadcast.
type ErrorMessage struct {
	Typ       string `json:"typ"` // "error"
	Wiadomosc string `json:"wiadomosc"`
}

type HelloOkMessage struct {
	Typ       string `json:"typ"` // "hello_ok"
	Wiadomosc string `json:"wiadomosc"`
}

type RoomOkMessage struct {
	Typ       string `json:"typ"` // "room_ok"
	Room      string `json:"room"`
	Wiadomosc string `json:"wiadomosc"`
}

// RoleMessage tells one member their current role after any reset.
type RoleMessage struct {
	Typ  string `json:"typ"`  // "role"
	Rola string `json:"rola"` // "ustawiacz", "zgadujacy" or "obserwator"
}

// GameStartMessage announces a new round to the whole room.
type GameStartMessage struct {
	Typ       string `json:"typ"` // "game_start"
	Maska     string `json:"maska"`
	MaxBledow int    `json:"maxBledow"`
}

// StateMessage is a full snapshot, always broadcast room-wide; clients never
// need to reconcile deltas.
type StateMessage struct {
	Typ       string   `json:"typ"` // "state"
	Maska     string   `json:"maska"`
	Bledy     int      `json:"bledy"`
	MaxBledow int      `json:"maxBledow"`
	Uzyte     []string `json:"uzyte"`
}

// EndMessage closes a round, revealing the word.
type EndMessage struct {
	Typ     string `json:"typ"` // "end"
	Wygrana bool   `json:"wygrana"`
	Slowo   string `json:"slowo"`
}

func infoMsg(text string) InfoMessage {
	return InfoMessage{Typ: "info", Wiadomosc: text}
}

func errorMsg(text string) ErrorMessage {
	return ErrorMessage{Typ: "error", Wiadomosc: text}
}

// decodeClientMessage parses one inbound frame. A frame that is not a JSON
// object, or whose "typ" is not a string, fails to decode; the caller answers
// with a parse error and keeps the connection open.
func decodeClientMessage(frame []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		return ClientMessage{}, err
	}

	return msg, nil
}
