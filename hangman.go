// Gibbet hangman server
//
// Two-player word guessing over websockets, with any number of named rooms
// multiplexed over a single endpoint:
// - One websocket endpoint for all rooms: /wisielec/ws
// - One JSON object per text frame, selected by a "typ" field
// - First member of a room sets the word (ustawiacz), second guesses
//   letters (zgadujacy); everyone else observes
// - Full state snapshots broadcast to the whole room after every change
// - Errors are only ever sent to the offending client
// - Roles swap after every round, win or lose
// - Rooms are destroyed as soon as their last member disconnects
// - In-browser QR share links for a room, backed by go-qrcode

package main

import (
	"log"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveHangman upgrades the connection and runs the session until the peer
// disconnects.
func serveHangman(cfg *Config, reg *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		logf(cfg, "GAMES: New connection from %s", realIP(r))

		sess := newSession(cfg, reg, conn)

		go sess.writePump()

		sess.enqueue(infoMsg(`Connected. Send hello: {"typ":"hello","nazwa":"..."}.`))

		sess.readPump()
	}
}

// qrHandler generates a PNG QR code pointing at the websocket endpoint, with
// the room name attached so clients can prefill it.
func qrHandler(cfg *Config, path string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		roomName := ps.ByName("room")
		if roomName == "" {
			http.Error(w, "missing room name", http.StatusBadRequest)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "ws"
		if r.TLS != nil {
			scheme = "wss"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
			scheme = "wss"
		}

		target := scheme + "://" + r.Host + cfg.prefix + path + "/ws?room=" + url.QueryEscape(roomName)

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// registerHangmanGame sets up routes so that:
//   - $path/ws           → websocket endpoint shared by all rooms
//   - $path/qr/:room     → PNG QR code with a join link for that room
func registerHangmanGame(cfg *Config, path string, mux *httprouter.Router) {
	reg := newRegistry(cfg)

	mux.GET(cfg.prefix+path+"/ws", serveHangman(cfg, reg))

	mux.GET(cfg.prefix+path+"/qr/:room", qrHandler(cfg, path))
}
