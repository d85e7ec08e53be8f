// Quizbox trivia round
//
// One shared room. Each browser gets a cookie identity on first contact,
// then submits a display name and a free-text answer for the current
// prompt. The moderator view drives the round: lock submissions (which
// reveals the answers), advance the turn, score, knock out players or
// answers, and reset for the next prompt.
//
// Features:
// - Players identified by cookie (playerID)
// - Name submission places the player at the back of the turn order
// - Locking submissions and revealing answers are a single toggle
// - Knocking out a player or an answer scores the current-turn player
// - Aggregate and per-player SSE feeds, one event per tick
// - Websocket snapshot feed for live moderator views
// - In-browser QR to share the join URL, backed by go-qrcode

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const playerCookieName = "quizbox_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

func redirectTo(cfg *Config, w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, cfg.prefix+path, http.StatusSeeOther)
}

func serveJoinPage(cfg *Config, g *GameState) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		identity := getOrSetPlayerID(w, r)
		name, answer := g.PlayerView(identity)
		snap := g.Snapshot()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		renderJoinPage(w, cfg, name, answer, snap.Prompt, snap.LockAnswers)
	}
}

func submitJoin(cfg *Config, g *GameState) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		identity := getOrSetPlayerID(w, r)

		name := r.FormValue("name")
		answer := r.FormValue("answer")
		g.Submit(identity, name, answer)

		if name != "" {
			logf(cfg, "GAMES: Player %q submitted from %s", name, realIP(r))
		}

		redirectTo(cfg, w, r, "/")
	}
}

func serveGamePage(cfg *Config, g *GameState) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		renderGamePage(w, cfg, g.Snapshot())
	}
}

func serveEditPlayers(cfg *Config, g *GameState) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		renderEditPage(w, cfg, editList(g.Snapshot()))
	}
}

func submitEditPlayers(cfg *Config, g *GameState) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		for _, player := range editList(g.Snapshot()) {
			newName := r.FormValue("new_" + player.Name)
			newTurn := r.FormValue("new_turn_" + player.Name)
			if newName == "" || newTurn == "" {
				continue
			}

			turn, err := strconv.Atoi(newTurn)
			if err != nil {
				http.Error(w, "invalid turn index", http.StatusBadRequest)
				return
			}

			g.RenameAndRetime(player.Name, newName, turn)
		}

		redirectTo(cfg, w, r, "/edit_players")
	}
}

func deletePlayer(cfg *Config, g *GameState) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		name := r.URL.Query().Get("player_name")
		if name == "" {
			http.Error(w, "missing player_name", http.StatusBadRequest)
			return
		}

		g.SoftDelete(name)
		logf(cfg, "GAMES: Player %q deleted", name)

		redirectTo(cfg, w, r, "/edit_players")
	}
}

func clearRound(cfg *Config, g *GameState) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		g.ResetRound()
		logf(cfg, "GAMES: Round reset")

		redirectTo(cfg, w, r, "/game")
	}
}

func toggleLock(cfg *Config, g *GameState) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		g.ToggleLock()

		redirectTo(cfg, w, r, "/game")
	}
}

func nextTurn(cfg *Config, g *GameState) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		g.Advance()
		logf(cfg, "GAMES: Turn advanced to %q", g.CurrentTurn())

		redirectTo(cfg, w, r, "/game")
	}
}

func adjustScore(cfg *Config, g *GameState, delta int) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		name := r.URL.Query().Get("player_name")
		if name == "" {
			http.Error(w, "missing player_name", http.StatusBadRequest)
			return
		}

		if delta > 0 {
			g.IncreaseScore(name)
		} else {
			g.DecreaseScore(name)
		}

		redirectTo(cfg, w, r, "/game")
	}
}

func togglePlayerActive(cfg *Config, g *GameState) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		name := r.URL.Query().Get("player_name")
		if name == "" {
			http.Error(w, "missing player_name", http.StatusBadRequest)
			return
		}

		g.ToggleActive(name)

		redirectTo(cfg, w, r, "/game")
	}
}

func toggleAnswerActive(cfg *Config, g *GameState) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		answer := r.URL.Query().Get("answer_name")
		if answer == "" {
			http.Error(w, "missing answer_name", http.StatusBadRequest)
			return
		}

		g.ToggleAnswer(answer)

		redirectTo(cfg, w, r, "/game")
	}
}

func setPrompt(cfg *Config, g *GameState) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		g.SetPrompt(r.FormValue("prompt"))

		redirectTo(cfg, w, r, "/game")
	}
}

func sseHeaders(w http.ResponseWriter) http.Flusher {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, _ := w.(http.Flusher)
	return flusher
}

// serveTotalsStream pushes the aggregate counts once per tick, for as long
// as the client stays connected. Snapshots are taken fresh each tick; a new
// subscriber only ever sees state from after it connected.
func serveTotalsStream(cfg *Config, g *GameState) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		flusher := sseHeaders(w)
		if flusher == nil {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		ticker := time.NewTicker(cfg.tickInterval)
		defer ticker.Stop()

		for {
			payload, err := json.Marshal(g.Totals())
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()

			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
			}
		}
	}
}

// serveAnswerStream pushes the caller's current answer once per tick. For
// an identity with no record the stream ends immediately.
func serveAnswerStream(cfg *Config, g *GameState) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		identity := getOrSetPlayerID(w, r)

		flusher := sseHeaders(w)
		if flusher == nil {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		ticker := time.NewTicker(cfg.tickInterval)
		defer ticker.Stop()

		for {
			answer, known := g.AnswerFor(identity)
			if !known {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", answer); err != nil {
				return
			}
			flusher.Flush()

			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveGameSocket pushes a full game snapshot as one JSON frame per tick,
// for live moderator views.
func serveGameSocket(cfg *Config, g *GameState) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "GAMES: Websocket upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(cfg.tickInterval)
		defer ticker.Stop()

		for {
			if err := conn.WriteJSON(g.Snapshot()); err != nil {
				return
			}

			select {
			case <-closed:
				return
			case <-r.Context().Done():
				return
			case <-ticker.C:
			}
		}
	}
}

// qrHandler generates a PNG QR code for the join URL using go-qrcode.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + cfg.prefix + "/"

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// registerTriviaGame wires the join page, moderator routes and live feeds
// onto the router.
func registerTriviaGame(cfg *Config, g *GameState, mux *httprouter.Router) {
	mux.GET(cfg.prefix+"/", serveJoinPage(cfg, g))
	mux.POST(cfg.prefix+"/", submitJoin(cfg, g))

	mux.GET(cfg.prefix+"/game", serveGamePage(cfg, g))

	mux.GET(cfg.prefix+"/edit_players", serveEditPlayers(cfg, g))
	mux.POST(cfg.prefix+"/edit_players", submitEditPlayers(cfg, g))
	mux.POST(cfg.prefix+"/delete_player", deletePlayer(cfg, g))

	mux.GET(cfg.prefix+"/clear", clearRound(cfg, g))
	mux.GET(cfg.prefix+"/toggle_lock", toggleLock(cfg, g))
	mux.GET(cfg.prefix+"/next", nextTurn(cfg, g))

	mux.POST(cfg.prefix+"/increase_score", adjustScore(cfg, g, 1))
	mux.POST(cfg.prefix+"/decrease_score", adjustScore(cfg, g, -1))
	mux.POST(cfg.prefix+"/toggle_active", togglePlayerActive(cfg, g))
	mux.POST(cfg.prefix+"/toggle_answer", toggleAnswerActive(cfg, g))
	mux.POST(cfg.prefix+"/set_prompt", setPrompt(cfg, g))

	mux.GET(cfg.prefix+"/total_answers_stream", serveTotalsStream(cfg, g))
	mux.GET(cfg.prefix+"/session_answers_stream", serveAnswerStream(cfg, g))
	mux.GET(cfg.prefix+"/game/ws", serveGameSocket(cfg, g))

	mux.GET(cfg.prefix+"/qr", qrHandler(cfg))
}

// editList orders a snapshot's players by turn index for the edit form.
func editList(snap Snapshot) []PlayerInfo {
	players := snap.Players
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].TurnIndex < players[j].TurnIndex
	})
	return players
}
