package main

import (
	"sort"
	"sync"
)

// PlayerRecord holds the data we store server-side for one browser session.
// A record is created on first contact and never removed; deleting a player
// only clears its name and answer, keeping the identity slot.
type PlayerRecord struct {
	Identity  string
	Name      string
	Answer    string
	Score     int
	Active    bool
	TurnIndex int
}

// PlayerInfo is the presentation form of a record, used by the game view,
// the websocket feed and the edit form.
type PlayerInfo struct {
	Name      string `json:"name"`
	Answer    string `json:"answer,omitempty"`
	Score     int    `json:"score"`
	Active    bool   `json:"active"`
	TurnIndex int    `json:"turn"`
}

// Totals is the payload of the aggregate stream.
type Totals struct {
	TotalPlayers int `json:"total_players"`
	TotalAnswers int `json:"total_answers"`
}

// Snapshot is one consistent read of the whole game, taken under the read
// lock and safe to use after it is released.
type Snapshot struct {
	Players     []PlayerInfo `json:"players"`
	Answers     []PlayerInfo `json:"answers"`
	Totals      Totals       `json:"totals"`
	LockAnswers bool         `json:"lock_answers"`
	ShowAnswers bool         `json:"show_answers"`
	PlayerTurn  string       `json:"player_turn,omitempty"`
	Prompt      string       `json:"prompt,omitempty"`
}

// GameState is the single shared game. Handlers and feed goroutines all
// operate on the same instance; every method takes the lock itself, so one
// call is one serialized operation.
type GameState struct {
	mu sync.RWMutex

	records map[string]*PlayerRecord

	lockAnswers bool
	showAnswers bool

	currentTurn int    // index into the turn order, -1 before the first turn
	playerTurn  string // name the pointer last resolved to

	prompt string
}

func newGameState() *GameState {
	return &GameState{
		records:     make(map[string]*PlayerRecord),
		currentTurn: -1,
	}
}

// ensureRecordLocked returns the record for identity, creating it with
// defaults on first contact.
func (g *GameState) ensureRecordLocked(identity string) *PlayerRecord {
	if rec, ok := g.records[identity]; ok {
		return rec
	}
	rec := &PlayerRecord{
		Identity: identity,
		Active:   true,
	}
	g.records[identity] = rec
	return rec
}

// namedLocked returns all records that have joined (non-empty name),
// in unspecified order.
func (g *GameState) namedLocked() []*PlayerRecord {
	named := make([]*PlayerRecord, 0, len(g.records))
	for _, rec := range g.records {
		if rec.Name != "" {
			named = append(named, rec)
		}
	}
	return named
}

// PlayerView ensures a record exists for identity and returns its current
// name and answer, for rendering the join page.
func (g *GameState) PlayerView(identity string) (name, answer string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec := g.ensureRecordLocked(identity)
	return rec.Name, rec.Answer
}

// AnswerFor returns the current answer for identity. The second return is
// false when the identity has never been seen.
func (g *GameState) AnswerFor(identity string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rec, ok := g.records[identity]
	if !ok {
		return "", false
	}
	return rec.Answer, true
}

// Submit handles a join-page post: sets the answer and/or name for
// identity. While answers are locked the whole call is a no-op. A name
// submission always re-assigns the turn index, so renaming moves the
// player to the back of the turn order. A name already held by another
// identity is refused silently.
func (g *GameState) Submit(identity, name, answer string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.lockAnswers {
		return
	}

	rec := g.ensureRecordLocked(identity)

	if answer != "" {
		rec.Answer = answer
	}
	if name != "" {
		g.setNameLocked(rec, name)
	}
}

func (g *GameState) setNameLocked(rec *PlayerRecord, name string) {
	next := 0
	for _, other := range g.namedLocked() {
		if other != rec && other.Name == name {
			return
		}
		if other.TurnIndex >= next {
			next = other.TurnIndex + 1
		}
	}
	rec.Name = name
	rec.TurnIndex = next
}

// RenameAndRetime is the bulk-edit operation: the record currently named
// oldName gets newName and newTurnIndex. Unknown names are ignored.
func (g *GameState) RenameAndRetime(oldName, newName string, newTurnIndex int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, rec := range g.records {
		if rec.Name == oldName {
			rec.Name = newName
			rec.TurnIndex = newTurnIndex
			return
		}
	}
}

// SoftDelete clears the name and answer of the record named name. The
// record keeps its score and turn index but drops out of every listing.
func (g *GameState) SoftDelete(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, rec := range g.records {
		if rec.Name == name {
			rec.Name = ""
			rec.Answer = ""
			return
		}
	}
}

// ToggleLock flips the submission lock. Locking and revealing are one
// action: answers are shown exactly while submissions are locked.
func (g *GameState) ToggleLock() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lockAnswers = !g.lockAnswers
	g.showAnswers = g.lockAnswers
}

// ResetRound starts a fresh round: every record becomes active with its
// answer cleared, submissions unlock, answers hide, and the prompt resets.
// Scores, names and turn indices survive.
func (g *GameState) ResetRound() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, rec := range g.records {
		rec.Active = true
		rec.Answer = ""
	}
	g.lockAnswers = false
	g.showAnswers = false
	g.prompt = ""
}

// SetPrompt sets the round prompt shown to players and the game view.
func (g *GameState) SetPrompt(text string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prompt = text
}

// turnOrderLocked returns all named records ascending by turn index,
// including inactive ones so the pointer stays positioned relative to them.
func (g *GameState) turnOrderLocked() []*PlayerRecord {
	order := g.namedLocked()
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].TurnIndex < order[j].TurnIndex
	})
	return order
}

// Advance moves the turn pointer to the next active named player, wrapping
// around the order. With no active named players it leaves the pointer and
// the current player untouched. The pointer is positional into the freshly
// recomputed order, so roster changes between calls can shift whom it
// lands on.
func (g *GameState) Advance() {
	g.mu.Lock()
	defer g.mu.Unlock()

	order := g.turnOrderLocked()

	anyActive := false
	for _, rec := range order {
		if rec.Active {
			anyActive = true
			break
		}
	}
	if !anyActive {
		return
	}

	g.currentTurn++
	if g.currentTurn >= len(order) {
		g.currentTurn = 0
	}
	for !order[g.currentTurn].Active {
		g.currentTurn++
		if g.currentTurn >= len(order) {
			g.currentTurn = 0
		}
	}
	g.playerTurn = order[g.currentTurn].Name
}

// ActiveOrder returns the names of active named players ascending by turn
// index.
func (g *GameState) ActiveOrder() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := []string{}
	for _, rec := range g.turnOrderLocked() {
		if rec.Active {
			names = append(names, rec.Name)
		}
	}
	return names
}

// CurrentTurn returns the name the turn pointer last resolved to, empty
// before the first advance.
func (g *GameState) CurrentTurn() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.playerTurn
}

// IncreaseScore adds a point to the player named name; unknown names are
// ignored.
func (g *GameState) IncreaseScore(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, rec := range g.records {
		if rec.Name == name {
			rec.Score++
			return
		}
	}
}

// DecreaseScore removes a point from the player named name; unknown names
// are ignored.
func (g *GameState) DecreaseScore(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, rec := range g.records {
		if rec.Name == name {
			rec.Score--
			return
		}
	}
}

// awardPointLocked gives the current-turn player a point for knocking out
// a player or an answer.
func (g *GameState) awardPointLocked() {
	for _, rec := range g.records {
		if rec.Name != "" && rec.Name == g.playerTurn {
			rec.Score++
			return
		}
	}
}

// ToggleActive flips the active flag of the player named name. A
// deactivation (and only a deactivation) awards one point to the
// current-turn player.
func (g *GameState) ToggleActive(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	deactivated := false
	for _, rec := range g.records {
		if rec.Name == name {
			rec.Active = !rec.Active
			deactivated = !rec.Active
			break
		}
	}
	if deactivated {
		g.awardPointLocked()
	}
}

// ToggleAnswer flips the active flag of every record whose current answer
// matches text. At most one point goes to the current-turn player per
// call, however many records match.
func (g *GameState) ToggleAnswer(text string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	deactivated := false
	for _, rec := range g.records {
		if rec.Answer == text {
			rec.Active = !rec.Active
			if !rec.Active {
				deactivated = true
			}
		}
	}
	if deactivated {
		g.awardPointLocked()
	}
}

// Totals counts joined players and joined players with an answer, for the
// aggregate stream.
func (g *GameState) Totals() Totals {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.totalsLocked()
}

func (g *GameState) totalsLocked() Totals {
	var t Totals
	for _, rec := range g.records {
		if rec.Name == "" {
			continue
		}
		t.TotalPlayers++
		if rec.Answer != "" {
			t.TotalAnswers++
		}
	}
	return t
}

// Snapshot takes one consistent copy of the game for the moderator view
// and the websocket feed. Players are ordered by (active, score)
// descending, answers by active descending then answer text; ties keep
// turn-index order.
func (g *GameState) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := Snapshot{
		Players:     []PlayerInfo{},
		Answers:     []PlayerInfo{},
		Totals:      g.totalsLocked(),
		LockAnswers: g.lockAnswers,
		ShowAnswers: g.showAnswers,
		PlayerTurn:  g.playerTurn,
		Prompt:      g.prompt,
	}

	for _, rec := range g.turnOrderLocked() {
		info := PlayerInfo{
			Name:      rec.Name,
			Answer:    rec.Answer,
			Score:     rec.Score,
			Active:    rec.Active,
			TurnIndex: rec.TurnIndex,
		}
		snap.Players = append(snap.Players, info)
		if rec.Answer != "" {
			snap.Answers = append(snap.Answers, info)
		}
	}

	sort.SliceStable(snap.Players, func(i, j int) bool {
		a, b := snap.Players[i], snap.Players[j]
		if a.Active != b.Active {
			return a.Active
		}
		return a.Score > b.Score
	})
	sort.SliceStable(snap.Answers, func(i, j int) bool {
		a, b := snap.Answers[i], snap.Answers[j]
		if a.Active != b.Active {
			return a.Active
		}
		return a.Answer < b.Answer
	})

	return snap
}
