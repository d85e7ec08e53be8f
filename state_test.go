package main

import (
	"testing"
)

func join(g *GameState, identity, name string) {
	g.Submit(identity, name, "")
}

func snapshotPlayer(t *testing.T, g *GameState, name string) PlayerInfo {
	t.Helper()
	for _, p := range g.Snapshot().Players {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("player %q not in snapshot", name)
	return PlayerInfo{}
}

func TestJoinAssignsIncreasingTurnIndexes(t *testing.T) {
	g := newGameState()
	join(g, "id-a", "A")
	join(g, "id-b", "B")
	join(g, "id-c", "C")

	for name, want := range map[string]int{"A": 0, "B": 1, "C": 2} {
		if got := snapshotPlayer(t, g, name).TurnIndex; got != want {
			t.Fatalf("turn index of %s = %d, want %d", name, got, want)
		}
	}
}

func TestRejoinMovesPlayerToBack(t *testing.T) {
	g := newGameState()
	join(g, "id-a", "A")
	join(g, "id-b", "B")

	// Resubmitting a name always reassigns the turn slot.
	join(g, "id-a", "A2")

	if got := snapshotPlayer(t, g, "A2").TurnIndex; got != 2 {
		t.Fatalf("turn index after rename = %d, want 2", got)
	}
}

func TestDuplicateNameIsRefused(t *testing.T) {
	g := newGameState()
	join(g, "id-a", "A")
	join(g, "id-b", "A")

	snap := g.Snapshot()
	if got := len(snap.Players); got != 1 {
		t.Fatalf("players after duplicate join = %d, want 1", got)
	}

	// The refused identity can still join under another name.
	join(g, "id-b", "B")
	if got := snapshotPlayer(t, g, "B").TurnIndex; got != 1 {
		t.Fatalf("turn index of B = %d, want 1", got)
	}
}

func TestAdvanceRotatesAndWraps(t *testing.T) {
	g := newGameState()
	join(g, "id-a", "A")
	join(g, "id-b", "B")
	join(g, "id-c", "C")

	want := []string{"A", "B", "C", "A"}
	for i, name := range want {
		g.Advance()
		if got := g.CurrentTurn(); got != name {
			t.Fatalf("turn after advance %d = %q, want %q", i+1, got, name)
		}
	}
}

func TestAdvanceSkipsInactivePlayers(t *testing.T) {
	g := newGameState()
	join(g, "id-a", "A")
	join(g, "id-b", "B")
	join(g, "id-c", "C")

	g.ToggleActive("B")

	want := []string{"A", "C", "A", "C"}
	for i, name := range want {
		g.Advance()
		if got := g.CurrentTurn(); got != name {
			t.Fatalf("turn after advance %d = %q, want %q", i+1, got, name)
		}
	}
}

func TestAdvanceNoopWithoutActivePlayers(t *testing.T) {
	g := newGameState()

	g.Advance()
	if got := g.CurrentTurn(); got != "" {
		t.Fatalf("turn with empty roster = %q, want empty", got)
	}

	join(g, "id-a", "A")
	join(g, "id-b", "B")
	g.Advance()
	g.ToggleActive("A")
	g.ToggleActive("B")

	g.Advance()
	if got := g.CurrentTurn(); got != "A" {
		t.Fatalf("turn after advancing a fully inactive roster = %q, want unchanged %q", got, "A")
	}
}

func TestDeactivationAwardsPointToCurrentTurn(t *testing.T) {
	g := newGameState()
	join(g, "id-a", "A")
	join(g, "id-b", "B")
	join(g, "id-c", "C")

	g.Advance() // A's turn

	g.ToggleActive("B")
	if got := snapshotPlayer(t, g, "A").Score; got != 1 {
		t.Fatalf("A score after deactivating B = %d, want 1", got)
	}

	order := g.ActiveOrder()
	if len(order) != 2 || order[0] != "A" || order[1] != "C" {
		t.Fatalf("active order = %v, want [A C]", order)
	}

	// Reactivation must not award anything.
	g.ToggleActive("B")
	if got := snapshotPlayer(t, g, "A").Score; got != 1 {
		t.Fatalf("A score after reactivating B = %d, want 1", got)
	}

	// A second deactivation edge awards again.
	g.ToggleActive("B")
	if got := snapshotPlayer(t, g, "A").Score; got != 2 {
		t.Fatalf("A score after second deactivation = %d, want 2", got)
	}
}

func TestToggleAnswerAwardsOnePointPerCall(t *testing.T) {
	g := newGameState()
	g.Submit("id-a", "A", "")
	g.Submit("id-b", "B", "blue")
	g.Submit("id-c", "C", "blue")

	g.Advance() // A's turn

	g.ToggleAnswer("blue")

	if got := snapshotPlayer(t, g, "A").Score; got != 1 {
		t.Fatalf("A score after batch answer knockout = %d, want 1", got)
	}
	for _, name := range []string{"B", "C"} {
		if snapshotPlayer(t, g, name).Active {
			t.Fatalf("%s still active after answer knockout", name)
		}
	}
}

func TestToggleAnswerUnknownTextIsNoop(t *testing.T) {
	g := newGameState()
	g.Submit("id-a", "A", "red")
	g.Advance()

	g.ToggleAnswer("blue")

	if got := snapshotPlayer(t, g, "A").Score; got != 0 {
		t.Fatalf("A score after unmatched knockout = %d, want 0", got)
	}
}

func TestLockGatesSubmissionsAndRevealsAnswers(t *testing.T) {
	g := newGameState()
	g.Submit("id-a", "A", "red")

	g.ToggleLock()

	snap := g.Snapshot()
	if !snap.LockAnswers || !snap.ShowAnswers {
		t.Fatalf("flags after lock = lock:%v show:%v, want both true", snap.LockAnswers, snap.ShowAnswers)
	}

	// Submissions are silently ignored while locked.
	g.Submit("id-a", "", "green")
	g.Submit("id-b", "B", "")

	snap = g.Snapshot()
	if got := snapshotPlayer(t, g, "A").Answer; got != "red" {
		t.Fatalf("answer changed while locked: %q", got)
	}
	if got := len(snap.Players); got != 1 {
		t.Fatalf("players joined while locked: %d, want 1", got)
	}

	g.ToggleLock()
	snap = g.Snapshot()
	if snap.LockAnswers || snap.ShowAnswers {
		t.Fatalf("flags after unlock = lock:%v show:%v, want both false", snap.LockAnswers, snap.ShowAnswers)
	}
}

func TestResetRoundKeepsScoresAndNames(t *testing.T) {
	g := newGameState()
	g.Submit("id-a", "A", "red")
	g.Submit("id-b", "B", "blue")
	g.Advance()
	g.ToggleActive("B") // A scores, B out
	g.ToggleLock()
	g.SetPrompt("favorite color?")

	g.ResetRound()

	snap := g.Snapshot()
	if snap.LockAnswers || snap.ShowAnswers {
		t.Fatalf("lock flags survived reset: lock:%v show:%v", snap.LockAnswers, snap.ShowAnswers)
	}
	if snap.Prompt != "" {
		t.Fatalf("prompt survived reset: %q", snap.Prompt)
	}
	if got := len(snap.Answers); got != 0 {
		t.Fatalf("answers survived reset: %d", got)
	}

	a := snapshotPlayer(t, g, "A")
	b := snapshotPlayer(t, g, "B")
	if a.Score != 1 {
		t.Fatalf("A score after reset = %d, want 1", a.Score)
	}
	if !b.Active {
		t.Fatalf("B still inactive after reset")
	}
	if a.TurnIndex != 0 || b.TurnIndex != 1 {
		t.Fatalf("turn indexes after reset = %d, %d, want 0, 1", a.TurnIndex, b.TurnIndex)
	}
}

func TestSoftDeleteOrphansTheRecord(t *testing.T) {
	g := newGameState()
	g.Submit("id-a", "A", "red")
	g.Submit("id-b", "B", "blue")

	g.SoftDelete("A")

	snap := g.Snapshot()
	if got := len(snap.Players); got != 1 {
		t.Fatalf("players after delete = %d, want 1", got)
	}
	if got := len(snap.Answers); got != 1 {
		t.Fatalf("answers after delete = %d, want 1", got)
	}

	// Score mutation by the deleted name is a silent no-op.
	g.IncreaseScore("A")
	g.DecreaseScore("A")
	if got := snapshotPlayer(t, g, "B").Score; got != 0 {
		t.Fatalf("B score affected by no-op mutations: %d", got)
	}
}

func TestRenameAndRetime(t *testing.T) {
	g := newGameState()
	join(g, "id-a", "A")
	join(g, "id-b", "B")

	g.RenameAndRetime("A", "Z", 9)

	p := snapshotPlayer(t, g, "Z")
	if p.TurnIndex != 9 {
		t.Fatalf("turn index after retime = %d, want 9", p.TurnIndex)
	}

	// Unknown old name is ignored.
	g.RenameAndRetime("missing", "X", 1)
	if got := len(g.Snapshot().Players); got != 2 {
		t.Fatalf("players after no-op rename = %d, want 2", got)
	}
}

func TestScoreAdjustments(t *testing.T) {
	g := newGameState()
	join(g, "id-a", "A")

	g.IncreaseScore("A")
	g.IncreaseScore("A")
	g.DecreaseScore("A")

	if got := snapshotPlayer(t, g, "A").Score; got != 1 {
		t.Fatalf("score = %d, want 1", got)
	}

	// Scores may go negative.
	g.DecreaseScore("A")
	g.DecreaseScore("A")
	if got := snapshotPlayer(t, g, "A").Score; got != -1 {
		t.Fatalf("score = %d, want -1", got)
	}
}

func TestTotalsCountJoinedAndAnswered(t *testing.T) {
	g := newGameState()
	g.Submit("id-a", "A", "red")
	g.Submit("id-b", "B", "blue")
	g.Submit("id-c", "C", "")
	g.PlayerView("id-lurker") // contact without joining

	totals := g.Totals()
	if totals.TotalPlayers != 3 || totals.TotalAnswers != 2 {
		t.Fatalf("totals = %+v, want 3 players, 2 answers", totals)
	}
}

func TestAnswerFor(t *testing.T) {
	g := newGameState()
	g.Submit("id-a", "A", "red")

	answer, known := g.AnswerFor("id-a")
	if !known || answer != "red" {
		t.Fatalf("AnswerFor(id-a) = %q, %v, want \"red\", true", answer, known)
	}

	if _, known := g.AnswerFor("id-stranger"); known {
		t.Fatalf("unknown identity reported as known")
	}
}

func TestSnapshotOrdering(t *testing.T) {
	g := newGameState()
	g.Submit("id-a", "A", "zebra")
	g.Submit("id-b", "B", "apple")
	g.Submit("id-c", "C", "mango")

	g.IncreaseScore("B")
	g.ToggleActive("C")

	snap := g.Snapshot()

	// Players: active first, then score descending.
	wantPlayers := []string{"B", "A", "C"}
	for i, name := range wantPlayers {
		if snap.Players[i].Name != name {
			t.Fatalf("players order = %v, want %v", snap.Players, wantPlayers)
		}
	}

	// Answers: active first, then alphabetical.
	wantAnswers := []string{"apple", "zebra", "mango"}
	for i, text := range wantAnswers {
		if snap.Answers[i].Answer != text {
			t.Fatalf("answers order = %v, want %v", snap.Answers, wantAnswers)
		}
	}
}
