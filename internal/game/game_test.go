package game

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewGameValidation(t *testing.T) {
	_, err := New(testSettings(), []PlayerConfig{{Name: "solo"}}, &stubOracle{}, zap.NewNop())
	assert.Error(t, err, "at least two players required")

	_, err = New(testSettings(), []PlayerConfig{{Name: "x"}, {Name: "x"}}, &stubOracle{}, zap.NewNop())
	assert.Error(t, err, "duplicate names rejected")

	_, err = New(testSettings(), []PlayerConfig{{Name: "a"}, {Name: "b"}}, nil, zap.NewNop())
	assert.Error(t, err, "oracle required")
}

func TestProgressTurnDoNothing(t *testing.T) {
	g := newTestGame(t, nil, "a", "b", "c")

	g.ProgressTurn(context.Background())

	assert.Equal(t, 1, g.CurrentTurn())
	assert.False(t, g.Over())
	for _, name := range []string{"a", "b", "c"} {
		p := g.Player(name)
		assert.True(t, p.IsActive())
		assert.Equal(t, 3, p.Stars)
		assert.Equal(t, 12, p.TotalCards())
	}
}

// Scenario D: the oracle fails on decide; the turn resolves as do_nothing
// with no state mutation and a logged failure reason.
func TestProgressTurnOracleDecideFailure(t *testing.T) {
	oracle := &stubOracle{
		decide: func(view PlayerView) (Action, error) {
			return Action{}, errors.New("connection reset")
		},
	}
	g := newTestGame(t, oracle, "a", "b")

	g.ProgressTurn(context.Background())

	a := g.Player("a")
	assert.True(t, a.IsActive())
	assert.Equal(t, 3, a.Stars)
	assert.Equal(t, 12, a.TotalCards())

	var found bool
	for _, entry := range a.ActionLog() {
		if entry.Turn == 1 && entry.Message == "Action failed due to API error. Defaulting to 'do_nothing'." {
			found = true
		}
	}
	assert.True(t, found, "failure reason must be recorded in the action log")
}

// Scenario C: the turn counter reaches max_turns with players still active;
// all of them time out and the game ends.
func TestTimeLimitEliminatesActivePlayers(t *testing.T) {
	oracle := &stubOracle{}
	roster := []PlayerConfig{{Name: "a"}, {Name: "b"}}
	settings := testSettings()
	settings.MaxTurns = 2
	g, err := New(settings, roster, oracle, zap.NewNop())
	require.NoError(t, err)

	g.ProgressTurn(context.Background())
	assert.False(t, g.Over())

	g.ProgressTurn(context.Background())
	assert.True(t, g.Over())
	assert.Equal(t, StatusEliminatedTimeOut, g.Player("a").Status)
	assert.Equal(t, StatusEliminatedTimeOut, g.Player("b").Status)
}

func TestProgressTurnAfterGameOverIsNoOp(t *testing.T) {
	settings := testSettings()
	settings.MaxTurns = 1
	g, err := New(settings, []PlayerConfig{{Name: "a"}, {Name: "b"}}, &stubOracle{}, zap.NewNop())
	require.NoError(t, err)

	g.ProgressTurn(context.Background())
	require.True(t, g.Over())
	turn := g.CurrentTurn()

	g.ProgressTurn(context.Background())
	assert.Equal(t, turn, g.CurrentTurn(), "turn counter must not advance after game over")
}

func TestCheckGameEndIdempotent(t *testing.T) {
	settings := testSettings()
	settings.MaxTurns = 1
	g, err := New(settings, []PlayerConfig{{Name: "a"}, {Name: "b"}}, &stubOracle{}, zap.NewNop())
	require.NoError(t, err)

	g.ProgressTurn(context.Background())
	require.True(t, g.Over())
	standings := g.FinalStandings()

	for i := 0; i < 3; i++ {
		assert.True(t, g.CheckGameEnd())
	}
	assert.Equal(t, standings, g.FinalStandings(), "repeated checks must not mutate")
}

func TestCheckGameEndNoActivePlayers(t *testing.T) {
	g := newTestGame(t, nil, "a", "b")
	g.Player("a").UpdateStatus(1, StatusOutSuccess, "")
	g.Player("b").UpdateStatus(1, StatusEliminatedNoStar, "")

	assert.True(t, g.CheckGameEnd())
	assert.True(t, g.Over())
	// Already-terminal statuses are untouched.
	assert.Equal(t, StatusOutSuccess, g.Player("a").Status)
	assert.Equal(t, StatusEliminatedNoStar, g.Player("b").Status)
}

func TestCheckGameEndLastPlayerStanding(t *testing.T) {
	t.Run("fails survival condition", func(t *testing.T) {
		g := newTestGame(t, nil, "a", "b", "c")
		g.Player("b").UpdateStatus(1, StatusEliminatedNoStar, "")
		g.Player("c").UpdateStatus(1, StatusEliminatedNoStar, "")

		assert.True(t, g.CheckGameEnd())
		assert.Equal(t, StatusEliminatedTimeOut, g.Player("a").Status)
	})

	t.Run("meets survival condition", func(t *testing.T) {
		g := newTestGame(t, nil, "a", "b", "c")
		g.Player("b").UpdateStatus(1, StatusEliminatedNoStar, "")
		g.Player("c").UpdateStatus(1, StatusEliminatedNoStar, "")
		a := g.Player("a")
		a.Cards[CardRock] = 0
		a.Cards[CardScissors] = 0
		a.Cards[CardPaper] = 0

		assert.True(t, g.CheckGameEnd())
		assert.Equal(t, StatusOutSuccess, a.Status)
	})
}

func TestDeclareOutOfGame(t *testing.T) {
	tests := []struct {
		name       string
		stars      int
		cards      int
		wantStatus PlayerStatus
	}{
		{"meets conditions", 3, 0, StatusOutSuccess},
		{"too few stars", 2, 0, StatusActive},
		{"cards remain", 5, 1, StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t, nil, "a", "b", "c")
			a := g.Player("a")
			a.Stars = tt.stars
			a.Cards[CardRock] = tt.cards
			a.Cards[CardScissors] = 0
			a.Cards[CardPaper] = 0

			g.handleAction(context.Background(), a, Action{Kind: ActionDeclareOut, Reasoning: "leaving"})
			assert.Equal(t, tt.wantStatus, a.Status)
		})
	}
}

func TestHandleActionInvalidTradeTarget(t *testing.T) {
	g := newTestGame(t, nil, "a", "b")
	a := g.Player("a")

	for _, target := range []string{"nobody", "a", ""} {
		g.handleAction(context.Background(), a, Action{
			Kind:   ActionProposeTrade,
			Target: target,
			Terms:  TradeTerms{Give: ResourceBundle{Rock: 1}},
		})
	}

	assert.Equal(t, 4, a.Cards[CardRock])
	log := a.ActionLog()
	require.Len(t, log, 3)
	for _, entry := range log {
		assert.Contains(t, entry.Message, "failed (target inactive/invalid)")
	}
}

// An elimination mid-turn must be visible to later activations in the same
// turn: the eliminated player is skipped and cannot be a valid target.
func TestMidTurnEliminationObservedByLaterActions(t *testing.T) {
	var bActed bool
	oracle := &stubOracle{
		decide: func(view PlayerView) (Action, error) {
			switch view.Name {
			case "a":
				// a knocks b out: b has one star and always loses.
				return Action{Kind: ActionProposeMatch, Target: "b", Card: CardRock}, nil
			case "b":
				bActed = true
			}
			return Action{Kind: ActionDoNothing}, nil
		},
		match: func(view PlayerView, _ MatchProposal) (MatchResponse, error) {
			return MatchResponse{Accept: true, Card: CardScissors}, nil
		},
	}
	g := newTestGame(t, oracle, "a", "b", "c")
	g.Player("b").Stars = 1

	g.ProgressTurn(context.Background())

	assert.Equal(t, StatusEliminatedNoStar, g.Player("b").Status)
	assert.False(t, bActed, "an eliminated player must not act later in the same turn")
	assert.False(t, g.Over(), "two players remain active")
}

func TestTurnOrderShuffledIsDeterministic(t *testing.T) {
	run := func() []string {
		var activations []string
		oracle := &stubOracle{
			decide: func(view PlayerView) (Action, error) {
				activations = append(activations, view.Name)
				return Action{Kind: ActionDoNothing}, nil
			},
		}
		settings := testSettings()
		settings.TurnOrder = TurnOrderShuffled
		settings.ShuffleSeed = 42
		g, err := New(settings, []PlayerConfig{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}, oracle, zap.NewNop())
		require.NoError(t, err)
		g.ProgressTurn(context.Background())
		g.ProgressTurn(context.Background())
		return activations
	}

	first := run()
	second := run()
	assert.Equal(t, first, second, "same seed must give the same activation order")
	assert.Len(t, first, 8)
}

func TestEmotionRefresh(t *testing.T) {
	oracle := &stubOracle{
		emotion: func(view PlayerView) (string, error) {
			return "quietly terrified", nil
		},
	}
	g := newTestGame(t, oracle, "a", "b")

	g.ProgressTurn(context.Background())

	a := g.Player("a")
	assert.Equal(t, "quietly terrified", a.CurrentEmotion)
	log := a.ActionLog()
	require.NotEmpty(t, log)
	assert.Contains(t, log[0].Message, "Update Current Emotion")
}

func TestEmotionFailureIgnored(t *testing.T) {
	oracle := &stubOracle{
		emotion: func(PlayerView) (string, error) {
			return "", errors.New("boundary down")
		},
	}
	g := newTestGame(t, oracle, "a", "b")

	g.ProgressTurn(context.Background())
	assert.Empty(t, g.Player("a").CurrentEmotion)
	assert.False(t, g.Over())
}

func TestDashboardInfo(t *testing.T) {
	g := newTestGame(t, nil, "a", "b", "c")
	g.Player("c").UpdateStatus(0, StatusEliminatedNoStar, "")
	g.Player("a").Cards[CardRock] = 1

	d := g.DashboardInfo()
	assert.Equal(t, 2, d.AliveUsers)
	assert.Equal(t, 24*10, d.RemainMinutes)
	assert.Equal(t, 5, d.AllRockCards, "eliminated players' cards are not counted")
	assert.Equal(t, 8, d.AllScissorsCards)
	assert.Equal(t, 8, d.AllPaperCards)
}

func TestViewHidesPrivateInfo(t *testing.T) {
	g := newTestGame(t, nil, "a", "b")
	g.Player("b").Money = 999

	view, ok := g.View("a")
	require.True(t, ok)
	require.Len(t, view.Others, 1)
	assert.Equal(t, "b", view.Others[0].Name)
	assert.Equal(t, 3, view.Others[0].Stars)

	_, ok = g.View("nobody")
	assert.False(t, ok)
}

func TestTranscriptMergesByTurn(t *testing.T) {
	g := newTestGame(t, nil, "a", "b")
	g.currentTurn = 1
	g.Player("b").appendLog(1, "b turn one")
	g.Player("a").appendLog(1, "a turn one")
	g.currentTurn = 2
	g.Player("a").appendLog(2, "a turn two")

	records := g.Transcript()
	require.Len(t, records, 3)
	// Turn groups in order; roster order within a turn.
	assert.Equal(t, TranscriptRecord{Turn: 1, Player: "a", Message: "a turn one"}, records[0])
	assert.Equal(t, TranscriptRecord{Turn: 1, Player: "b", Message: "b turn one"}, records[1])
	assert.Equal(t, TranscriptRecord{Turn: 2, Player: "a", Message: "a turn two"}, records[2])
}

func TestStatusLabelsOverride(t *testing.T) {
	settings := testSettings()
	settings.StatusLabels = map[PlayerStatus]string{StatusOutSuccess: "SURVIVED"}
	g, err := New(settings, []PlayerConfig{{Name: "a"}, {Name: "b"}}, &stubOracle{}, zap.NewNop())
	require.NoError(t, err)

	g.Player("a").UpdateStatus(1, StatusOutSuccess, "")
	standings := g.FinalStandings()
	assert.Equal(t, "SURVIVED", standings[0].Status)
	assert.Equal(t, "ACTIVE", standings[1].Status)
}
