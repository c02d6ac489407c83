package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubOracle lets each test script the boundary's behavior per call.
type stubOracle struct {
	decide  func(view PlayerView) (Action, error)
	trade   func(view PlayerView, proposal TradeProposal) (TradeResponse, error)
	match   func(view PlayerView, proposal MatchProposal) (MatchResponse, error)
	emotion func(view PlayerView) (string, error)
}

func (s *stubOracle) Decide(_ context.Context, view PlayerView) (Action, error) {
	if s.decide == nil {
		return Action{Kind: ActionDoNothing, Reasoning: "stub"}, nil
	}
	return s.decide(view)
}

func (s *stubOracle) RespondToTrade(_ context.Context, view PlayerView, proposal TradeProposal) (TradeResponse, error) {
	if s.trade == nil {
		return TradeResponse{Accept: false, Reasoning: "stub"}, nil
	}
	return s.trade(view, proposal)
}

func (s *stubOracle) RespondToMatch(_ context.Context, view PlayerView, proposal MatchProposal) (MatchResponse, error) {
	if s.match == nil {
		return MatchResponse{Accept: false, Reasoning: "stub"}, nil
	}
	return s.match(view, proposal)
}

func (s *stubOracle) Emotion(_ context.Context, view PlayerView) (string, error) {
	if s.emotion == nil {
		return "", nil
	}
	return s.emotion(view)
}

func testSettings() Settings {
	s := DefaultSettings()
	s.ExpectedPlayers = 0 // rosters vary per test
	return s
}

func newTestGame(t *testing.T, oracle Oracle, names ...string) *Game {
	t.Helper()
	if oracle == nil {
		oracle = &stubOracle{}
	}
	roster := make([]PlayerConfig, 0, len(names))
	for _, name := range names {
		roster = append(roster, PlayerConfig{Name: name})
	}
	g, err := New(testSettings(), roster, oracle, zap.NewNop())
	require.NoError(t, err)
	return g
}

// totals sums the conserved resources across the given players.
func totals(players ...*Player) (stars, rock, scissors, paper, money int) {
	for _, p := range players {
		stars += p.Stars
		rock += p.Cards[CardRock]
		scissors += p.Cards[CardScissors]
		paper += p.Cards[CardPaper]
		money += p.Money
	}
	return
}
