package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/espoir/limitedjanken/internal/game"
)

func testView() game.PlayerView {
	return game.PlayerView{
		Name:     "Kaiji",
		Stars:    3,
		Rock:     4,
		Scissors: 4,
		Paper:    4,
		Money:    3_000_000,
		Turn:     5,
		MaxTurns: 24,
		Others: []game.PublicPlayer{
			{Name: "Ando", Stars: 2},
			{Name: "Furuhata", Stars: 4},
		},
	}
}

func TestBotDeclaresOutWhenSurvived(t *testing.T) {
	bot := NewBot(DefaultProfile(), 1, zap.NewNop())
	view := testView()
	view.Rock, view.Scissors, view.Paper = 0, 0, 0

	action, err := bot.Decide(context.Background(), view)
	require.NoError(t, err)
	assert.Equal(t, game.ActionDeclareOut, action.Kind)
}

func TestBotDoesNothingWithoutOpponents(t *testing.T) {
	bot := NewBot(DefaultProfile(), 1, zap.NewNop())
	view := testView()
	view.Others = nil

	action, err := bot.Decide(context.Background(), view)
	require.NoError(t, err)
	assert.Equal(t, game.ActionDoNothing, action.Kind)
}

func TestBotBuysStarWhenShort(t *testing.T) {
	bot := NewBot(DefaultProfile(), 1, zap.NewNop())
	view := testView()
	view.Stars = 2

	action, err := bot.Decide(context.Background(), view)
	require.NoError(t, err)
	assert.Equal(t, game.ActionProposeTrade, action.Kind)
	assert.Equal(t, "Furuhata", action.Target, "targets the player with spare stars")
	assert.Equal(t, 1, action.Terms.Receive.Stars)
	assert.GreaterOrEqual(t, view.Money, action.Terms.Give.Money)
}

func TestBotProposesMatchWithCards(t *testing.T) {
	bot := NewBot(Profile{Aggression: 1, Caution: 0, Greed: 0.5}, 1, zap.NewNop())
	view := testView()

	action, err := bot.Decide(context.Background(), view)
	require.NoError(t, err)
	assert.Equal(t, game.ActionProposeMatch, action.Kind)
	assert.NotEmpty(t, action.Target)
}

func TestBotOffersAllCashWhenOutOfCards(t *testing.T) {
	bot := NewBot(DefaultProfile(), 1, zap.NewNop())
	view := testView()
	view.Stars = 2
	view.Rock, view.Scissors, view.Paper = 0, 0, 0
	view.Money = 500_000 // below the star price, so the buy branch is skipped

	action, err := bot.Decide(context.Background(), view)
	require.NoError(t, err)
	assert.Equal(t, game.ActionProposeTrade, action.Kind)
	assert.Equal(t, 500_000, action.Terms.Give.Money)
	assert.Equal(t, 1, action.Terms.Receive.Stars)
}

func TestBotDecideIsDeterministic(t *testing.T) {
	run := func() []game.Action {
		bot := NewBot(DefaultProfile(), 7, zap.NewNop())
		var actions []game.Action
		for i := 0; i < 10; i++ {
			view := testView()
			view.Turn = i + 1
			a, err := bot.Decide(context.Background(), view)
			require.NoError(t, err)
			actions = append(actions, a)
		}
		return actions
	}

	assert.Equal(t, run(), run(), "same seed and inputs must give the same decisions")
}

func TestBotRespondToTrade(t *testing.T) {
	bot := NewBot(DefaultProfile(), 1, zap.NewNop())
	ctx := context.Background()

	t.Run("accepts favorable terms", func(t *testing.T) {
		resp, err := bot.RespondToTrade(ctx, testView(), game.TradeProposal{
			Proposer: "Ando",
			Terms: game.TradeTerms{
				Give:    game.ResourceBundle{Money: 2_000_000},
				Receive: game.ResourceBundle{Rock: 1},
			},
		})
		require.NoError(t, err)
		assert.True(t, resp.Accept)
	})

	t.Run("rejects unfavorable terms", func(t *testing.T) {
		resp, err := bot.RespondToTrade(ctx, testView(), game.TradeProposal{
			Proposer: "Ando",
			Terms: game.TradeTerms{
				Give:    game.ResourceBundle{Money: 100},
				Receive: game.ResourceBundle{Stars: 1},
			},
		})
		require.NoError(t, err)
		assert.False(t, resp.Accept)
	})

	t.Run("never sells below the survival line", func(t *testing.T) {
		view := testView()
		view.Stars = 3
		resp, err := bot.RespondToTrade(ctx, view, game.TradeProposal{
			Proposer: "Ando",
			Terms: game.TradeTerms{
				Give:    game.ResourceBundle{Money: 10_000_000},
				Receive: game.ResourceBundle{Stars: 1},
			},
		})
		require.NoError(t, err)
		assert.False(t, resp.Accept)
	})

	t.Run("sells spare stars above the line", func(t *testing.T) {
		view := testView()
		view.Stars = 5
		resp, err := bot.RespondToTrade(ctx, view, game.TradeProposal{
			Proposer: "Ando",
			Terms: game.TradeTerms{
				Give:    game.ResourceBundle{Money: 2_000_000},
				Receive: game.ResourceBundle{Stars: 1},
			},
		})
		require.NoError(t, err)
		assert.True(t, resp.Accept)
	})
}

func TestBotRespondToMatch(t *testing.T) {
	bot := NewBot(DefaultProfile(), 1, zap.NewNop())
	ctx := context.Background()

	t.Run("rejects without cards", func(t *testing.T) {
		view := testView()
		view.Rock, view.Scissors, view.Paper = 0, 0, 0
		resp, err := bot.RespondToMatch(ctx, view, game.MatchProposal{Proposer: "Ando"})
		require.NoError(t, err)
		assert.False(t, resp.Accept)
	})

	t.Run("accepts and picks a held card", func(t *testing.T) {
		view := testView()
		view.Rock, view.Scissors = 0, 0
		resp, err := bot.RespondToMatch(ctx, view, game.MatchProposal{Proposer: "Ando"})
		require.NoError(t, err)
		require.True(t, resp.Accept)
		assert.Equal(t, game.CardPaper, resp.Card, "only paper remains")
	})

	t.Run("accepts when time forces card burn", func(t *testing.T) {
		view := testView()
		view.Stars = 1
		view.Turn = 23 // one turn left, twelve cards held
		resp, err := bot.RespondToMatch(ctx, view, game.MatchProposal{Proposer: "Ando"})
		require.NoError(t, err)
		assert.True(t, resp.Accept)
	})
}

func TestBotEmotion(t *testing.T) {
	bot := NewBot(DefaultProfile(), 1, zap.NewNop())
	ctx := context.Background()

	view := testView()
	view.Stars = 1
	emotion, err := bot.Emotion(ctx, view)
	require.NoError(t, err)
	assert.NotEmpty(t, emotion)

	calm := testView()
	calm.Rock, calm.Scissors, calm.Paper = 0, 0, 0
	other, err := bot.Emotion(ctx, calm)
	require.NoError(t, err)
	assert.NotEqual(t, emotion, other, "mood tracks standing")
}
