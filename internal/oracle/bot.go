package oracle

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/espoir/limitedjanken/internal/game"
)

// Resource valuation used by the bot when weighing trades. A star is worth
// roughly a third of survival; cards are cheap, money is face value.
const (
	starValue = 1_000_000
	cardValue = 150_000
)

// Profile tunes a bot's temperament.
type Profile struct {
	Aggression float64 `yaml:"aggression"` // 0.0-1.0: tendency to seek matches over trades
	Caution    float64 `yaml:"caution"`    // 0.0-1.0: reluctance to risk the last stars
	Greed      float64 `yaml:"greed"`      // 0.0-1.0: how hard a trade must favor the bot
}

// DefaultProfile is a middle-of-the-road temperament.
func DefaultProfile() Profile {
	return Profile{Aggression: 0.5, Caution: 0.5, Greed: 0.5}
}

// Bot is a deterministic rule-based oracle. Each player gets its own seeded
// generator derived from the bot seed and the player name, so a full run is
// reproducible for a given seed and roster.
type Bot struct {
	profile Profile
	seed    int64
	logger  *zap.Logger

	mu   sync.Mutex
	rngs map[string]*rand.Rand
}

// NewBot creates a bot oracle with the given temperament and seed.
func NewBot(profile Profile, seed int64, logger *zap.Logger) *Bot {
	return &Bot{
		profile: profile,
		seed:    seed,
		logger:  logger,
		rngs:    make(map[string]*rand.Rand),
	}
}

func (b *Bot) rng(player string) *rand.Rand {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.rngs[player]; ok {
		return r
	}
	h := fnv.New64a()
	h.Write([]byte(player))
	r := rand.New(rand.NewSource(b.seed ^ int64(h.Sum64())))
	b.rngs[player] = r
	return r
}

// Decide picks an action for the player's own turn.
func (b *Bot) Decide(_ context.Context, view game.PlayerView) (game.Action, error) {
	b.logger.Debug("bot deciding",
		zap.String("player", view.Name),
		zap.Int("stars", view.Stars),
		zap.Int("cards", view.TotalCards()))

	if view.TotalCards() == 0 && view.Stars >= 3 {
		return game.Action{
			Kind:      game.ActionDeclareOut,
			Reasoning: "Survival condition met: no cards left and enough stars.",
		}, nil
	}

	if len(view.Others) == 0 {
		return game.Action{Kind: game.ActionDoNothing, Reasoning: "No opponents left to interact with."}, nil
	}

	r := b.rng(view.Name)

	// Short on stars: try to buy one before risking a match.
	if view.Stars < 3 && view.Money >= starValue {
		target := richestInStars(view.Others)
		if target.Stars > 3 {
			return game.Action{
				Kind:   game.ActionProposeTrade,
				Target: target.Name,
				Terms: game.TradeTerms{
					Give:    game.ResourceBundle{Money: starValue},
					Receive: game.ResourceBundle{Stars: 1},
				},
				Reasoning:       fmt.Sprintf("Below survival threshold at %d stars; buying one from %s.", view.Stars, target.Name),
				PublicReasoning: "I will pay you well for a single star. You have spares.",
			}, nil
		}
	}

	if view.TotalCards() > 0 {
		// The clock forces card consumption: the fewer turns remain per card
		// held, the harder the bot pushes for matches.
		turnsLeft := view.MaxTurns - view.Turn
		pressure := 1.0
		if turnsLeft > 0 {
			pressure = float64(view.TotalCards()) / float64(turnsLeft)
		}
		hesitation := b.profile.Caution * (1 - b.profile.Aggression)
		if view.Stars <= 1 && r.Float64() < hesitation && pressure < 1 {
			return game.Action{
				Kind:      game.ActionDoNothing,
				Reasoning: "One star left; sitting this turn out rather than risking elimination.",
			}, nil
		}

		target := view.Others[r.Intn(len(view.Others))]
		card := pickCard(r, view)
		return game.Action{
			Kind:            game.ActionProposeMatch,
			Target:          target.Name,
			Card:            card,
			Reasoning:       fmt.Sprintf("Need to consume cards (%d left, %d turns remain).", view.TotalCards(), turnsLeft),
			PublicReasoning: "Let's settle this with a match.",
		}, nil
	}

	// No cards but short on stars: only a trade can save the game now.
	if view.Money > 0 {
		target := richestInStars(view.Others)
		return game.Action{
			Kind:   game.ActionProposeTrade,
			Target: target.Name,
			Terms: game.TradeTerms{
				Give:    game.ResourceBundle{Money: view.Money},
				Receive: game.ResourceBundle{Stars: 1},
			},
			Reasoning:       "Out of cards and below three stars; offering all cash for a star.",
			PublicReasoning: "Everything I have for one star. Final offer.",
		}, nil
	}

	return game.Action{Kind: game.ActionDoNothing, Reasoning: "Nothing left to play or trade."}, nil
}

// RespondToTrade weighs the proposal by resource valuation. Give is what the
// responder would gain, Receive what it would part with.
func (b *Bot) RespondToTrade(_ context.Context, view game.PlayerView, proposal game.TradeProposal) (game.TradeResponse, error) {
	gain := bundleValue(proposal.Terms.Give)
	cost := bundleValue(proposal.Terms.Receive)

	// Never sell below the survival line.
	if view.Stars-proposal.Terms.Receive.Stars < 3 && proposal.Terms.Receive.Stars > 0 {
		if !(view.TotalCards() == 0 && view.Stars-proposal.Terms.Receive.Stars >= 3) {
			return game.TradeResponse{
				Accept:    false,
				Reasoning: "Parting with that star would put my survival at risk.",
			}, nil
		}
	}

	margin := 1.0 + b.profile.Greed*0.5
	if float64(gain) >= float64(cost)*margin {
		return game.TradeResponse{
			Accept:    true,
			Reasoning: fmt.Sprintf("The terms favor me (%d gained vs %d given).", gain, cost),
		}, nil
	}
	return game.TradeResponse{
		Accept:    false,
		Reasoning: fmt.Sprintf("Not enough in it for me (%d gained vs %d given).", gain, cost),
	}, nil
}

// RespondToMatch accepts when the responder can afford to lose a star or
// must burn cards before time runs out.
func (b *Bot) RespondToMatch(_ context.Context, view game.PlayerView, proposal game.MatchProposal) (game.MatchResponse, error) {
	if view.TotalCards() == 0 {
		return game.MatchResponse{Accept: false, Reasoning: "No cards left to play."}, nil
	}

	r := b.rng(view.Name)
	turnsLeft := view.MaxTurns - view.Turn
	mustBurn := turnsLeft <= view.TotalCards()

	if view.Stars <= 1 && !mustBurn && r.Float64() < b.profile.Caution {
		return game.MatchResponse{
			Accept:    false,
			Reasoning: "One star left; a loss would eliminate me.",
		}, nil
	}

	return game.MatchResponse{
		Accept:    true,
		Card:      pickCard(r, view),
		Reasoning: fmt.Sprintf("Cards must be spent (%d left, %d turns remain).", view.TotalCards(), turnsLeft),
	}, nil
}

// Emotion produces a one-line mood from the player's standing.
func (b *Bot) Emotion(_ context.Context, view game.PlayerView) (string, error) {
	switch {
	case view.Stars <= 1:
		return "One star from the edge; every choice feels like a cliff.", nil
	case view.TotalCards() == 0 && view.Stars >= 3:
		return "The way out is open; calm, almost disbelieving relief.", nil
	case view.Stars >= 5:
		return "Holding more stars than needed; confident, hunting for profit.", nil
	default:
		return "Watchful and tense, counting cards and turns.", nil
	}
}

func bundleValue(b game.ResourceBundle) int {
	cards := b.Rock + b.Scissors + b.Paper
	return b.Stars*starValue + cards*cardValue + b.Money
}

func richestInStars(others []game.PublicPlayer) game.PublicPlayer {
	best := others[0]
	for _, o := range others[1:] {
		if o.Stars > best.Stars {
			best = o
		}
	}
	return best
}

func pickCard(r *rand.Rand, view game.PlayerView) game.CardType {
	counts := map[game.CardType]int{
		game.CardRock:     view.Rock,
		game.CardScissors: view.Scissors,
		game.CardPaper:    view.Paper,
	}
	var available []game.CardType
	for _, ct := range game.AllCardTypes {
		for i := 0; i < counts[ct]; i++ {
			available = append(available, ct)
		}
	}
	if len(available) == 0 {
		return game.CardRock
	}
	return available[r.Intn(len(available))]
}
