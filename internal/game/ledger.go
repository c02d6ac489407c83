package game

import (
	"fmt"

	"go.uber.org/zap"
)

// ResourceBundle is a set of transferable resources named in a trade.
type ResourceBundle struct {
	Stars    int `json:"stars"`
	Rock     int `json:"rock"`
	Scissors int `json:"scissors"`
	Paper    int `json:"paper"`
	Money    int `json:"money"`
}

// IsZero reports whether the bundle transfers nothing.
func (b ResourceBundle) IsZero() bool {
	return b == ResourceBundle{}
}

func (b ResourceBundle) String() string {
	return fmt.Sprintf("%d*, R:%d, S:%d, P:%d, M:%d", b.Stars, b.Rock, b.Scissors, b.Paper, b.Money)
}

// covers reports whether the player currently holds every resource in the
// bundle at the required quantity.
func (b ResourceBundle) covers(p *Player) bool {
	return p.Stars >= b.Stars &&
		p.Cards[CardRock] >= b.Rock &&
		p.Cards[CardScissors] >= b.Scissors &&
		p.Cards[CardPaper] >= b.Paper &&
		p.Money >= b.Money
}

func (b ResourceBundle) addTo(p *Player) {
	p.Stars += b.Stars
	p.Cards[CardRock] += b.Rock
	p.Cards[CardScissors] += b.Scissors
	p.Cards[CardPaper] += b.Paper
	p.Money += b.Money
}

func (b ResourceBundle) subtractFrom(p *Player) {
	p.Stars -= b.Stars
	p.Cards[CardRock] -= b.Rock
	p.Cards[CardScissors] -= b.Scissors
	p.Cards[CardPaper] -= b.Paper
	p.Money -= b.Money
}

// TradeTerms describes a full trade proposal from the initiator's point of
// view: Give is what the initiator hands over, Receive what the counterpart
// hands back.
type TradeTerms struct {
	Give    ResourceBundle `json:"give"`
	Receive ResourceBundle `json:"receive"`
}

// ValidateTrade checks that a trade can execute from the initiator's side:
// both parties active and distinct, and the initiator holding everything it
// offers. It never mutates state.
func (g *Game) ValidateTrade(initiator, counterpart *Player, terms TradeTerms) bool {
	if initiator == nil || counterpart == nil || !initiator.IsActive() || !counterpart.IsActive() {
		g.logger.Warn("trade validation failed: one or both players inactive or not found")
		return false
	}
	if initiator.Name == counterpart.Name {
		g.logger.Warn("trade validation failed: player cannot trade with themselves",
			zap.String("player", initiator.Name))
		return false
	}
	if !terms.Give.covers(initiator) {
		g.logger.Warn("trade validation failed: initiator lacks offered resources",
			zap.String("initiator", initiator.Name))
		return false
	}
	return true
}

// ValidateReceived independently checks the counterpart's side of a trade:
// the counterpart must hold everything the initiator asks to receive. Run at
// acceptance time, not proposal time, since the counterpart's resources may
// have drifted while the response was pending.
func (g *Game) ValidateReceived(counterpart *Player, terms TradeTerms) bool {
	if !terms.Receive.covers(counterpart) {
		g.logger.Warn("trade validation failed: counterpart lacks requested resources",
			zap.String("counterpart", counterpart.Name))
		return false
	}
	return true
}

// ExecuteTrade applies the four resource deltas of a validated trade as one
// logical step. Callers guarantee ValidateTrade and ValidateReceived have
// both passed immediately before.
func (g *Game) ExecuteTrade(initiator, counterpart *Player, terms TradeTerms) {
	g.logger.Info("executing trade",
		zap.String("initiator", initiator.Name),
		zap.String("counterpart", counterpart.Name))

	terms.Give.subtractFrom(initiator)
	terms.Give.addTo(counterpart)
	terms.Receive.addTo(initiator)
	terms.Receive.subtractFrom(counterpart)

	initiator.appendLog(g.currentTurn, fmt.Sprintf(
		"Trade executed with %s. Gave: %s. Received: %s.",
		counterpart.Name, terms.Give, terms.Receive))
	counterpart.appendLog(g.currentTurn, fmt.Sprintf("Accepted trade with %s.", initiator.Name))

	g.logger.Info("trade completed",
		zap.String("initiator", initiator.Name),
		zap.Int("initiator_stars", initiator.Stars),
		zap.String("counterpart", counterpart.Name),
		zap.Int("counterpart_stars", counterpart.Stars))
}

// ValidateMatch checks the proposer's side of a match: both parties active
// and distinct, and the proposer holding at least one card of the committed
// type. The responder's card is checked only at acceptance time by the
// negotiation, since the two decisions are asymmetric.
func (g *Game) ValidateMatch(proposer, opponent *Player, card CardType) bool {
	if proposer == nil || opponent == nil || !proposer.IsActive() || !opponent.IsActive() {
		g.logger.Warn("match validation failed: one or both players inactive or not found")
		return false
	}
	if proposer.Name == opponent.Name {
		g.logger.Warn("match validation failed: player cannot play against themselves",
			zap.String("player", proposer.Name))
		return false
	}
	if proposer.Cards[card] <= 0 {
		g.logger.Warn("match validation failed: proposer does not have card",
			zap.String("player", proposer.Name),
			zap.Stringer("card", card))
		return false
	}
	return true
}

// PlayMatch resolves one rock-paper-scissors match. Both played cards are
// consumed even on a draw. On a decisive result one star moves from loser to
// winner; a loser left with no stars is eliminated inline so that later
// actions in the same turn observe it.
func (g *Game) PlayMatch(player1, player2 *Player, card1, card2 CardType) {
	g.logger.Info("playing match",
		zap.String("player1", player1.Name),
		zap.Stringer("card1", card1),
		zap.String("player2", player2.Name),
		zap.Stringer("card2", card2))

	logP1 := fmt.Sprintf("Played '%s' against %s ('%s').", card1, player2.Name, card2)
	logP2 := fmt.Sprintf("Played '%s' against %s ('%s').", card2, player1.Name, card1)

	player1.Cards[card1]--
	player2.Cards[card2]--

	var winner, loser *Player
	switch {
	case card1 == card2:
		g.logger.Info("match result: draw")
		logP1 += " Result: Draw."
		logP2 += " Result: Draw."
	case card1.Beats(card2):
		winner, loser = player1, player2
		logP1 += " Result: Win."
		logP2 += " Result: Lose."
	default:
		winner, loser = player2, player1
		logP1 += " Result: Lose."
		logP2 += " Result: Win."
	}

	if winner != nil {
		winner.Stars++
		loser.Stars--
		g.logger.Info("match result: decisive",
			zap.String("winner", winner.Name),
			zap.Int("winner_stars", winner.Stars),
			zap.String("loser", loser.Name),
			zap.Int("loser_stars", loser.Stars))
		if loser.Stars <= 0 {
			g.setStatus(loser, StatusEliminatedNoStar,
				fmt.Sprintf("Lost all stars in a match against %s", winner.Name))
		}
	}

	logP1 += fmt.Sprintf(" Stars: %d.", player1.Stars)
	logP2 += fmt.Sprintf(" Stars: %d.", player2.Stars)
	player1.appendLog(g.currentTurn, logP1)
	player2.appendLog(g.currentTurn, logP2)
}
