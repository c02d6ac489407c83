package game

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NegotiationState tracks a two-party interaction through its two phases.
// Cancelled is distinct from Rejected: the responder said yes but the deal
// could no longer be honored at execution time.
type NegotiationState int

const (
	NegotiationProposed NegotiationState = iota
	NegotiationAccepted
	NegotiationRejected
	NegotiationCancelled
)

func (s NegotiationState) String() string {
	switch s {
	case NegotiationProposed:
		return "PROPOSED"
	case NegotiationAccepted:
		return "ACCEPTED"
	case NegotiationRejected:
		return "REJECTED"
	case NegotiationCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// NegotiationKind distinguishes the two interaction types.
type NegotiationKind int

const (
	NegotiationTrade NegotiationKind = iota
	NegotiationMatch
)

func (k NegotiationKind) String() string {
	switch k {
	case NegotiationTrade:
		return "TRADE"
	case NegotiationMatch:
		return "MATCH"
	default:
		return "UNKNOWN"
	}
}

// Negotiation is the record of one propose/respond interaction between an
// initiator and a target.
type Negotiation struct {
	ID        string
	Kind      NegotiationKind
	Turn      int
	Initiator string
	Target    string
	State     NegotiationState
	Reason    string
}

// negotiateTrade runs the trade protocol: ask the target's oracle for a
// binary verdict, then on acceptance re-validate both sides before
// executing. Revalidation failure cancels rather than rejects.
func (g *Game) negotiateTrade(ctx context.Context, initiator, target *Player, terms TradeTerms, message string) *Negotiation {
	n := &Negotiation{
		ID:        uuid.NewString(),
		Kind:      NegotiationTrade,
		Turn:      g.currentTurn,
		Initiator: initiator.Name,
		Target:    target.Name,
		State:     NegotiationProposed,
	}

	g.logger.Info("trade proposed",
		zap.String("negotiation_id", n.ID),
		zap.String("initiator", initiator.Name),
		zap.String("target", target.Name))

	resp, err := g.askTradeResponse(ctx, target, initiator, terms, message)
	if err != nil {
		// Oracle failure is an automatic reject; no retry at this layer.
		g.logger.Error("trade response failed, defaulting to reject",
			zap.String("target", target.Name), zap.Error(err))
		target.appendLog(g.currentTurn, fmt.Sprintf(
			"Failed to respond to trade from %s due to API error. Defaulting to reject.", initiator.Name))
		n.State = NegotiationRejected
		n.Reason = "oracle failure"
		initiator.appendLog(g.currentTurn, fmt.Sprintf("Trade proposal to %s was rejected.", target.Name))
		return n
	}

	target.appendLog(g.currentTurn, fmt.Sprintf(
		"Responded '%s' to trade from %s. Reason: %s", verdict(resp.Accept), initiator.Name, resp.Reasoning))

	if !resp.Accept {
		g.logger.Info("trade rejected",
			zap.String("target", target.Name), zap.String("reasoning", resp.Reasoning))
		n.State = NegotiationRejected
		n.Reason = resp.Reasoning
		initiator.appendLog(g.currentTurn, fmt.Sprintf("Trade proposal to %s was rejected.", target.Name))
		target.appendLog(g.currentTurn, fmt.Sprintf("Rejected trade proposal from %s.", initiator.Name))
		return n
	}

	n.State = NegotiationAccepted

	// State may have drifted while the response was pending: both sides are
	// checked again immediately before execution.
	if !g.ValidateTrade(initiator, target, terms) || !g.ValidateReceived(target, terms) {
		g.logger.Warn("trade failed validation after acceptance, cancelled",
			zap.String("initiator", initiator.Name), zap.String("target", target.Name))
		n.State = NegotiationCancelled
		n.Reason = "failed validation after acceptance"
		initiator.appendLog(g.currentTurn, fmt.Sprintf(
			"Trade with %s accepted but failed validation.", target.Name))
		target.appendLog(g.currentTurn, fmt.Sprintf(
			"Accepted trade with %s but failed validation.", initiator.Name))
		return n
	}

	g.logger.Info("trade accepted", zap.String("target", target.Name))
	g.ExecuteTrade(initiator, target, terms)
	return n
}

// negotiateMatch runs the match protocol: ask the target's oracle to accept
// and pick a card. A target with no cards auto-rejects without consulting
// the oracle; an accepted response naming an unavailable card cancels the
// match instead of playing it.
func (g *Game) negotiateMatch(ctx context.Context, initiator, target *Player, card CardType, message string) *Negotiation {
	n := &Negotiation{
		ID:        uuid.NewString(),
		Kind:      NegotiationMatch,
		Turn:      g.currentTurn,
		Initiator: initiator.Name,
		Target:    target.Name,
		State:     NegotiationProposed,
	}

	g.logger.Info("match proposed",
		zap.String("negotiation_id", n.ID),
		zap.String("initiator", initiator.Name),
		zap.String("target", target.Name),
		zap.Stringer("card", card))

	if target.TotalCards() == 0 {
		g.logger.Warn("target has no cards left, rejecting match automatically",
			zap.String("target", target.Name))
		target.appendLog(g.currentTurn, fmt.Sprintf("Rejected match from %s (no cards left).", initiator.Name))
		n.State = NegotiationRejected
		n.Reason = "no cards left"
		initiator.appendLog(g.currentTurn, fmt.Sprintf("Match proposal to %s was rejected.", target.Name))
		return n
	}

	resp, err := g.askMatchResponse(ctx, target, initiator, message)
	if err != nil {
		g.logger.Error("match response failed, defaulting to reject",
			zap.String("target", target.Name), zap.Error(err))
		target.appendLog(g.currentTurn, fmt.Sprintf(
			"Failed to respond to match from %s due to API error. Defaulting to reject.", initiator.Name))
		n.State = NegotiationRejected
		n.Reason = "oracle failure"
		initiator.appendLog(g.currentTurn, fmt.Sprintf("Match proposal to %s was rejected.", target.Name))
		return n
	}

	if !resp.Accept {
		g.logger.Info("match rejected",
			zap.String("target", target.Name), zap.String("reasoning", resp.Reasoning))
		target.appendLog(g.currentTurn, fmt.Sprintf(
			"Rejected match from %s. Reason: %s", initiator.Name, resp.Reasoning))
		n.State = NegotiationRejected
		n.Reason = resp.Reasoning
		initiator.appendLog(g.currentTurn, fmt.Sprintf("Match proposal to %s was rejected.", target.Name))
		return n
	}

	n.State = NegotiationAccepted

	if target.Cards[resp.Card] <= 0 {
		// The oracle boundary can mis-report a card the responder no longer
		// holds; that is a cancellation, not a played match.
		g.logger.Warn("target accepted match with unavailable card, cancelled",
			zap.String("target", target.Name), zap.Stringer("card", resp.Card))
		n.State = NegotiationCancelled
		n.Reason = fmt.Sprintf("opponent chose unavailable card '%s'", resp.Card)
		initiator.appendLog(g.currentTurn, fmt.Sprintf(
			"Match with %s cancelled (opponent chose invalid card).", target.Name))
		target.appendLog(g.currentTurn, fmt.Sprintf(
			"Accepted match with %s but chose invalid card '%s'.", initiator.Name, resp.Card))
		return n
	}

	g.logger.Info("match accepted",
		zap.String("target", target.Name), zap.Stringer("card", resp.Card))
	target.appendLog(g.currentTurn, fmt.Sprintf(
		"Accepted match from %s, playing '%s'. Reason: %s", initiator.Name, resp.Card, resp.Reasoning))
	g.PlayMatch(initiator, target, card, resp.Card)
	return n
}

// askTradeResponse consults the target's oracle about a pending trade. An
// inactive target short-circuits to reject before reaching the oracle.
func (g *Game) askTradeResponse(ctx context.Context, target, proposer *Player, terms TradeTerms, message string) (TradeResponse, error) {
	if !target.IsActive() {
		return TradeResponse{}, nil
	}
	view, _ := g.View(target.Name)
	return g.oracle.RespondToTrade(ctx, view, TradeProposal{
		Proposer: proposer.Name,
		Terms:    terms,
		Message:  message,
	})
}

// askMatchResponse consults the target's oracle about a pending match.
func (g *Game) askMatchResponse(ctx context.Context, target, proposer *Player, message string) (MatchResponse, error) {
	if !target.IsActive() {
		return MatchResponse{}, nil
	}
	view, _ := g.View(target.Name)
	return g.oracle.RespondToMatch(ctx, view, MatchProposal{
		Proposer:      proposer.Name,
		ProposerStars: proposer.Stars,
		Message:       message,
	})
}

func verdict(accept bool) string {
	if accept {
		return "accept"
	}
	return "reject"
}
