package game

import (
	"context"
	"fmt"
)

// ActionKind enumerates the decision surface a player's oracle can choose
// from on its own turn.
type ActionKind int

const (
	ActionDoNothing ActionKind = iota
	ActionProposeTrade
	ActionProposeMatch
	ActionDeclareOut
)

func (k ActionKind) String() string {
	switch k {
	case ActionDoNothing:
		return "do_nothing"
	case ActionProposeTrade:
		return "propose_trade"
	case ActionProposeMatch:
		return "propose_match"
	case ActionDeclareOut:
		return "declare_out_of_game"
	default:
		return "UNKNOWN"
	}
}

// Action is one decision returned by the oracle for a player's own turn.
// Target, Terms and Card are meaningful only for the kinds that use them.
type Action struct {
	Kind            ActionKind
	Target          string
	Terms           TradeTerms
	Card            CardType
	Reasoning       string
	PublicReasoning string
}

func (a Action) String() string {
	switch a.Kind {
	case ActionProposeTrade:
		return fmt.Sprintf("%s(target=%s, give=[%s], receive=[%s])", a.Kind, a.Target, a.Terms.Give, a.Terms.Receive)
	case ActionProposeMatch:
		return fmt.Sprintf("%s(target=%s, card=%s)", a.Kind, a.Target, a.Card)
	default:
		return a.Kind.String()
	}
}

// TradeProposal is what a responder sees when asked about a trade: the terms
// are phrased from the proposer's side, so Give is what the responder would
// gain and Receive what it would part with.
type TradeProposal struct {
	Proposer string
	Terms    TradeTerms
	Message  string
}

// MatchProposal is what a responder sees when asked about a match. The
// proposer's committed card stays hidden.
type MatchProposal struct {
	Proposer      string
	ProposerStars int
	Message       string
}

// TradeResponse is the responder's verdict on a trade proposal.
type TradeResponse struct {
	Accept    bool
	Reasoning string
}

// MatchResponse is the responder's verdict on a match proposal. Card is only
// meaningful when Accept is true.
type MatchResponse struct {
	Accept    bool
	Card      CardType
	Reasoning string
}

// Oracle is the external decision-making capability. The core treats every
// call as a blocking, fallible black box: an error from any method degrades
// to a safe default (do-nothing for a player's own turn, reject for
// negotiation responses) and is never fatal. Implementations are free to be
// rule-based bots, remote services or anything in between.
type Oracle interface {
	// Decide picks the player's action for its own turn.
	Decide(ctx context.Context, view PlayerView) (Action, error)

	// RespondToTrade answers a trade proposal on the viewed player's behalf.
	RespondToTrade(ctx context.Context, view PlayerView, proposal TradeProposal) (TradeResponse, error)

	// RespondToMatch answers a match proposal, choosing a card when accepting.
	RespondToMatch(ctx context.Context, view PlayerView, proposal MatchProposal) (MatchResponse, error)

	// Emotion produces a one-line mood for the viewed player. Advisory only;
	// an error or empty string leaves the previous emotion in place.
	Emotion(ctx context.Context, view PlayerView) (string, error)
}
