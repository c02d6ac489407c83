// Package oracle provides implementations of the game's decision boundary:
// a deterministic persona-driven bot and a remote agent connected over a
// websocket. Raw decisions arriving from outside the process are validated
// against JSON schemas before they are dispatched.
package oracle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/espoir/limitedjanken/internal/game"
)

const decisionSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["function_name", "arguments"],
  "properties": {
    "function_name": {
      "enum": ["propose_trade", "propose_match", "declare_out_of_game", "do_nothing"]
    },
    "arguments": {
      "type": "object",
      "properties": {
        "target_player_name": {"type": "string"},
        "card_to_play": {"enum": ["rock", "scissors", "paper"]},
        "give_stars": {"type": "integer", "minimum": 0},
        "give_rock": {"type": "integer", "minimum": 0},
        "give_scissors": {"type": "integer", "minimum": 0},
        "give_paper": {"type": "integer", "minimum": 0},
        "give_money": {"type": "integer", "minimum": 0},
        "receive_stars": {"type": "integer", "minimum": 0},
        "receive_rock": {"type": "integer", "minimum": 0},
        "receive_scissors": {"type": "integer", "minimum": 0},
        "receive_paper": {"type": "integer", "minimum": 0},
        "receive_money": {"type": "integer", "minimum": 0},
        "reasoning": {"type": "string"},
        "internal_reasoning": {"type": "string"},
        "public_reasoning": {"type": "string"}
      }
    }
  }
}`

const responseSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["decision"],
  "properties": {
    "decision": {"enum": ["accept", "reject"]},
    "card_to_play": {"enum": ["rock", "scissors", "paper"]},
    "reasoning": {"type": "string"}
  }
}`

var (
	decisionSchema = jsonschema.MustCompileString("decision.schema.json", decisionSchemaJSON)
	responseSchema = jsonschema.MustCompileString("response.schema.json", responseSchemaJSON)
)

type decisionPayload struct {
	FunctionName string       `json:"function_name"`
	Arguments    decisionArgs `json:"arguments"`
}

type decisionArgs struct {
	TargetPlayerName string `json:"target_player_name"`
	CardToPlay       string `json:"card_to_play"`
	GiveStars        int    `json:"give_stars"`
	GiveRock         int    `json:"give_rock"`
	GiveScissors     int    `json:"give_scissors"`
	GivePaper        int    `json:"give_paper"`
	GiveMoney        int    `json:"give_money"`
	ReceiveStars     int    `json:"receive_stars"`
	ReceiveRock      int    `json:"receive_rock"`
	ReceiveScissors  int    `json:"receive_scissors"`
	ReceivePaper     int    `json:"receive_paper"`
	ReceiveMoney     int    `json:"receive_money"`
	Reasoning        string `json:"reasoning"`
	InternalReason   string `json:"internal_reasoning"`
	PublicReason     string `json:"public_reasoning"`
}

type responsePayload struct {
	Decision   string `json:"decision"`
	CardToPlay string `json:"card_to_play"`
	Reasoning  string `json:"reasoning"`
}

func validateRaw(schema *jsonschema.Schema, raw []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode decision: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("validate decision: %w", err)
	}
	return nil
}

// DecodeDecision parses and validates a raw turn decision in the function
// call wire format and maps it onto an Action.
func DecodeDecision(raw []byte) (game.Action, error) {
	if err := validateRaw(decisionSchema, raw); err != nil {
		return game.Action{}, err
	}
	var p decisionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return game.Action{}, fmt.Errorf("unmarshal decision: %w", err)
	}

	args := p.Arguments
	reasoning := args.InternalReason
	if reasoning == "" {
		reasoning = args.Reasoning
	}
	action := game.Action{
		Target:          args.TargetPlayerName,
		Reasoning:       reasoning,
		PublicReasoning: args.PublicReason,
	}

	switch p.FunctionName {
	case "do_nothing":
		action.Kind = game.ActionDoNothing
	case "declare_out_of_game":
		action.Kind = game.ActionDeclareOut
		action.PublicReasoning = reasoning
	case "propose_trade":
		action.Kind = game.ActionProposeTrade
		if args.TargetPlayerName == "" {
			return game.Action{}, fmt.Errorf("propose_trade missing target_player_name")
		}
		action.Terms = game.TradeTerms{
			Give: game.ResourceBundle{
				Stars:    args.GiveStars,
				Rock:     args.GiveRock,
				Scissors: args.GiveScissors,
				Paper:    args.GivePaper,
				Money:    args.GiveMoney,
			},
			Receive: game.ResourceBundle{
				Stars:    args.ReceiveStars,
				Rock:     args.ReceiveRock,
				Scissors: args.ReceiveScissors,
				Paper:    args.ReceivePaper,
				Money:    args.ReceiveMoney,
			},
		}
	case "propose_match":
		action.Kind = game.ActionProposeMatch
		if args.TargetPlayerName == "" {
			return game.Action{}, fmt.Errorf("propose_match missing target_player_name")
		}
		card, err := game.ParseCardType(args.CardToPlay)
		if err != nil {
			return game.Action{}, fmt.Errorf("propose_match: %w", err)
		}
		action.Card = card
	default:
		return game.Action{}, fmt.Errorf("unknown function %q", p.FunctionName)
	}
	return action, nil
}

// DecodeTradeResponse parses and validates a raw trade response.
func DecodeTradeResponse(raw []byte) (game.TradeResponse, error) {
	if err := validateRaw(responseSchema, raw); err != nil {
		return game.TradeResponse{}, err
	}
	var p responsePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return game.TradeResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}
	return game.TradeResponse{
		Accept:    p.Decision == "accept",
		Reasoning: reasonOrDefault(p.Reasoning),
	}, nil
}

// DecodeMatchResponse parses and validates a raw match response. An accept
// must carry a card choice.
func DecodeMatchResponse(raw []byte) (game.MatchResponse, error) {
	if err := validateRaw(responseSchema, raw); err != nil {
		return game.MatchResponse{}, err
	}
	var p responsePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return game.MatchResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}
	resp := game.MatchResponse{
		Accept:    p.Decision == "accept",
		Reasoning: reasonOrDefault(p.Reasoning),
	}
	if resp.Accept {
		card, err := game.ParseCardType(p.CardToPlay)
		if err != nil {
			return game.MatchResponse{}, fmt.Errorf("match accept without valid card: %w", err)
		}
		resp.Card = card
	}
	return resp, nil
}

func reasonOrDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return "No reasoning provided."
	}
	return s
}
