package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/espoir/limitedjanken/internal/game"
)

// Remote is an oracle backed by an external agent process speaking JSON over
// a websocket. Each call sends one request frame and blocks for one response
// frame; responses are schema-validated before they reach the game, so a
// malformed decision surfaces as an ordinary oracle failure rather than a
// bad action. No retries happen at this layer.
type Remote struct {
	url     string
	timeout time.Duration
	logger  *zap.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

type remoteRequest struct {
	Type  string              `json:"type"`
	View  remoteView          `json:"view"`
	Trade *game.TradeProposal `json:"trade,omitempty"`
	Match *game.MatchProposal `json:"match,omitempty"`
}

// remoteView is the wire shape of a player snapshot sent to the agent.
type remoteView struct {
	Name      string              `json:"name"`
	Persona   string              `json:"persona"`
	Emotion   string              `json:"emotion,omitempty"`
	Stars     int                 `json:"star_number"`
	Rock      int                 `json:"rock_card_number"`
	Scissors  int                 `json:"scissors_card_number"`
	Paper     int                 `json:"paper_card_number"`
	Money     int                 `json:"money"`
	Loan      int                 `json:"initial_loan"`
	Turn      int                 `json:"turn"`
	MaxTurns  int                 `json:"max_turns"`
	Others    []game.PublicPlayer `json:"others"`
	Dashboard game.Dashboard      `json:"dashboard"`
	Rules     string              `json:"rules"`
	ActionLog []game.LogEntry     `json:"action_log"`
}

func toRemoteView(v game.PlayerView) remoteView {
	return remoteView{
		Name:      v.Name,
		Persona:   v.Persona,
		Emotion:   v.Emotion,
		Stars:     v.Stars,
		Rock:      v.Rock,
		Scissors:  v.Scissors,
		Paper:     v.Paper,
		Money:     v.Money,
		Loan:      v.InitialLoan,
		Turn:      v.Turn,
		MaxTurns:  v.MaxTurns,
		Others:    v.Others,
		Dashboard: v.Dashboard,
		Rules:     v.Rules,
		ActionLog: v.ActionLog,
	}
}

// NewRemote dials the agent endpoint and returns a connected oracle.
func NewRemote(url string, timeout time.Duration, logger *zap.Logger) (*Remote, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial oracle endpoint %s: %w", url, err)
	}
	logger.Info("remote oracle connected", zap.String("url", url))
	return &Remote{url: url, timeout: timeout, logger: logger, conn: conn}, nil
}

// Close shuts the underlying connection down.
func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn = nil
	return err
}

// roundTrip sends one request and reads one raw response under the
// configured deadline.
func (r *Remote) roundTrip(ctx context.Context, req remoteRequest) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil, fmt.Errorf("oracle connection closed")
	}

	deadline := time.Now().Add(r.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	if err := r.conn.SetWriteDeadline(deadline); err != nil {
		return nil, err
	}
	if err := r.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}
	if err := r.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	_, raw, err := r.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return raw, nil
}

// Decide asks the agent for a turn decision.
func (r *Remote) Decide(ctx context.Context, view game.PlayerView) (game.Action, error) {
	raw, err := r.roundTrip(ctx, remoteRequest{Type: "decide", View: toRemoteView(view)})
	if err != nil {
		return game.Action{}, err
	}
	return DecodeDecision(raw)
}

// RespondToTrade asks the agent to answer a trade proposal.
func (r *Remote) RespondToTrade(ctx context.Context, view game.PlayerView, proposal game.TradeProposal) (game.TradeResponse, error) {
	raw, err := r.roundTrip(ctx, remoteRequest{Type: "trade_response", View: toRemoteView(view), Trade: &proposal})
	if err != nil {
		return game.TradeResponse{}, err
	}
	return DecodeTradeResponse(raw)
}

// RespondToMatch asks the agent to answer a match proposal.
func (r *Remote) RespondToMatch(ctx context.Context, view game.PlayerView, proposal game.MatchProposal) (game.MatchResponse, error) {
	raw, err := r.roundTrip(ctx, remoteRequest{Type: "match_response", View: toRemoteView(view), Match: &proposal})
	if err != nil {
		return game.MatchResponse{}, err
	}
	return DecodeMatchResponse(raw)
}

// Emotion asks the agent for a one-line mood. The response is plain text.
func (r *Remote) Emotion(ctx context.Context, view game.PlayerView) (string, error) {
	raw, err := r.roundTrip(ctx, remoteRequest{Type: "emotion", View: toRemoteView(view)})
	if err != nil {
		return "", err
	}
	var resp struct {
		Emotion string `json:"emotion"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("unmarshal emotion: %w", err)
	}
	return resp.Emotion, nil
}
