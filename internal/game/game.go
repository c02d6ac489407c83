package game

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TurnOrder selects how players are sequenced within a turn.
type TurnOrder string

const (
	// TurnOrderFixed activates players in roster order every turn.
	TurnOrderFixed TurnOrder = "fixed"
	// TurnOrderShuffled reshuffles the activation order each turn with a
	// seeded generator, so runs stay reproducible.
	TurnOrderShuffled TurnOrder = "shuffled"
)

// Settings are the game rule knobs. Zero values are not usable; build from
// DefaultSettings or config.
type Settings struct {
	InitialStars         int
	InitialCardsEachType int
	MaxTurns             int
	MinutesPerTurn       int
	ExpectedPlayers      int
	TurnOrder            TurnOrder
	ShuffleSeed          int64
	// StatusLabels optionally overrides the display label per status in
	// summaries. Missing entries fall back to the status name.
	StatusLabels map[PlayerStatus]string
}

// DefaultSettings returns the canonical ruleset: 3 stars, 4 cards of each
// type, 24 turns of 10 minutes.
func DefaultSettings() Settings {
	return Settings{
		InitialStars:         3,
		InitialCardsEachType: 4,
		MaxTurns:             24,
		MinutesPerTurn:       10,
		ExpectedPlayers:      5,
		TurnOrder:            TurnOrderFixed,
	}
}

// StatusLabel returns the display label for a status.
func (s Settings) StatusLabel(status PlayerStatus) string {
	if label, ok := s.StatusLabels[status]; ok {
		return label
	}
	return status.String()
}

// PlayerConfig describes one roster entry.
type PlayerConfig struct {
	Name    string
	Persona string
	Loan    int
}

// FinalStanding captures one player's end-of-game state.
type FinalStanding struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Stars  int    `json:"stars"`
	Cards  int    `json:"cards"`
	Money  int    `json:"money"`
}

// TurnEvent summarizes the game after one completed turn; fed to spectators.
type TurnEvent struct {
	GameID    string          `json:"game_id"`
	Turn      int             `json:"turn"`
	GameOver  bool            `json:"game_over"`
	Dashboard Dashboard       `json:"dashboard"`
	Players   []FinalStanding `json:"players"`
}

// TranscriptRecord is one action-log entry attributed to a player, ordered
// for narrative reconstruction.
type TranscriptRecord struct {
	Turn    int    `json:"turn"`
	Player  string `json:"player"`
	Message string `json:"message"`
}

// Game owns the full simulation state: the player registry, the turn
// counter and the terminal flag. All mutation is driven by ProgressTurn on a
// single goroutine; the only long-latency operation is the blocking oracle
// call, during which nothing else mutates state.
type Game struct {
	id       string
	settings Settings
	logger   *zap.Logger
	oracle   Oracle

	players     map[string]*Player
	order       []string // roster insertion order, never reordered
	currentTurn int
	gameOver    bool
	shuffleRNG  *rand.Rand
}

// New creates a game with the given roster. Players are created once here
// and only ever transition status afterwards; the registry is never resized.
func New(settings Settings, roster []PlayerConfig, oracle Oracle, logger *zap.Logger) (*Game, error) {
	if oracle == nil {
		return nil, fmt.Errorf("oracle is required")
	}
	if len(roster) < 2 {
		return nil, fmt.Errorf("at least two players required, got %d", len(roster))
	}
	if settings.ExpectedPlayers > 0 && len(roster) != settings.ExpectedPlayers {
		logger.Warn("roster size does not match expected player count",
			zap.Int("roster", len(roster)),
			zap.Int("expected", settings.ExpectedPlayers))
	}

	g := &Game{
		id:       uuid.NewString(),
		settings: settings,
		logger:   logger,
		oracle:   oracle,
		players:  make(map[string]*Player, len(roster)),
	}
	if settings.TurnOrder == TurnOrderShuffled {
		g.shuffleRNG = rand.New(rand.NewSource(settings.ShuffleSeed))
	}

	for _, pc := range roster {
		if _, exists := g.players[pc.Name]; exists {
			return nil, fmt.Errorf("duplicate player name %q", pc.Name)
		}
		g.players[pc.Name] = NewPlayer(pc.Name, pc.Persona, pc.Loan,
			settings.InitialStars, settings.InitialCardsEachType)
		g.order = append(g.order, pc.Name)
	}

	logger.Info("limited rock-paper-scissors simulation starting",
		zap.String("game_id", g.id),
		zap.Int("players", len(g.order)),
		zap.Strings("roster", g.order))
	for _, name := range g.order {
		p := g.players[name]
		logger.Info("initial player state",
			zap.String("player", p.Name),
			zap.Int("stars", p.Stars),
			zap.Int("cards", p.TotalCards()),
			zap.Int("money", p.Money),
			zap.Int("loan", p.InitialLoan))
	}
	return g, nil
}

// ID returns the game's unique identifier.
func (g *Game) ID() string { return g.id }

// CurrentTurn returns the number of the most recently started turn.
func (g *Game) CurrentTurn() int { return g.currentTurn }

// Over reports whether the game reached a terminal state.
func (g *Game) Over() bool { return g.gameOver }

// Player returns the named player, or nil.
func (g *Game) Player(name string) *Player {
	return g.players[name]
}

// ActivePlayers returns the still-active players in roster order.
func (g *Game) ActivePlayers() []*Player {
	var active []*Player
	for _, name := range g.order {
		if p := g.players[name]; p.IsActive() {
			active = append(active, p)
		}
	}
	return active
}

// Run drives the simulation until a terminal game state is reached.
func (g *Game) Run(ctx context.Context) {
	for !g.gameOver {
		if ctx.Err() != nil {
			g.logger.Warn("simulation stopped early", zap.Error(ctx.Err()))
			return
		}
		g.ProgressTurn(ctx)
	}
}

// ProgressTurn advances the game by one turn: each active player in order is
// asked for a decision and the decision dispatched, with an elimination
// sweep and termination check after every dispatch. A warning no-op if the
// game is already over.
func (g *Game) ProgressTurn(ctx context.Context) {
	if g.gameOver {
		g.logger.Warn("attempted to progress turn but game is already over")
		return
	}

	g.currentTurn++
	g.logger.Info("turn start",
		zap.Int("turn", g.currentTurn),
		zap.Int("max_turns", g.settings.MaxTurns),
		zap.Int("remaining_minutes", (g.settings.MaxTurns-g.currentTurn)*g.settings.MinutesPerTurn))

	for _, name := range g.turnOrder() {
		p := g.players[name]
		if !p.IsActive() {
			g.logger.Debug("skipping inactive player",
				zap.String("player", name),
				zap.Stringer("status", p.Status))
			continue
		}

		g.refreshEmotion(ctx, p)
		g.activatePlayer(ctx, p)

		// A later action in this same turn must observe this one's
		// consequences, so eliminations and termination are checked per
		// dispatch, not just at turn end.
		g.removeEliminatedPlayers()
		if g.CheckGameEnd() {
			break
		}
	}

	g.logger.Info("turn end", zap.Int("turn", g.currentTurn))
	g.removeEliminatedPlayers()
	if !g.gameOver {
		g.CheckGameEnd()
	}
	if !g.gameOver {
		g.logTurnSummary()
	} else {
		g.logFinalResults()
	}
}

// turnOrder returns this turn's activation order per the configured policy.
func (g *Game) turnOrder() []string {
	if g.shuffleRNG == nil {
		return g.order
	}
	shuffled := make([]string, len(g.order))
	copy(shuffled, g.order)
	g.shuffleRNG.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// activatePlayer asks the oracle for the player's decision and dispatches
// it. An oracle failure degrades to do-nothing; the game never crashes from
// a boundary failure.
func (g *Game) activatePlayer(ctx context.Context, p *Player) {
	g.logger.Info("player turn", zap.String("player", p.Name))

	view, _ := g.View(p.Name)
	action, err := g.oracle.Decide(ctx, view)
	if err != nil {
		g.logger.Error("oracle decide failed, defaulting to do_nothing",
			zap.String("player", p.Name), zap.Error(err))
		p.appendLog(g.currentTurn, "Action failed due to API error. Defaulting to 'do_nothing'.")
		action = Action{Kind: ActionDoNothing, Reasoning: "API call failed."}
	} else {
		p.appendLog(g.currentTurn, fmt.Sprintf(
			"Decided '%s'. Internal Reason: %s", action.Kind, action.Reasoning))
	}

	g.handleAction(ctx, p, action)
}

// handleAction dispatches one decided action to the negotiation protocol or
// directly to the ledger.
func (g *Game) handleAction(ctx context.Context, p *Player, action Action) {
	if !p.IsActive() {
		g.logger.Warn("cannot handle action for inactive player", zap.String("player", p.Name))
		return
	}

	switch action.Kind {
	case ActionProposeTrade:
		target := g.Player(action.Target)
		if target == nil || !target.IsActive() || target.Name == p.Name {
			g.logger.Warn("trade proposal to invalid target",
				zap.String("player", p.Name),
				zap.String("target", action.Target))
			p.appendLog(g.currentTurn, fmt.Sprintf(
				"Trade proposal to %s failed (target inactive/invalid).", action.Target))
			return
		}
		g.negotiateTrade(ctx, p, target, action.Terms, action.PublicReasoning)

	case ActionProposeMatch:
		target := g.Player(action.Target)
		if !g.ValidateMatch(p, target, action.Card) {
			g.logger.Warn("match proposal invalid",
				zap.String("player", p.Name),
				zap.String("target", action.Target),
				zap.Stringer("card", action.Card))
			p.appendLog(g.currentTurn, fmt.Sprintf(
				"Match proposal to %s failed (invalid).", action.Target))
			return
		}
		g.negotiateMatch(ctx, p, target, action.Card, action.PublicReasoning)

	case ActionDeclareOut:
		if p.CheckSurvivalCondition() {
			g.logger.Info("player declares out of game successfully", zap.String("player", p.Name))
			g.setStatus(p, StatusOutSuccess, "Met survival conditions.")
		} else {
			g.logger.Warn("out-of-game declaration failed conditions",
				zap.String("player", p.Name),
				zap.Int("stars", p.Stars),
				zap.Int("cards", p.TotalCards()))
			p.appendLog(g.currentTurn, "Attempted 'Out of Game' but failed conditions.")
		}

	case ActionDoNothing:
		g.logger.Info("player chose to do nothing", zap.String("player", p.Name))

	default:
		g.logger.Warn("unknown action kind ignored",
			zap.String("player", p.Name),
			zap.Int("kind", int(action.Kind)))
	}
}

// refreshEmotion asks the oracle for the player's current mood. Advisory
// only; failures are ignored.
func (g *Game) refreshEmotion(ctx context.Context, p *Player) {
	view, _ := g.View(p.Name)
	emotion, err := g.oracle.Emotion(ctx, view)
	if err != nil || emotion == "" {
		return
	}
	p.CurrentEmotion = emotion
	p.appendLog(g.currentTurn, "Update Current Emotion: "+emotion)
	g.logger.Info("player emotion updated",
		zap.String("player", p.Name),
		zap.String("emotion", emotion))
}

// setStatus applies a first-writer-wins status transition and logs it.
func (g *Game) setStatus(p *Player, status PlayerStatus, reason string) {
	if p.UpdateStatus(g.currentTurn, status, reason) {
		g.logger.Info("player status changed",
			zap.String("player", p.Name),
			zap.String("status", g.settings.StatusLabel(status)),
			zap.String("reason", reason))
	}
}

// removeEliminatedPlayers sweeps active players for a star count at or below
// zero. Time-out eliminations are handled once at game end instead.
func (g *Game) removeEliminatedPlayers() {
	var eliminated []string
	for _, p := range g.ActivePlayers() {
		if p.Stars <= 0 {
			g.setStatus(p, StatusEliminatedNoStar, "Ran out of stars")
			eliminated = append(eliminated, p.Name)
		}
	}
	if len(eliminated) > 0 {
		g.logger.Info("players eliminated due to no stars", zap.Strings("players", eliminated))
	}
}

// CheckGameEnd evaluates the termination conditions in order: time limit,
// no active players, single survivor. Idempotent once the game is over.
func (g *Game) CheckGameEnd() bool {
	if g.gameOver {
		return true
	}

	active := g.ActivePlayers()

	if g.currentTurn >= g.settings.MaxTurns {
		g.logger.Info("game over: time limit reached")
		for _, p := range active {
			g.setStatus(p, StatusEliminatedTimeOut, "Game time expired")
		}
		g.gameOver = true
		return true
	}

	if len(active) == 0 {
		g.logger.Info("game over: no active players remaining")
		g.gameOver = true
		return true
	}

	if len(active) == 1 && len(g.players) > 1 {
		last := active[0]
		g.logger.Info("game over: only one player remains active",
			zap.String("player", last.Name))
		if last.CheckSurvivalCondition() {
			g.setStatus(last, StatusOutSuccess, "Met survival condition as last active player")
		} else {
			g.setStatus(last, StatusEliminatedTimeOut, "Last player standing but failed conditions at time end")
		}
		g.gameOver = true
		return true
	}

	return false
}

// logTurnSummary reports the per-player standing after a completed turn.
func (g *Game) logTurnSummary() {
	dashboard := g.DashboardInfo()
	g.logger.Info("turn summary",
		zap.Int("turn", g.currentTurn),
		zap.Int("active_players", dashboard.AliveUsers))
	for _, name := range g.order {
		p := g.players[name]
		if p.IsActive() {
			g.logger.Info("player standing",
				zap.String("player", p.Name),
				zap.Int("stars", p.Stars),
				zap.Int("cards", p.TotalCards()),
				zap.Int("money", p.Money))
		} else {
			g.logger.Info("player standing",
				zap.String("player", p.Name),
				zap.String("status", g.settings.StatusLabel(p.Status)))
		}
	}
}

// logFinalResults reports survivors and eliminated players at game end.
func (g *Game) logFinalResults() {
	g.logger.Info("final game results", zap.String("game_id", g.id))
	for _, s := range g.FinalStandings() {
		if s.Status == g.settings.StatusLabel(StatusOutSuccess) {
			g.logger.Info("survivor",
				zap.String("player", s.Name),
				zap.Int("stars", s.Stars),
				zap.Int("cards", s.Cards),
				zap.Int("money", s.Money))
		} else {
			g.logger.Info("eliminated",
				zap.String("player", s.Name),
				zap.String("status", s.Status),
				zap.Int("stars", s.Stars),
				zap.Int("cards", s.Cards),
				zap.Int("money", s.Money))
		}
	}
}

// FinalStandings returns each player's current standing in roster order.
func (g *Game) FinalStandings() []FinalStanding {
	standings := make([]FinalStanding, 0, len(g.order))
	for _, name := range g.order {
		p := g.players[name]
		standings = append(standings, FinalStanding{
			Name:   p.Name,
			Status: g.settings.StatusLabel(p.Status),
			Stars:  p.Stars,
			Cards:  p.TotalCards(),
			Money:  p.Money,
		})
	}
	return standings
}

// TurnEvent builds the spectator event for the current state.
func (g *Game) TurnEvent() TurnEvent {
	return TurnEvent{
		GameID:    g.id,
		Turn:      g.currentTurn,
		GameOver:  g.gameOver,
		Dashboard: g.DashboardInfo(),
		Players:   g.FinalStandings(),
	}
}

// Transcript merges every player's action log into one chronologically
// ordered record stream: grouped by turn, players in roster order within a
// turn, each player's entries in append order.
func (g *Game) Transcript() []TranscriptRecord {
	byTurn := make(map[int][]TranscriptRecord)
	var turns []int
	for _, name := range g.order {
		for _, entry := range g.players[name].ActionLog() {
			if _, seen := byTurn[entry.Turn]; !seen {
				turns = append(turns, entry.Turn)
			}
			byTurn[entry.Turn] = append(byTurn[entry.Turn], TranscriptRecord{
				Turn:    entry.Turn,
				Player:  name,
				Message: entry.Message,
			})
		}
	}
	sort.Ints(turns)
	var records []TranscriptRecord
	for _, turn := range turns {
		records = append(records, byTurn[turn]...)
	}
	return records
}
