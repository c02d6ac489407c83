package game

import "fmt"

// PlayerStatus represents a player's standing in the game. A player starts
// ACTIVE and transitions at most once to one of the terminal statuses.
type PlayerStatus int

const (
	StatusActive PlayerStatus = iota
	StatusEliminatedNoStar
	StatusEliminatedTimeOut
	StatusOutSuccess
)

func (s PlayerStatus) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusEliminatedNoStar:
		return "ELIMINATED_NO_STAR"
	case StatusEliminatedTimeOut:
		return "ELIMINATED_TIME_OUT"
	case StatusOutSuccess:
		return "OUT_SUCCESS"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the status is one of the game-over statuses.
func (s PlayerStatus) Terminal() bool {
	return s != StatusActive
}

// LogEntry is one record in a player's append-only action log. Turn is the
// turn number the event happened on, or 0 for pre-game events.
type LogEntry struct {
	Turn    int    `json:"turn"`
	Message string `json:"message"`
}

// Player holds the mutable per-participant state. All mutation goes through
// the Game aggregate; nothing outside this package touches these fields
// mid-game.
type Player struct {
	Name           string
	Persona        string
	Stars          int
	Cards          map[CardType]int
	Money          int
	InitialLoan    int
	Status         PlayerStatus
	CurrentEmotion string

	actionLog []LogEntry
}

// NewPlayer creates a player with the configured starting resources. A loan
// is paid out as starting money and recorded as negative debt.
func NewPlayer(name, persona string, loan int, initialStars, initialCardsEachType int) *Player {
	return &Player{
		Name:    name,
		Persona: persona,
		Stars:   initialStars,
		Cards: map[CardType]int{
			CardRock:     initialCardsEachType,
			CardScissors: initialCardsEachType,
			CardPaper:    initialCardsEachType,
		},
		Money:       loan,
		InitialLoan: -loan,
		Status:      StatusActive,
	}
}

// TotalCards returns the number of cards of all types the player holds.
func (p *Player) TotalCards() int {
	total := 0
	for _, n := range p.Cards {
		total += n
	}
	return total
}

// IsActive reports whether the player is still in the game.
func (p *Player) IsActive() bool {
	return p.Status == StatusActive
}

// CheckSurvivalCondition reports whether the player may declare out of the
// game: every card spent and at least three stars held.
func (p *Player) CheckSurvivalCondition() bool {
	return p.TotalCards() == 0 && p.Stars >= 3
}

// AvailableCards returns the card types the player can still play.
func (p *Player) AvailableCards() []CardType {
	var available []CardType
	for _, ct := range AllCardTypes {
		if p.Cards[ct] > 0 {
			available = append(available, ct)
		}
	}
	return available
}

// UpdateStatus transitions the player to a new status. The first transition
// away from ACTIVE wins; any later attempt is ignored and reported false.
func (p *Player) UpdateStatus(turn int, status PlayerStatus, reason string) bool {
	if p.Status != StatusActive {
		return false
	}
	p.Status = status
	msg := fmt.Sprintf("Status changed to %s.", status)
	if reason != "" {
		msg += " Reason: " + reason
	}
	p.appendLog(turn, msg)
	return true
}

func (p *Player) appendLog(turn int, message string) {
	p.actionLog = append(p.actionLog, LogEntry{Turn: turn, Message: message})
}

// ActionLog returns a copy of the player's append-only action log.
func (p *Player) ActionLog() []LogEntry {
	out := make([]LogEntry, len(p.actionLog))
	copy(out, p.actionLog)
	return out
}
