package game

import "fmt"

// PublicPlayer is the information about another active player visible to
// everyone: the star count is public, card counts and money are not.
type PublicPlayer struct {
	Name  string `json:"user_name"`
	Stars int    `json:"user_stars"`
}

// Dashboard is the shared scoreboard every player can read: who is still in,
// how much time remains, and how many cards of each type are still
// outstanding among active players.
type Dashboard struct {
	AliveUsers       int `json:"alive_users"`
	RemainMinutes    int `json:"remain_time"`
	AllRockCards     int `json:"all_rock_card_number"`
	AllScissorsCards int `json:"all_scissors_card_number"`
	AllPaperCards    int `json:"all_paper_card_number"`
}

// PlayerView is the read-only snapshot handed to the oracle when asking for
// a decision on a player's behalf.
type PlayerView struct {
	Name        string
	Persona     string
	Emotion     string
	Stars       int
	Rock        int
	Scissors    int
	Paper       int
	Money       int
	InitialLoan int
	Turn        int
	MaxTurns    int
	Others      []PublicPlayer
	Dashboard   Dashboard
	Rules       string
	ActionLog   []LogEntry
}

// TotalCards returns the number of cards the viewed player holds.
func (v PlayerView) TotalCards() int {
	return v.Rock + v.Scissors + v.Paper
}

// View builds the oracle-facing snapshot for the named player.
func (g *Game) View(name string) (PlayerView, bool) {
	p := g.Player(name)
	if p == nil {
		return PlayerView{}, false
	}
	return PlayerView{
		Name:        p.Name,
		Persona:     p.Persona,
		Emotion:     p.CurrentEmotion,
		Stars:       p.Stars,
		Rock:        p.Cards[CardRock],
		Scissors:    p.Cards[CardScissors],
		Paper:       p.Cards[CardPaper],
		Money:       p.Money,
		InitialLoan: p.InitialLoan,
		Turn:        g.currentTurn,
		MaxTurns:    g.settings.MaxTurns,
		Others:      g.OtherPlayersInfo(p.Name),
		Dashboard:   g.DashboardInfo(),
		Rules:       g.RulesSummary(),
		ActionLog:   p.ActionLog(),
	}, true
}

// OtherPlayersInfo returns the public info of every active player except the
// excluded one.
func (g *Game) OtherPlayersInfo(exclude string) []PublicPlayer {
	var info []PublicPlayer
	for _, p := range g.ActivePlayers() {
		if p.Name != exclude {
			info = append(info, PublicPlayer{Name: p.Name, Stars: p.Stars})
		}
	}
	return info
}

// DashboardInfo returns the current scoreboard.
func (g *Game) DashboardInfo() Dashboard {
	var rock, scissors, paper int
	active := g.ActivePlayers()
	for _, p := range active {
		rock += p.Cards[CardRock]
		scissors += p.Cards[CardScissors]
		paper += p.Cards[CardPaper]
	}
	return Dashboard{
		AliveUsers:       len(active),
		RemainMinutes:    (g.settings.MaxTurns - g.currentTurn) * g.settings.MinutesPerTurn,
		AllRockCards:     rock,
		AllScissorsCards: scissors,
		AllPaperCards:    paper,
	}
}

// RulesSummary returns the static rule text given to the oracle as context.
func (g *Game) RulesSummary() string {
	s := g.settings
	return fmt.Sprintf(`## Limited Rock-Paper-Scissors: rule summary
- Starting resources: %d stars, %d cards of each type (%d cards total).
- Each turn you may face another player in a match or trade resources with them.
- Match: the winner takes one of the loser's stars; a draw moves nothing. The played cards are gone either way.
- Trade: stars, cards and money are all tradable, subject to mutual consent.
- Survival: within %d turns (%d minutes) you must 1) use up every card and 2) hold at least 3 stars.
- Elimination: dropping to 0 stars, or running out of time.
- Goal: satisfy the survival condition and leave the game (declare_out_of_game).
- Interactions: propose_trade and propose_match ask another player, who responds in kind.
- You may also do_nothing for a turn.
- The clock loses %d minutes per turn.`,
		s.InitialStars, s.InitialCardsEachType, s.InitialCardsEachType*3,
		s.MaxTurns, s.MaxTurns*s.MinutesPerTurn, s.MinutesPerTurn)
}
