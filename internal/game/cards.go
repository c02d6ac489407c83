package game

import "fmt"

// CardType represents one of the three playable card types.
type CardType int

const (
	CardRock CardType = iota
	CardScissors
	CardPaper
)

// AllCardTypes lists the card types in canonical order.
var AllCardTypes = []CardType{CardRock, CardScissors, CardPaper}

func (c CardType) String() string {
	switch c {
	case CardRock:
		return "rock"
	case CardScissors:
		return "scissors"
	case CardPaper:
		return "paper"
	default:
		return fmt.Sprintf("CARD_%d", int(c))
	}
}

// ParseCardType converts the wire representation of a card into a CardType.
func ParseCardType(s string) (CardType, error) {
	switch s {
	case "rock":
		return CardRock, nil
	case "scissors":
		return CardScissors, nil
	case "paper":
		return CardPaper, nil
	default:
		return 0, fmt.Errorf("unknown card type %q", s)
	}
}

// Beats reports whether c wins against other under the cyclic dominance rule:
// rock beats scissors, scissors beats paper, paper beats rock.
func (c CardType) Beats(other CardType) bool {
	switch c {
	case CardRock:
		return other == CardScissors
	case CardScissors:
		return other == CardPaper
	case CardPaper:
		return other == CardRock
	default:
		return false
	}
}
