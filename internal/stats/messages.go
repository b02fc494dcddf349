package stats

import (
	"fmt"
	"strings"
)

// Tier grades a day's total volume.
type Tier int

const (
	TierNone Tier = iota
	TierModerate
	TierHeavy
)

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierModerate:
		return "moderate"
	case TierHeavy:
		return "heavy"
	}
	return "unknown"
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	for _, c := range []Tier{TierNone, TierModerate, TierHeavy} {
		if c.String() == string(b) {
			*t = c
			return nil
		}
	}
	return fmt.Errorf("unknown tier %q", b)
}

// StatusTier grades totalVolume: nothing, under HeavyVolume, or at least it.
func StatusTier(totalVolume int) Tier {
	switch {
	case totalVolume <= 0:
		return TierNone
	case totalVolume < HeavyVolume:
		return TierModerate
	default:
		return TierHeavy
	}
}

// Message is what the status panel shows for a tier.
type Message struct {
	Tier Tier   `json:"tier"`
	Text string `json:"text"`
	Icon string `json:"icon"`
}

var messages = map[Tier]Message{
	TierNone:     {Tier: TierNone, Text: "Nicely done, keep it up!", Icon: "images/1.gif"},
	TierModerate: {Tier: TierModerate, Text: "A small drink is a pleasure, a big one is a problem.", Icon: "images/2.gif"},
	TierHeavy:    {Tier: TierHeavy, Text: "Still drinking?! Still?!", Icon: "images/3.gif"},
}

// StatusMessage returns the panel message for tier.
func StatusMessage(tier Tier) Message {
	if m, ok := messages[tier]; ok {
		return m
	}
	return messages[TierNone]
}

// CupUnit is the display unit for a drink type: beer comes by the bottle.
func CupUnit(drinkType string) string {
	switch strings.ToLower(strings.TrimSpace(drinkType)) {
	case "beer", "啤酒":
		return "bottle"
	}
	return "cup"
}
