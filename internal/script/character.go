package script

import (
	"fmt"
	"strings"

	"github.com/iamvalenciia/zero-sum/internal/services"
)

// Character identifies a speaking character. The set is closed; scripts
// referring to anything outside it (directly or through an alias) fail to
// load.
type Character int

const (
	CharacterUnknown Character = iota
	CharacterAnalyst
	CharacterSkeptic
)

func (c Character) String() string {
	switch c {
	case CharacterAnalyst:
		return "analyst"
	case CharacterSkeptic:
		return "skeptic"
	default:
		return "unknown"
	}
}

// DefaultPose returns the pose used before the first declared pose span.
func (c Character) DefaultPose() string {
	switch c {
	case CharacterSkeptic:
		return "thinking"
	default:
		return "neutral"
	}
}

// characterAliases maps legacy script names onto the closed character set.
// Built once; extended only alongside the enum.
var characterAliases = map[string]Character{
	"analyst":        CharacterAnalyst,
	"sister_faith":   CharacterAnalyst,
	"skeptic":        CharacterSkeptic,
	"brother_marcus": CharacterSkeptic,
}

// ParseCharacter resolves a script character name through the alias table.
func ParseCharacter(name string) (Character, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := characterAliases[key]; ok {
		return c, nil
	}
	return CharacterUnknown, services.Wrap(services.ErrValidation, "script", "parse character",
		fmt.Sprintf("unknown character %q", name), nil)
}

// Characters returns the closed character set in declaration order.
func Characters() []Character {
	return []Character{CharacterAnalyst, CharacterSkeptic}
}
