package gamedata

import "github.com/mickdekkers/skyrim-alchemy-go/internal/domain/formid"

// Magic effect flag bits (MGEF DATA)
const (
	FlagHostile               uint32 = 0x00000001
	FlagNoDuration            uint32 = 0x00000200
	FlagNoMagnitude           uint32 = 0x00000400
	FlagPowerAffectsMagnitude uint32 = 0x00200000
	FlagPowerAffectsDuration  uint32 = 0x00400000
)

// MagicEffect is a named effect definition referenced by ingredients
type MagicEffect struct {
	GlobalFormID formid.GlobalFormID `json:"global_form_id"`
	EditorID     string              `json:"editor_id"`
	Name         *string             `json:"name"`
	// Description may embed <mag> and <dur> placeholders
	Description string  `json:"description"`
	Flags       uint32  `json:"flags"`
	IsHostile   bool    `json:"is_hostile"`
	BaseCost    float32 `json:"base_cost"`
}

// DisplayName returns the in-game name, falling back to the editor id
func (m *MagicEffect) DisplayName() string {
	if m.Name != nil {
		return *m.Name
	}
	return m.EditorID
}
