package formid

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/shared"
)

// GlobalFormID is a value object addressing a record across the whole dataset.
// LoadOrderIndex is the owning plugin's position in the LoadOrder, ID is that
// plugin's local record id.
type GlobalFormID struct {
	LoadOrderIndex uint16
	ID             uint32
}

// New creates a GlobalFormID
func New(loadOrderIndex uint16, id uint32) GlobalFormID {
	return GlobalFormID{LoadOrderIndex: loadOrderIndex, ID: id}
}

// Parse parses the NNNN:XXXXXX text form produced by String
func Parse(s string) (GlobalFormID, error) {
	indexPart, idPart, ok := strings.Cut(s, ":")
	if !ok {
		return GlobalFormID{}, shared.NewParseError(s, "missing ':' separator")
	}

	index, err := strconv.ParseUint(indexPart, 10, 16)
	if err != nil {
		return GlobalFormID{}, shared.NewParseError(s, "load order index is not a 16-bit unsigned decimal")
	}

	id, err := strconv.ParseUint(idPart, 16, 32)
	if err != nil {
		return GlobalFormID{}, shared.NewParseError(s, "form id is not a 32-bit hexadecimal value")
	}

	return New(uint16(index), uint32(id)), nil
}

// String returns the NNNN:XXXXXX representation
func (g GlobalFormID) String() string {
	return fmt.Sprintf("%04d:%06x", g.LoadOrderIndex, g.ID)
}

// WithLoadOrderIndex returns a copy pointing at a different load order slot
func (g GlobalFormID) WithLoadOrderIndex(index uint16) GlobalFormID {
	return GlobalFormID{LoadOrderIndex: index, ID: g.ID}
}

// Compare orders lexicographically on (LoadOrderIndex, ID)
func (g GlobalFormID) Compare(other GlobalFormID) int {
	if c := cmp.Compare(g.LoadOrderIndex, other.LoadOrderIndex); c != 0 {
		return c
	}
	return cmp.Compare(g.ID, other.ID)
}

// Less reports whether g sorts before other
func (g GlobalFormID) Less(other GlobalFormID) bool {
	return g.Compare(other) < 0
}

// Equals checks if two GlobalFormIDs are equal
func (g GlobalFormID) Equals(other GlobalFormID) bool {
	return g == other
}

// MarshalText implements encoding.TextMarshaler so the id is rendered in its text form in JSON
func (g GlobalFormID) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (g *GlobalFormID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
