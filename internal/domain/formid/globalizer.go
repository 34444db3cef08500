package formid

import "github.com/mickdekkers/skyrim-alchemy-go/internal/domain/shared"

const (
	// masterSlotShift selects the top byte of a raw form ID
	masterSlotShift = 24
	// localIDMask selects the record id below the master slot
	localIDMask = 0x00FFFFFF
)

// IndexResolver looks up a plugin's position in the load order
type IndexResolver interface {
	FindIndex(name string) (uint16, bool)
}

// Globalizer turns the raw form IDs found inside one plugin into GlobalFormIDs.
//
// The top byte of a raw form ID is a slot into the plugin's own master list:
// slot == len(masters) designates the plugin itself, a smaller slot names that
// master. The owner is then looked up in the load order.
type Globalizer struct {
	source    string
	masters   []string
	loadOrder IndexResolver
}

// NewGlobalizer creates a Globalizer for the plugin named source with the given masters
func NewGlobalizer(source string, masters []string, loadOrder IndexResolver) *Globalizer {
	return &Globalizer{
		source:    source,
		masters:   masters,
		loadOrder: loadOrder,
	}
}

// Source returns the plugin the globalizer resolves for
func (g *Globalizer) Source() string {
	return g.source
}

// Owner resolves the plugin owning a raw form ID
func (g *Globalizer) Owner(raw uint32) (string, error) {
	slot := uint8(raw >> masterSlotShift)
	switch {
	case int(slot) == len(g.masters):
		return g.source, nil
	case int(slot) < len(g.masters):
		return g.masters[slot], nil
	default:
		return "", shared.NewUnresolvedMasterReferenceError(g.source, slot, len(g.masters))
	}
}

// Globalize resolves a raw form ID to a GlobalFormID
func (g *Globalizer) Globalize(raw uint32) (GlobalFormID, error) {
	owner, err := g.Owner(raw)
	if err != nil {
		return GlobalFormID{}, err
	}

	index, ok := g.loadOrder.FindIndex(owner)
	if !ok {
		return GlobalFormID{}, shared.NewSourceNotInLoadOrderError(owner)
	}

	return New(index, raw&localIDMask), nil
}
