package loadorder

import (
	"fmt"
	"slices"
	"strings"
)

// LoadOrder is the ordered list of plugins that defines the meaning of every
// GlobalFormID's load order index. Lookups are ASCII case-insensitive, storage
// keeps the original casing.
type LoadOrder struct {
	entries []string
}

// New creates a LoadOrder from the given plugin names, keeping the first occurrence
// of names that differ only in case
func New(names []string) *LoadOrder {
	lo := &LoadOrder{entries: make([]string, 0, len(names))}
	for _, name := range names {
		if _, ok := lo.FindIndex(name); ok {
			continue
		}
		lo.entries = append(lo.entries, name)
	}
	return lo
}

// FindIndex returns the index of the named plugin
func (lo *LoadOrder) FindIndex(name string) (uint16, bool) {
	for i, entry := range lo.entries {
		if equalFoldASCII(entry, name) {
			return uint16(i), true
		}
	}
	return 0, false
}

// Get returns the plugin name at index
func (lo *LoadOrder) Get(index uint16) (string, bool) {
	if int(index) >= len(lo.entries) {
		return "", false
	}
	return lo.entries[index], true
}

// Len returns the number of plugins
func (lo *LoadOrder) Len() int {
	return len(lo.entries)
}

// IsEmpty reports whether the load order has no plugins
func (lo *LoadOrder) IsEmpty() bool {
	return len(lo.entries) == 0
}

// Names returns a copy of the plugin names in order
func (lo *LoadOrder) Names() []string {
	return slices.Clone(lo.entries)
}

// DrainUnused removes every plugin whose index is not in used. It returns the
// mapping from old index to new index for every surviving plugin and true, or
// nil and false when nothing was removed. Indices outside the load order are ignored.
//
// Callers must rewrite every GlobalFormID minted before the call through the
// returned mapping.
func (lo *LoadOrder) DrainUnused(used []uint16) (map[uint16]uint16, bool) {
	sorted := slices.Clone(used)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	keep := make(map[uint16]string, len(sorted))
	for _, index := range sorted {
		if name, ok := lo.Get(index); ok {
			keep[index] = name
		}
	}

	if len(keep) == len(lo.entries) {
		return nil, false
	}

	kept := make([]string, 0, len(keep))
	for i, entry := range lo.entries {
		if _, ok := keep[uint16(i)]; ok {
			kept = append(kept, entry)
		}
	}
	lo.entries = kept

	remap := make(map[uint16]uint16, len(keep))
	for oldIndex, name := range keep {
		newIndex, _ := lo.FindIndex(name)
		remap[oldIndex] = newIndex
	}
	return remap, true
}

// String renders one "NNNN: name" line per plugin
func (lo *LoadOrder) String() string {
	lines := make([]string, len(lo.entries))
	for i, entry := range lo.entries {
		lines[i] = fmt.Sprintf("%04d: %s", i, entry)
	}
	return strings.Join(lines, "\n")
}

// equalFoldASCII compares two strings ignoring ASCII case only
func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
