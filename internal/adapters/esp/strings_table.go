package esp

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/plugin"
)

// TableKind identifies one of the three string table files of a localized plugin
type TableKind int

const (
	TableStrings TableKind = iota
	TableDLStrings
	TableILStrings
)

var tableExtensions = map[TableKind]string{
	TableStrings:   ".STRINGS",
	TableDLStrings: ".DLSTRINGS",
	TableILStrings: ".ILSTRINGS",
}

// StringTables holds the localized strings of one plugin
type StringTables struct {
	tables map[TableKind]map[uint32]string
}

// NewStringTables returns empty tables
func NewStringTables() *StringTables {
	return &StringTables{tables: make(map[TableKind]map[uint32]string)}
}

// Set installs the entries of one table
func (s *StringTables) Set(kind TableKind, entries map[uint32]string) {
	s.tables[kind] = entries
}

// Lookup searches STRINGS, then DLSTRINGS, then ILSTRINGS
func (s *StringTables) Lookup(id uint32) (string, bool) {
	for _, kind := range []TableKind{TableStrings, TableDLStrings, TableILStrings} {
		if v, ok := s.tables[kind][id]; ok {
			return v, true
		}
	}
	return "", false
}

// Len returns the number of entries across all tables
func (s *StringTables) Len() int {
	n := 0
	for _, t := range s.tables {
		n += len(t)
	}
	return n
}

// LoadStringTables reads the loose string tables "<plugin>_<language>.<EXT>" from dir.
// File names are matched case-insensitively. A missing table is left empty.
func LoadStringTables(dir, pluginName, language string) (*StringTables, error) {
	tables := NewStringTables()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return tables, nil
		}
		return nil, fmt.Errorf("failed to list strings directory %s: %w", dir, err)
	}

	stem := strings.TrimSuffix(pluginName, filepath.Ext(pluginName)) + "_" + language
	for kind, ext := range tableExtensions {
		want := stem + ext
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(entry.Name(), want) {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				return nil, fmt.Errorf("failed to read string table %s: %w", entry.Name(), err)
			}
			parsed, err := ParseStringTable(data, kind != TableStrings)
			if err != nil {
				return nil, fmt.Errorf("string table %s: %w", entry.Name(), err)
			}
			tables.Set(kind, parsed)
			break
		}
	}
	return tables, nil
}

// ParseStringTable decodes a string table: a u32 count, a u32 data size, count
// (id, offset) pairs and the string data. DL and IL tables prefix every string with
// its u32 length.
func ParseStringTable(data []byte, lengthPrefixed bool) (map[uint32]string, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("string table is truncated")
	}
	count := int(binary.LittleEndian.Uint32(data[0:4]))
	dataSize := int(binary.LittleEndian.Uint32(data[4:8]))
	dirEnd := 8 + count*8
	if count < 0 || dirEnd > len(data) {
		return nil, fmt.Errorf("string table directory of %d entries overruns the file", count)
	}
	block := data[dirEnd:]
	if dataSize < len(block) {
		block = block[:dataSize]
	}

	out := make(map[uint32]string, count)
	for i := 0; i < count; i++ {
		entry := data[8+i*8:]
		id := binary.LittleEndian.Uint32(entry[0:4])
		offset := int(binary.LittleEndian.Uint32(entry[4:8]))
		if offset >= len(block) {
			return nil, fmt.Errorf("string %d points outside the data block", id)
		}
		s := block[offset:]
		if lengthPrefixed {
			if len(s) < 4 {
				return nil, fmt.Errorf("string %d is truncated", id)
			}
			n := int(binary.LittleEndian.Uint32(s))
			if 4+n > len(s) {
				return nil, fmt.Errorf("string %d overruns the data block", id)
			}
			s = s[4 : 4+n]
		}
		out[id] = plugin.DecodeZString(s)
	}
	return out, nil
}
