package plugin

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
)

// Top level record types
const (
	TypeIngredient  = "INGR"
	TypeMagicEffect = "MGEF"
)

// Subrecord is a typed field of a record. Data is the raw payload.
type Subrecord struct {
	Type string
	Data []byte
}

// Record is a raw record read from a plugin file
type Record struct {
	Type string
	// FormID is the raw, plugin-local form id; its top byte is a master slot
	FormID     uint32
	HasFormID  bool
	Subrecords []Subrecord
	// ParseErr is set when the record body could not be read; Subrecords is then empty
	ParseErr error
}

// First returns the first subrecord of the given type
func (r *Record) First(subrecordType string) (Subrecord, bool) {
	for _, sr := range r.Subrecords {
		if sr.Type == subrecordType {
			return sr, true
		}
	}
	return Subrecord{}, false
}

// Source is one plugin file after reading: its header information and the records
// of the groups the decoder cares about
type Source struct {
	Name      string
	Masters   []string
	Localized bool
	Records   []Record
}

// DecodeZString decodes a null-terminated Windows-1252 string. Bytes after the
// first null are ignored; a missing terminator is tolerated.
func DecodeZString(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	if len(data) == 0 {
		return ""
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}
