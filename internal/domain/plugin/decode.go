package plugin

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/formid"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/shared"
)

// Kind is the closed set of record variants the decoder understands
type Kind int

const (
	KindUnknown Kind = iota
	KindIngredient
	KindMagicEffect
)

func (k Kind) String() string {
	switch k {
	case KindIngredient:
		return "ingredient"
	case KindMagicEffect:
		return "magic effect"
	default:
		return "unknown"
	}
}

// KindOf maps a record type tag to its variant
func KindOf(recordType string) Kind {
	switch recordType {
	case TypeIngredient:
		return KindIngredient
	case TypeMagicEffect:
		return KindMagicEffect
	default:
		return KindUnknown
	}
}

// Decoded is the result of decoding one record. Exactly one of Ingredient and
// MagicEffect is set, matching Kind; both are nil for KindUnknown.
type Decoded struct {
	Kind        Kind
	Ingredient  *gamedata.Ingredient
	MagicEffect *gamedata.MagicEffect
}

// GlobalizeFunc resolves a raw plugin-local form id to a GlobalFormID
type GlobalizeFunc func(raw uint32) (formid.GlobalFormID, error)

// StringResolver turns an lstring payload into text. For localized plugins the payload
// is a string table id; otherwise it is a zstring.
type StringResolver func(data []byte) string

// ZStringResolver resolves lstrings of plugins that are not localized
func ZStringResolver(data []byte) string {
	return DecodeZString(data)
}

// StringLookup finds a localized string by id
type StringLookup interface {
	Lookup(id uint32) (string, bool)
}

// LocalizedResolver resolves lstrings through string tables. Unknown ids resolve to "".
func LocalizedResolver(tables StringLookup) StringResolver {
	return func(data []byte) string {
		if len(data) < 4 {
			return ""
		}
		s, _ := tables.Lookup(binary.LittleEndian.Uint32(data))
		return s
	}
}

// DecodeError wraps a failure to decode a single record
type DecodeError struct {
	Plugin     string
	RecordType string
	FormID     uint32
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s record %08X in %s: %v", e.RecordType, e.FormID, e.Plugin, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoder converts raw records of one plugin into domain values
type Decoder struct {
	plugin    string
	globalize GlobalizeFunc
	resolve   StringResolver
}

func NewDecoder(plugin string, globalize GlobalizeFunc, resolve StringResolver) *Decoder {
	return &Decoder{plugin: plugin, globalize: globalize, resolve: resolve}
}

// Decode converts one record. Unknown record types decode to KindUnknown without error,
// even when their body could not be read.
func (d *Decoder) Decode(rec *Record) (Decoded, error) {
	kind := KindOf(rec.Type)
	if kind != KindUnknown && rec.ParseErr != nil {
		return Decoded{}, &DecodeError{Plugin: d.plugin, RecordType: rec.Type, FormID: rec.FormID, Err: rec.ParseErr}
	}
	var out Decoded
	var err error
	switch kind {
	case KindIngredient:
		var ing gamedata.Ingredient
		ing, err = d.decodeIngredient(rec)
		out = Decoded{Kind: kind, Ingredient: &ing}
	case KindMagicEffect:
		var mgef gamedata.MagicEffect
		mgef, err = d.decodeMagicEffect(rec)
		out = Decoded{Kind: kind, MagicEffect: &mgef}
	default:
		return Decoded{Kind: KindUnknown}, nil
	}
	if err != nil {
		return Decoded{}, &DecodeError{Plugin: d.plugin, RecordType: rec.Type, FormID: rec.FormID, Err: err}
	}
	return out, nil
}

// Result partitions the outcome of decoding a whole plugin
type Result struct {
	Ingredients  []gamedata.Ingredient
	MagicEffects []gamedata.MagicEffect
	Failures     []*DecodeError
	Skipped      int
}

// DecodeAll decodes every record. A failing record is collected in Failures and
// does not stop the others.
func (d *Decoder) DecodeAll(records []Record) Result {
	var res Result
	for i := range records {
		decoded, err := d.Decode(&records[i])
		if err != nil {
			res.Failures = append(res.Failures, err.(*DecodeError))
			continue
		}
		switch decoded.Kind {
		case KindIngredient:
			res.Ingredients = append(res.Ingredients, *decoded.Ingredient)
		case KindMagicEffect:
			res.MagicEffects = append(res.MagicEffects, *decoded.MagicEffect)
		default:
			res.Skipped++
		}
	}
	return res
}

func (d *Decoder) recordID(rec *Record) (formid.GlobalFormID, error) {
	if !rec.HasFormID {
		return formid.GlobalFormID{}, shared.NewRecordError(rec.Type, "record has no form ID")
	}
	return d.globalize(rec.FormID)
}

func editorID(rec *Record) (string, error) {
	sr, ok := rec.First("EDID")
	if !ok {
		return "", shared.NewRecordError(rec.Type, "record is missing editor ID")
	}
	return DecodeZString(sr.Data), nil
}

func (d *Decoder) optionalLString(rec *Record, subrecordType string) *string {
	sr, ok := rec.First(subrecordType)
	if !ok {
		return nil
	}
	s := d.resolve(sr.Data)
	return &s
}

func (d *Decoder) decodeIngredient(rec *Record) (gamedata.Ingredient, error) {
	id, err := d.recordID(rec)
	if err != nil {
		return gamedata.Ingredient{}, err
	}
	edid, err := editorID(rec)
	if err != nil {
		return gamedata.Ingredient{}, err
	}
	name := d.optionalLString(rec, "FULL")

	// effects are the EFID/EFIT pairs following the ENIT subrecord
	var effects []gamedata.IngredientEffect
	afterENIT := false
	var pending *uint32
	for _, sr := range rec.Subrecords {
		if !afterENIT {
			afterENIT = sr.Type == "ENIT"
			continue
		}
		switch sr.Type {
		case "EFID":
			if len(sr.Data) < 4 {
				return gamedata.Ingredient{}, shared.NewRecordError(rec.Type, "EFID is truncated")
			}
			raw := binary.LittleEndian.Uint32(sr.Data)
			pending = &raw
		case "EFIT":
			if pending == nil {
				return gamedata.Ingredient{}, shared.NewRecordError(rec.Type, "EFIT appeared before EFID")
			}
			if len(sr.Data) < 12 {
				return gamedata.Ingredient{}, shared.NewRecordError(rec.Type, "EFIT is truncated")
			}
			if *pending == 0 {
				return gamedata.Ingredient{}, shared.NewRecordError(rec.Type, "EFID is a null reference")
			}
			effectID, err := d.globalize(*pending)
			if err != nil {
				return gamedata.Ingredient{}, fmt.Errorf("effect %08X: %w", *pending, err)
			}
			effects = append(effects, gamedata.IngredientEffect{
				GlobalFormID: effectID,
				Magnitude:    math.Float32frombits(binary.LittleEndian.Uint32(sr.Data[0:4])),
				// bytes 4..8 hold the area, which alchemy ignores
				Duration: binary.LittleEndian.Uint32(sr.Data[8:12]),
			})
			pending = nil
		}
	}

	return gamedata.NewIngredient(id, edid, name, effects), nil
}

func (d *Decoder) decodeMagicEffect(rec *Record) (gamedata.MagicEffect, error) {
	id, err := d.recordID(rec)
	if err != nil {
		return gamedata.MagicEffect{}, err
	}
	edid, err := editorID(rec)
	if err != nil {
		return gamedata.MagicEffect{}, err
	}
	name := d.optionalLString(rec, "FULL")
	description := ""
	if desc := d.optionalLString(rec, "DNAM"); desc != nil {
		description = *desc
	}

	data, ok := rec.First("DATA")
	if !ok {
		return gamedata.MagicEffect{}, shared.NewRecordError(rec.Type, "record is missing data")
	}
	if len(data.Data) < 8 {
		return gamedata.MagicEffect{}, shared.NewRecordError(rec.Type, "DATA is truncated")
	}
	flags := binary.LittleEndian.Uint32(data.Data[0:4])
	baseCost := math.Float32frombits(binary.LittleEndian.Uint32(data.Data[4:8]))

	return gamedata.MagicEffect{
		GlobalFormID: id,
		EditorID:     edid,
		Name:         name,
		Description:  description,
		Flags:        flags,
		IsHostile:    flags&gamedata.FlagHostile != 0,
		BaseCost:     baseCost,
	}, nil
}
