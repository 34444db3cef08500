package snapshot

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
)

//go:embed schema.json
var schemaSource string

const schemaURL = "snapshot.schema.json"

// CompressedExt marks zstd compressed snapshots
const CompressedExt = ".zst"

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(schemaURL, schemaSource)
	})
	return schema, schemaErr
}

// Document is the persisted form of GameData
type Document struct {
	LoadOrder    []string               `json:"load_order"`
	Ingredients  []gamedata.Ingredient  `json:"ingredients"`
	MagicEffects []gamedata.MagicEffect `json:"magic_effects"`
}

// FromGameData captures gd with ingredients and magic effects sorted by id
func FromGameData(gd *gamedata.GameData) Document {
	doc := Document{
		LoadOrder:    gd.LoadOrder().Names(),
		Ingredients:  make([]gamedata.Ingredient, 0, gd.IngredientCount()),
		MagicEffects: make([]gamedata.MagicEffect, 0, gd.MagicEffectCount()),
	}
	if doc.LoadOrder == nil {
		doc.LoadOrder = []string{}
	}
	for _, ing := range gd.Ingredients() {
		doc.Ingredients = append(doc.Ingredients, *ing)
	}
	for _, mgef := range gd.MagicEffects() {
		doc.MagicEffects = append(doc.MagicEffects, *mgef)
	}
	return doc
}

// GameData rebuilds GameData from the document. The load order is compacted again.
func (d Document) GameData() (*gamedata.GameData, error) {
	return gamedata.FromSnapshot(d.LoadOrder, d.Ingredients, d.MagicEffects)
}

// Encode writes the document as indented JSON
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// Decode validates raw JSON against the snapshot schema and decodes it
func Decode(data []byte) (Document, error) {
	if err := Validate(data); err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return doc, nil
}

// Validate checks raw JSON against the snapshot schema
func Validate(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile snapshot schema: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("snapshot is not valid JSON: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("snapshot does not match schema: %w", err)
	}
	return nil
}

// Marshal encodes the document, zstd compressing it when compress is set
func Marshal(doc Document, compress bool) ([]byte, error) {
	var buf bytes.Buffer
	if !compress {
		if err := Encode(&buf, doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	if err := Encode(enc, doc); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a plain or zstd compressed document
func Unmarshal(data []byte) (Document, error) {
	raw, err := Decompress(data)
	if err != nil {
		return Document{}, err
	}
	return Decode(raw)
}

// Decompress returns data unchanged unless it starts with the zstd frame magic
func Decompress(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, zstdMagic) {
		return data, nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	return out, nil
}

// WriteFile writes the document to path. Paths ending in .zst are always compressed.
func WriteFile(path string, doc Document, compress bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", path, err)
	}
	defer f.Close()

	data, err := Marshal(doc, compress || strings.HasSuffix(path, CompressedExt))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(f, 256*1024)
	if _, err := bw.Write(data); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return f.Close()
}

// ReadFile reads and validates the snapshot at path
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	doc, err := Unmarshal(data)
	if err != nil {
		return Document{}, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return doc, nil
}

// Info summarizes a snapshot without decoding it fully
type Info struct {
	LoadOrder        []string `json:"load_order"`
	IngredientCount  int      `json:"ingredient_count"`
	MagicEffectCount int      `json:"magic_effect_count"`
	UnnamedCount     int      `json:"unnamed_ingredient_count"`
}

// Inspect reads summary counts from plain or compressed snapshot bytes
func Inspect(data []byte) (Info, error) {
	raw, err := Decompress(data)
	if err != nil {
		return Info{}, err
	}
	if !gjson.ValidBytes(raw) {
		return Info{}, fmt.Errorf("snapshot is not valid JSON")
	}
	result := gjson.ParseBytes(raw)
	info := Info{
		IngredientCount:  int(result.Get("ingredients.#").Int()),
		MagicEffectCount: int(result.Get("magic_effects.#").Int()),
	}
	result.Get("ingredients").ForEach(func(_, ing gjson.Result) bool {
		if ing.Get("name").Type == gjson.Null {
			info.UnnamedCount++
		}
		return true
	})
	result.Get("load_order").ForEach(func(_, v gjson.Result) bool {
		info.LoadOrder = append(info.LoadOrder, v.String())
		return true
	})
	return info, nil
}
