package commands_test

import (
	"context"
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/adapters/esp"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/common"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/gamedata/commands"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/formid"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/plugin"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/shared"
)

// Test doubles

type fakeGameFiles struct {
	order   []string
	sources map[string]*plugin.Source
	strings map[string]mapLookup
}

type mapLookup map[uint32]string

func (m mapLookup) Lookup(id uint32) (string, bool) {
	s, ok := m[id]
	return s, ok
}

func (f *fakeGameFiles) LoadOrder(context.Context) ([]string, error) { return f.order, nil }

func (f *fakeGameFiles) ReadPlugin(_ context.Context, name string) (*plugin.Source, error) {
	src, ok := f.sources[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return src, nil
}

func (f *fakeGameFiles) StringTables(name string) (plugin.StringLookup, error) {
	return f.strings[name], nil
}

type fakeStore struct {
	path     string
	compress bool
	written  *gamedata.GameData
}

func (s *fakeStore) Write(path string, gd *gamedata.GameData, compress bool) error {
	s.path, s.compress, s.written = path, compress, gd
	return nil
}

func (s *fakeStore) Read(string) (*gamedata.GameData, error) { return s.written, nil }

type fakeRepo struct{ saved map[string]*gamedata.GameData }

func (r *fakeRepo) Save(_ context.Context, id, label string, gd *gamedata.GameData) (*gamedata.SnapshotInfo, error) {
	if r.saved == nil {
		r.saved = make(map[string]*gamedata.GameData)
	}
	r.saved[id] = gd
	return &gamedata.SnapshotInfo{ID: id, Label: label}, nil
}

func (r *fakeRepo) Load(context.Context, string) (*gamedata.GameData, *gamedata.SnapshotInfo, error) {
	return nil, nil, gamedata.ErrSnapshotNotFound
}

func (r *fakeRepo) Latest(context.Context) (*gamedata.SnapshotInfo, error) {
	return nil, gamedata.ErrSnapshotNotFound
}

func (r *fakeRepo) List(context.Context) ([]*gamedata.SnapshotInfo, error) { return nil, nil }

type fakeRecorder struct {
	plugins []string
	purged  int
	kept    int
}

func (r *fakeRecorder) RecordPlugin(name string, _, _, _ int, _ float64) {
	r.plugins = append(r.plugins, name)
}

func (r *fakeRecorder) RecordAssembly(purged, plugins int) { r.purged, r.kept = purged, plugins }

type fakeExports struct{ path, id string }

func (e *fakeExports) RecordExport(path, id string, _ time.Time) error {
	e.path, e.id = path, id
	return nil
}

type logEntry struct {
	level, message string
	metadata       map[string]interface{}
}

type recordingLogger struct{ entries []logEntry }

func (l *recordingLogger) Log(level, message string, metadata map[string]interface{}) {
	l.entries = append(l.entries, logEntry{level, message, metadata})
}

func (l *recordingLogger) find(message string) []logEntry {
	var out []logEntry
	for _, e := range l.entries {
		if e.message == message {
			out = append(out, e)
		}
	}
	return out
}

// Record builders

func sub(typ string, data []byte) plugin.Subrecord { return plugin.Subrecord{Type: typ, Data: data} }

func zs(s string) []byte { return append([]byte(s), 0) }

func u32(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }

func ingr(raw uint32, edid string, full []byte, effects ...uint32) plugin.Record {
	subs := []plugin.Subrecord{sub("EDID", zs(edid))}
	if full != nil {
		subs = append(subs, sub("FULL", full))
	}
	subs = append(subs, sub("ENIT", make([]byte, 8)))
	for _, e := range effects {
		efit := binary.LittleEndian.AppendUint32(nil, math.Float32bits(2))
		efit = binary.LittleEndian.AppendUint32(efit, 0)
		efit = binary.LittleEndian.AppendUint32(efit, 0)
		subs = append(subs, sub("EFID", u32(e)), sub("EFIT", efit))
	}
	return plugin.Record{Type: "INGR", FormID: raw, HasFormID: true, Subrecords: subs}
}

func mgef(raw uint32, edid, name string, flags uint32, cost float32) plugin.Record {
	data := binary.LittleEndian.AppendUint32(nil, flags)
	data = binary.LittleEndian.AppendUint32(data, math.Float32bits(cost))
	return plugin.Record{Type: "MGEF", FormID: raw, HasFormID: true, Subrecords: []plugin.Subrecord{
		sub("EDID", zs(edid)), sub("FULL", zs(name)), sub("DNAM", zs("Affects <mag> points.")), sub("DATA", data),
	}}
}

func installation() *fakeGameFiles {
	return &fakeGameFiles{
		order: []string{"Skyrim.esm", "Update.esm", "Mod.esp"},
		sources: map[string]*plugin.Source{
			"Skyrim.esm": {Name: "Skyrim.esm", Records: []plugin.Record{
				mgef(0x100, "AlchRestoreHealth", "Restore Health", 0, 0.5),
				mgef(0x200, "AlchDamageHealth", "Damage Health", gamedata.FlagHostile, 3),
				mgef(0x300, "AlchUnused", "Unused", 0, 1),
				ingr(0xa01, "Wheat", zs("Wheat"), 0x100, 0x200),
				ingr(0xa02, "Blisterwort", zs("Blisterwort"), 0x100),
				{Type: "INGR", FormID: 0xa03, HasFormID: true, Subrecords: []plugin.Subrecord{sub("FULL", zs("No Editor ID"))}},
				{Type: "WEAP", FormID: 0xb01, HasFormID: true},
			}},
			"Update.esm": {Name: "Update.esm", Masters: []string{"Skyrim.esm"}},
			"Mod.esp": {Name: "Mod.esp", Masters: []string{"Skyrim.esm"}, Localized: true, Records: []plugin.Record{
				ingr(0x00000a02, "Blisterwort", u32(2), 0x100, 0x200),
				ingr(0x01000d62, "ModRoot", u32(1), 0x01000999),
			}},
		},
		strings: map[string]mapLookup{"Mod.esp": {1: "Mod Root", 2: "Blisterwort (Modded)"}},
	}
}

func TestExportGameData(t *testing.T) {
	// Arrange
	logger := &recordingLogger{}
	ctx := common.WithLogger(context.Background(), logger)
	store := &fakeStore{}
	recorder := &fakeRecorder{}
	exports := &fakeExports{}
	handler := commands.NewExportGameDataHandler(installation(), store, nil, recorder, exports, nil)

	// Act
	resp, err := handler.Handle(ctx, &commands.ExportGameDataCommand{OutputPath: "game_data.json"})

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.ExportGameDataResponse)
	assert.Equal(t, []string{"Skyrim.esm", "Mod.esp"}, result.LoadOrder, "Update.esm contributes nothing")
	assert.Equal(t, 2, result.IngredientCount)
	assert.Equal(t, 2, result.MagicEffectCount, "unreferenced effects are dropped")
	assert.Equal(t, 1, result.DecodeFailures)
	require.Len(t, result.Purged, 1)
	assert.Equal(t, "Mod Root", result.Purged[0].Ingredient.DisplayName())

	require.NotNil(t, store.written)
	assert.Equal(t, "game_data.json", store.path)
	blisterwort, ok := store.written.Ingredient(formid.New(0, 0xa02))
	require.True(t, ok)
	assert.Equal(t, "Blisterwort (Modded)", blisterwort.DisplayName(), "later plugins win")
	assert.Len(t, blisterwort.Effects, 2)
	_, ok = store.written.MagicEffect(formid.New(0, 0x300))
	assert.False(t, ok)

	assert.Equal(t, []string{"Skyrim.esm", "Update.esm", "Mod.esp"}, recorder.plugins)
	assert.Equal(t, 1, recorder.purged)
	assert.Equal(t, 2, recorder.kept)
	assert.Equal(t, "game_data.json", exports.path)

	warnings := logger.find("Removed invalid ingredient")
	require.Len(t, warnings, 1)
	assert.Equal(t, common.LevelWarn, warnings[0].level)
	assert.Equal(t, []string{"0001:000999"}, warnings[0].metadata["unknown_effects"])
	failures := logger.find("Failed to decode records")
	require.Len(t, failures, 1)
	assert.Equal(t, 1, failures[0].metadata["count"])
}

// pluginBytes lays out a TES4 header and one top level group holding records
func pluginBytes(label string, masters []string, records ...plugin.Record) []byte {
	rec := func(typ string, formID uint32, body []byte) []byte {
		b := []byte(typ)
		b = binary.LittleEndian.AppendUint32(b, uint32(len(body)))
		b = binary.LittleEndian.AppendUint32(b, 0)
		b = binary.LittleEndian.AppendUint32(b, formID)
		b = append(b, make([]byte, 8)...)
		return append(b, body...)
	}
	encode := func(subs []plugin.Subrecord) []byte {
		var body []byte
		for _, sr := range subs {
			body = append(body, sr.Type...)
			body = binary.LittleEndian.AppendUint16(body, uint16(len(sr.Data)))
			body = append(body, sr.Data...)
		}
		return body
	}

	var header []plugin.Subrecord
	for _, m := range masters {
		header = append(header, sub("MAST", zs(m)))
	}
	var inner bytes.Buffer
	for _, r := range records {
		inner.Write(rec(r.Type, r.FormID, encode(r.Subrecords)))
	}
	grup := []byte("GRUP")
	grup = binary.LittleEndian.AppendUint32(grup, uint32(24+inner.Len()))
	grup = append(grup, label...)
	grup = append(grup, make([]byte, 12)...)

	out := rec("TES4", 0, encode(header))
	out = append(out, grup...)
	return append(out, inner.Bytes()...)
}

func TestExportGameData_MalformedRecordIsSkipped(t *testing.T) {
	// Arrange
	data := pluginBytes("INGR", []string{"Skyrim.esm"},
		ingr(0x01000d62, "ModRoot", zs("Mod Root"), 0x100, 0x200),
		ingr(0x01000d63, "Broken", zs("Broken"), 0x100),
	)
	// FULL of the second record claims more bytes than the record holds
	full := bytes.Index(data, []byte("FULL\x07\x00Broken"))
	require.Positive(t, full)
	binary.LittleEndian.PutUint16(data[full+4:], 200)

	mod, err := esp.NewReader().Read("Mod.esp", data)
	require.NoError(t, err)
	files := installation()
	files.sources["Mod.esp"] = mod

	logger := &recordingLogger{}
	ctx := common.WithLogger(context.Background(), logger)
	handler := commands.NewExportGameDataHandler(files, &fakeStore{}, nil, nil, nil, nil)

	// Act
	resp, err := handler.Handle(ctx, &commands.ExportGameDataCommand{OutputPath: "game_data.json"})

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.ExportGameDataResponse)
	assert.Equal(t, 3, result.IngredientCount, "Wheat, Blisterwort and ModRoot survive")
	assert.Equal(t, 2, result.DecodeFailures)
	failures := logger.find("Failed to decode records")
	require.Len(t, failures, 2)
	assert.Equal(t, "Mod.esp", failures[1].metadata["plugin"])
	assert.Equal(t, 1, failures[1].metadata["count"])
	details := failures[1].metadata["failures"].([]string)
	require.Len(t, details, 1)
	assert.Contains(t, details[0], "01000D63")
	assert.Contains(t, details[0], "FULL overruns")
}

func TestExportGameData_Store(t *testing.T) {
	repo := &fakeRepo{}
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	handler := commands.NewExportGameDataHandler(installation(), &fakeStore{}, repo, nil, nil, clock)

	resp, err := handler.Handle(context.Background(), &commands.ExportGameDataCommand{Store: true, Label: "nightly"})

	require.NoError(t, err)
	id := resp.(*commands.ExportGameDataResponse).SnapshotID
	assert.Regexp(t, `^nightly-20240301-[0-9a-f]{8}$`, id)
	assert.Contains(t, repo.saved, id)
}

func TestExportGameData_Errors(t *testing.T) {
	ctx := context.Background()

	empty := &fakeGameFiles{}
	_, err := commands.NewExportGameDataHandler(empty, &fakeStore{}, nil, nil, nil, nil).
		Handle(ctx, &commands.ExportGameDataCommand{OutputPath: "x.json"})
	assert.ErrorIs(t, err, commands.ErrEmptyLoadOrder)

	missing := installation()
	missing.order = append(missing.order, "Gone.esp")
	_, err = commands.NewExportGameDataHandler(missing, &fakeStore{}, nil, nil, nil, nil).
		Handle(ctx, &commands.ExportGameDataCommand{OutputPath: "x.json"})
	assert.True(t, errors.Is(err, os.ErrNotExist))

	handler := commands.NewExportGameDataHandler(installation(), &fakeStore{}, nil, nil, nil, nil)
	_, err = handler.Handle(ctx, &commands.ExportGameDataCommand{Store: true})
	assert.ErrorContains(t, err, "no database")
	_, err = handler.Handle(ctx, &commands.ExportGameDataCommand{})
	assert.ErrorContains(t, err, "nothing to export")
	_, err = handler.Handle(ctx, "wrong")
	assert.ErrorContains(t, err, "invalid request type")
}

func TestRetainReferencedMagicEffects(t *testing.T) {
	used, unused := formid.New(0, 1), formid.New(0, 2)
	ingredients := map[formid.GlobalFormID]gamedata.Ingredient{
		formid.New(0, 10): gamedata.NewIngredient(formid.New(0, 10), "A", nil,
			[]gamedata.IngredientEffect{{GlobalFormID: used}}),
	}
	effects := map[formid.GlobalFormID]gamedata.MagicEffect{
		used:   {GlobalFormID: used},
		unused: {GlobalFormID: unused},
	}

	got := commands.RetainReferencedMagicEffects(ingredients, effects)

	assert.Len(t, got, 1)
	assert.Contains(t, got, used)
}
