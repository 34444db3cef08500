package esp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/plugin"
)

const (
	headerSize = 24

	flagMaster     uint32 = 0x00000001
	flagLocalized  uint32 = 0x00000080
	flagLight      uint32 = 0x00000200
	flagCompressed uint32 = 0x00040000

	extendedSizeType = "XXXX"
)

// RecordHeader is the fixed header in front of every record
type RecordHeader struct {
	Type     string
	DataSize uint32
	Flags    uint32
	FormID   uint32
	Version  uint16
}

// Header is the information carried by a plugin's TES4 record
type Header struct {
	Masters   []string
	Localized bool
	Master    bool
	Light     bool
}

// Reader extracts the records of selected top level groups from plugin files
type Reader struct {
	groups map[string]bool
}

// NewReader creates a Reader descending only into the given top level groups.
// With no types it reads the ingredient and magic effect groups.
func NewReader(recordTypes ...string) *Reader {
	if len(recordTypes) == 0 {
		recordTypes = []string{plugin.TypeIngredient, plugin.TypeMagicEffect}
	}
	groups := make(map[string]bool, len(recordTypes))
	for _, t := range recordTypes {
		groups[t] = true
	}
	return &Reader{groups: groups}
}

// ReadFile reads the plugin at path. The plugin name is the file's base name.
func (r *Reader) ReadFile(path string) (*plugin.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin %s: %w", path, err)
	}
	return r.Read(filepath.Base(path), data)
}

// Read parses a whole plugin held in memory
func (r *Reader) Read(name string, data []byte) (*plugin.Source, error) {
	header, offset, err := ReadHeader(data)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", name, err)
	}

	src := &plugin.Source{
		Name:      name,
		Masters:   header.Masters,
		Localized: header.Localized,
	}
	for offset < len(data) {
		if len(data)-offset < headerSize {
			return nil, fmt.Errorf("plugin %s: truncated group header at offset %d", name, offset)
		}
		if typ := string(data[offset : offset+4]); typ != "GRUP" {
			return nil, fmt.Errorf("plugin %s: expected top level group at offset %d, found %q", name, offset, typ)
		}
		size := int(binary.LittleEndian.Uint32(data[offset+4:]))
		if size < headerSize || offset+size > len(data) {
			return nil, fmt.Errorf("plugin %s: group at offset %d has invalid size %d", name, offset, size)
		}
		label := string(data[offset+8 : offset+12])
		groupType := int32(binary.LittleEndian.Uint32(data[offset+12:]))
		if groupType == 0 && r.groups[label] {
			records, err := readGroupRecords(data[offset+headerSize : offset+size])
			if err != nil {
				return nil, fmt.Errorf("plugin %s: group %s: %w", name, label, err)
			}
			src.Records = append(src.Records, records...)
		}
		offset += size
	}
	return src, nil
}

// ReadHeader parses the leading TES4 record and returns the offset just past it
func ReadHeader(data []byte) (Header, int, error) {
	rh, body, next, err := readRecord(data, 0)
	if err != nil {
		return Header{}, 0, err
	}
	if rh.Type != "TES4" {
		return Header{}, 0, fmt.Errorf("not a plugin file: first record is %q", rh.Type)
	}
	subrecords, err := recordSubrecords(rh, body)
	if err != nil {
		return Header{}, 0, fmt.Errorf("TES4 header: %w", err)
	}
	h := Header{
		Localized: rh.Flags&flagLocalized != 0,
		Master:    rh.Flags&flagMaster != 0,
		Light:     rh.Flags&flagLight != 0,
	}
	for _, sr := range subrecords {
		if sr.Type == "MAST" {
			h.Masters = append(h.Masters, plugin.DecodeZString(sr.Data))
		}
	}
	return h, next, nil
}

func readGroupRecords(data []byte) ([]plugin.Record, error) {
	var records []plugin.Record
	offset := 0
	for offset < len(data) {
		if len(data)-offset < headerSize {
			return nil, fmt.Errorf("truncated header at offset %d", offset)
		}
		if string(data[offset:offset+4]) == "GRUP" {
			size := int(binary.LittleEndian.Uint32(data[offset+4:]))
			if size < headerSize || offset+size > len(data) {
				return nil, fmt.Errorf("nested group at offset %d has invalid size %d", offset, size)
			}
			nested, err := readGroupRecords(data[offset+headerSize : offset+size])
			if err != nil {
				return nil, err
			}
			records = append(records, nested...)
			offset += size
			continue
		}

		rh, body, next, err := readRecord(data, offset)
		if err != nil {
			return nil, err
		}
		rec := plugin.Record{
			Type:      rh.Type,
			FormID:    rh.FormID,
			HasFormID: rh.FormID != 0,
		}
		// A bad body only loses this record; the header still gives the next offset
		if rec.Subrecords, err = recordSubrecords(rh, body); err != nil {
			rec.Subrecords = nil
			rec.ParseErr = err
		}
		records = append(records, rec)
		offset = next
	}
	return records, nil
}

// readRecord returns the header and the raw body of the record at offset
func readRecord(data []byte, offset int) (RecordHeader, []byte, int, error) {
	if len(data)-offset < headerSize {
		return RecordHeader{}, nil, 0, fmt.Errorf("truncated record header at offset %d", offset)
	}
	h := data[offset : offset+headerSize]
	rh := RecordHeader{
		Type:     string(h[0:4]),
		DataSize: binary.LittleEndian.Uint32(h[4:8]),
		Flags:    binary.LittleEndian.Uint32(h[8:12]),
		FormID:   binary.LittleEndian.Uint32(h[12:16]),
		Version:  binary.LittleEndian.Uint16(h[20:22]),
	}
	start := offset + headerSize
	end := start + int(rh.DataSize)
	if end > len(data) {
		return RecordHeader{}, nil, 0, fmt.Errorf("%s record %08X overruns the file", rh.Type, rh.FormID)
	}
	return rh, data[start:end], end, nil
}

// recordSubrecords decompresses the body if needed and splits it into subrecords
func recordSubrecords(rh RecordHeader, body []byte) ([]plugin.Subrecord, error) {
	if rh.Flags&flagCompressed != 0 {
		var err error
		body, err = decompress(body)
		if err != nil {
			return nil, err
		}
	}
	return ParseSubrecords(body)
}

func decompress(body []byte) ([]byte, error) {
	if len(body) < 4 {
		return nil, fmt.Errorf("compressed record is truncated")
	}
	size := binary.LittleEndian.Uint32(body)
	zr, err := zlib.NewReader(bytes.NewReader(body[4:]))
	if err != nil {
		return nil, fmt.Errorf("failed to open compressed record: %w", err)
	}
	defer zr.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("failed to decompress record: %w", err)
	}
	return out, nil
}

// ParseSubrecords splits a record body into its subrecords
func ParseSubrecords(body []byte) ([]plugin.Subrecord, error) {
	var out []plugin.Subrecord
	offset := 0
	var extended uint32
	hasExtended := false
	for offset < len(body) {
		if len(body)-offset < 6 {
			return nil, fmt.Errorf("truncated subrecord header at offset %d", offset)
		}
		typ := string(body[offset : offset+4])
		size := int(binary.LittleEndian.Uint16(body[offset+4:]))
		if hasExtended {
			size = int(extended)
			hasExtended = false
		}
		start := offset + 6
		end := start + size
		if end > len(body) {
			return nil, fmt.Errorf("subrecord %s overruns the record", typ)
		}
		if typ == extendedSizeType {
			if size < 4 {
				return nil, fmt.Errorf("XXXX subrecord is truncated")
			}
			extended = binary.LittleEndian.Uint32(body[start:])
			hasExtended = true
			offset = end
			continue
		}
		out = append(out, plugin.Subrecord{Type: typ, Data: body[start:end]})
		offset = end
	}
	return out, nil
}
