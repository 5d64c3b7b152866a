// Package catalogue reads the declaration records a C++ front end emits.
//
// Two encodings are accepted. JSON is either a bare array of records or an object with a
// "declarations" array. TOML uses one [[declarations]] table per record.
package catalogue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	coreerrors "cxxbind/internal/core/errors"
	"cxxbind/internal/engine/api"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", coreerrors.Newf(coreerrors.CodeNotSupported, "unsupported catalogue extension %q", filepath.Ext(path)).
		WithContext(coreerrors.CtxPath, path)
}

type document struct {
	Declarations []api.RawDecl `json:"declarations" toml:"declarations"`
}

// Decode reads every record from r.
func Decode(r io.Reader, format Format) ([]api.RawDecl, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, coreerrors.Wrap(err, coreerrors.CodeInvalidCatalogue, "read catalogue")
	}
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatTOML:
		return decodeTOML(data)
	}
	return nil, coreerrors.Newf(coreerrors.CodeNotSupported, "unsupported catalogue format %q", format)
}

func decodeJSON(data []byte) ([]api.RawDecl, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	if trimmed[0] == '[' {
		var records []api.RawDecl
		if err := dec.Decode(&records); err != nil {
			return nil, coreerrors.Wrap(err, coreerrors.CodeInvalidCatalogue, "decode json catalogue")
		}
		return records, nil
	}
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, coreerrors.Wrap(err, coreerrors.CodeInvalidCatalogue, "decode json catalogue")
	}
	return doc.Declarations, nil
}

func decodeTOML(data []byte) ([]api.RawDecl, error) {
	var doc document
	meta, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, coreerrors.Wrap(err, coreerrors.CodeInvalidCatalogue, "decode toml catalogue")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, coreerrors.Newf(coreerrors.CodeInvalidCatalogue, "unknown catalogue keys: %s", strings.Join(keys, ", "))
	}
	return doc.Declarations, nil
}

// File is a catalogue stored on disk.
type File struct {
	Path string
}

func (f File) Load(ctx context.Context) ([]api.RawDecl, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format, err := FormatFor(f.Path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, coreerrors.AddContext(coreerrors.Wrap(err, coreerrors.CodeNotFound, "open catalogue"), coreerrors.CtxPath, f.Path)
	}
	defer file.Close()

	records, err := Decode(file, format)
	if err != nil {
		return nil, coreerrors.AddContext(err, coreerrors.CtxPath, f.Path)
	}
	return records, nil
}

func (f File) String() string {
	return fmt.Sprintf("catalogue %s", f.Path)
}
