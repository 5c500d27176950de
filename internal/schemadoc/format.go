package schemadoc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a document encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrFormat, path)
	}
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("schemadoc: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// EncodeCBOR serializes doc as canonical CBOR, so equal documents encode to
// equal bytes.
func EncodeCBOR(doc Document) ([]byte, error) {
	return cborEncMode.Marshal(doc)
}

// DecodeCBOR deserializes a document written by EncodeCBOR.
func DecodeCBOR(data []byte) (Document, error) {
	var doc Document
	if err := cbor.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("schemadoc: unmarshal cbor: %w", err)
	}
	return doc, nil
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (Document, error) {
	var doc Document
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("schemadoc: parse toml: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("schemadoc: parse yaml: %w", err)
		}
	case FormatCBOR:
		return DecodeCBOR(data)
	default:
		return Document{}, fmt.Errorf("%w: %q", ErrFormat, format)
	}
	return doc, nil
}

// Encode serializes doc in the given format.
func Encode(doc Document, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("schemadoc: encode toml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("schemadoc: encode yaml: %w", err)
		}
		return out, nil
	case FormatCBOR:
		return EncodeCBOR(doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
}

// Load reads and parses the document at path, choosing the format by
// extension.
func Load(path string) (Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("schemadoc: read %s: %w", path, err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Save writes doc to path in the format its extension names.
func Save(path string, doc Document) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(doc, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("schemadoc: write %s: %w", path, err)
	}
	return nil
}
