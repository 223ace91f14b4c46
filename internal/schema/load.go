package schema

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"gopkg.in/yaml.v3"
)

// documents holds the mapping documents shipped with the binary, one per
// supported model+firmware combination.
//
//go:embed documents/*.yaml
var documents embed.FS

// document is the YAML shape of a mapping document.
type document struct {
	ModelID    string                   `yaml:"model_id"`
	FWCode     string                   `yaml:"fw_code"`
	Parameters map[string]documentEntry `yaml:"parameters"`
}

// documentEntry is the YAML shape of one parameter mapping.
type documentEntry struct {
	Key        string            `yaml:"key"`
	Kind       string            `yaml:"kind"`
	Conversion map[string]string `yaml:"conversion"`
	Options    map[string]string `yaml:"options"`
	Field      string            `yaml:"field"`
}

// Parse builds a Schema from raw YAML mapping document bytes.
//
// Every descriptor is validated structurally here so that malformed
// documents fail at load rather than on first use:
//   - wire key must be non-empty
//   - kind must be one of the five known kinds
//   - selects must carry an options table
//   - field markers are only valid on numbers and must be minT or maxT
//
// Parameters:
//   - data: Raw YAML document
//
// Returns:
//   - *Schema: Immutable loaded schema
//   - error: ErrInvalidDocument or ErrInvalidDescriptor describing the
//     first structural problem found
func Parse(data []byte) (*Schema, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if doc.ModelID == "" {
		return nil, fmt.Errorf("%w: model_id is required", ErrInvalidDocument)
	}
	if doc.FWCode == "" {
		return nil, fmt.Errorf("%w: fw_code is required", ErrInvalidDocument)
	}
	if len(doc.Parameters) == 0 {
		return nil, fmt.Errorf("%w: no parameters defined", ErrInvalidDocument)
	}

	s := &Schema{
		ModelID: doc.ModelID,
		FWCode:  doc.FWCode,
		byName:  make(map[string]*Descriptor, len(doc.Parameters)),
		byKind:  make(map[Kind][]string),
	}

	for name, entry := range doc.Parameters {
		d, err := buildDescriptor(name, entry)
		if err != nil {
			return nil, err
		}
		s.byName[name] = d
		s.byKind[d.Kind] = append(s.byKind[d.Kind], name)
	}

	// Deterministic iteration order for bulk queries.
	for kind := range s.byKind {
		sort.Strings(s.byKind[kind])
	}

	return s, nil
}

// buildDescriptor validates one document entry and converts it to a Descriptor.
func buildDescriptor(name string, entry documentEntry) (*Descriptor, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty parameter name", ErrInvalidDescriptor)
	}
	if entry.Key == "" {
		return nil, fmt.Errorf("%w: %q has no wire key", ErrInvalidDescriptor, name)
	}

	kind := Kind(entry.Kind)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q has unknown kind %q", ErrInvalidDescriptor, name, entry.Kind)
	}

	if kind == KindSelect && len(entry.Options) == 0 {
		return nil, fmt.Errorf("%w: select %q requires an options table", ErrInvalidDescriptor, name)
	}

	if entry.Field != "" {
		if kind != KindNumber {
			return nil, fmt.Errorf("%w: %q: field marker only valid on numbers", ErrInvalidDescriptor, name)
		}
		if entry.Field != FieldMinT && entry.Field != FieldMaxT {
			return nil, fmt.Errorf("%w: %q has invalid field marker %q", ErrInvalidDescriptor, name, entry.Field)
		}
	}

	return &Descriptor{
		Name:       name,
		WireKey:    entry.Key,
		Kind:       kind,
		Conversion: entry.Conversion,
		Options:    entry.Options,
		Field:      entry.Field,
	}, nil
}

// ForDevice loads the embedded mapping document matching a model and
// firmware code.
//
// Parameters:
//   - modelID: Device product code from the handshake (e.g., "PDPR1H1HAW100")
//   - fwCode: Firmware code from the handshake (e.g., "539187")
//
// Returns:
//   - *Schema: The matching schema
//   - error: ErrNotFound if no embedded document matches, or a parse error
//     if a document is malformed
func ForDevice(modelID, fwCode string) (*Schema, error) {
	entries, err := fs.ReadDir(documents, "documents")
	if err != nil {
		return nil, fmt.Errorf("reading embedded documents: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := documents.ReadFile("documents/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading embedded document %s: %w", entry.Name(), err)
		}
		s, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing embedded document %s: %w", entry.Name(), err)
		}
		if s.ModelID == modelID && s.FWCode == fwCode {
			return s, nil
		}
	}

	return nil, fmt.Errorf("%w: model=%q fw=%q", ErrNotFound, modelID, fwCode)
}
