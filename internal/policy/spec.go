package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// Spec describes a table as changes applied to a base table.
//
// Example policy file:
//
//	name: brand-assets
//	version: "3"
//	base: strict
//	allowElements: [image]
//	allowAttributes:
//	  "*": [data-name]
//	denySchemes: [http]
type Spec struct {
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
	// Base is "default" or "strict". Empty means default.
	Base string `yaml:"base,omitempty" json:"base,omitempty"`

	AllowElements []string `yaml:"allowElements,omitempty" json:"allowElements,omitempty"`
	DenyElements  []string `yaml:"denyElements,omitempty" json:"denyElements,omitempty"`

	// AllowAttributes maps an element name to extra attributes for it.
	// The key "*" adds global attributes.
	AllowAttributes map[string][]string `yaml:"allowAttributes,omitempty" json:"allowAttributes,omitempty"`
	DenyAttributes  []string            `yaml:"denyAttributes,omitempty" json:"denyAttributes,omitempty"`

	AllowSchemes []string `yaml:"allowSchemes,omitempty" json:"allowSchemes,omitempty"`
	DenySchemes  []string `yaml:"denySchemes,omitempty" json:"denySchemes,omitempty"`

	AllowDataTypes []string `yaml:"allowDataTypes,omitempty" json:"allowDataTypes,omitempty"`
	DenyDataTypes  []string `yaml:"denyDataTypes,omitempty" json:"denyDataTypes,omitempty"`
}

// ParseSpec decodes a YAML policy document. Unknown keys are errors so a
// misspelt deny list is not silently ignored.
func ParseSpec(data []byte) (Spec, error) {
	var spec Spec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil && !errors.Is(err, io.EOF) {
		return Spec{}, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	return spec, nil
}

// Summary is a flattened, sorted view of a table for display.
type Summary struct {
	Name              string              `yaml:"name" json:"name"`
	Version           string              `yaml:"version" json:"version"`
	Elements          []string            `yaml:"elements" json:"elements"`
	GlobalAttributes  []string            `yaml:"globalAttributes" json:"globalAttributes"`
	ElementAttributes map[string][]string `yaml:"elementAttributes" json:"elementAttributes"`
	URIAttributes     []string            `yaml:"uriAttributes" json:"uriAttributes"`
	Schemes           []string            `yaml:"schemes" json:"schemes"`
	DataTypes         []string            `yaml:"dataTypes" json:"dataTypes"`
	LocalReferences   []string            `yaml:"localReferenceElements" json:"localReferenceElements"`
	AlwaysDenied      []string            `yaml:"alwaysDenied" json:"alwaysDenied"`
}

// Summary returns a sorted description of the table.
func (t *Table) Summary() Summary {
	perElem := make(map[string][]string, len(t.perElem))
	for _, el := range slices.Sorted(maps.Keys(t.perElem)) {
		if attrs := t.perElem[el].sorted(); len(attrs) > 0 {
			perElem[el] = attrs
		}
	}
	return Summary{
		Name:              t.name,
		Version:           t.version,
		Elements:          t.elements.sorted(),
		GlobalAttributes:  t.global.sorted(),
		ElementAttributes: perElem,
		URIAttributes:     t.uriAttrs.sorted(),
		Schemes:           t.schemes.sorted(),
		DataTypes:         t.dataTypes.sorted(),
		LocalReferences:   t.localRefs.sorted(),
		AlwaysDenied:      t.denied.sorted(),
	}
}
