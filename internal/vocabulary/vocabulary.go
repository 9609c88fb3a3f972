// Package vocabulary loads the controlled set of value labels that dilemma
// options may be tagged with.
package vocabulary

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Vocabulary is the controlled tag set. The zero value contains no tags.
type Vocabulary struct {
	descriptions map[string]string
}

type file struct {
	Tags map[string]any `yaml:"tags"`
}

// Load reads a YAML vocabulary file whose top-level "tags" mapping is keyed
// by tag name. Values may be a description string or any nested mapping.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vocabulary: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes vocabulary YAML.
func Parse(data []byte) (*Vocabulary, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("vocabulary: decode yaml: %w", err)
	}
	if len(f.Tags) == 0 {
		return nil, fmt.Errorf("vocabulary: no tags defined")
	}

	v := &Vocabulary{descriptions: make(map[string]string, len(f.Tags))}
	for tag, val := range f.Tags {
		desc, _ := val.(string)
		v.descriptions[tag] = desc
	}
	return v, nil
}

// New builds a vocabulary from a list of tags.
func New(tags ...string) *Vocabulary {
	v := &Vocabulary{descriptions: make(map[string]string, len(tags))}
	for _, t := range tags {
		v.descriptions[t] = ""
	}
	return v
}

// Contains reports whether tag is part of the vocabulary.
func (v *Vocabulary) Contains(tag string) bool {
	if v == nil {
		return false
	}
	_, ok := v.descriptions[tag]
	return ok
}

// Unknown returns the tags not in the vocabulary, in input order.
func (v *Vocabulary) Unknown(tags []string) []string {
	var out []string
	for _, t := range tags {
		if !v.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}

// Description returns the human-readable description of tag, if any.
func (v *Vocabulary) Description(tag string) string {
	if v == nil {
		return ""
	}
	return v.descriptions[tag]
}

// Tags returns every tag in sorted order.
func (v *Vocabulary) Tags() []string {
	if v == nil {
		return nil
	}
	out := make([]string, 0, len(v.descriptions))
	for t := range v.descriptions {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of tags.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.descriptions)
}
