// Package neutralizer rewrites dilemma text into culturally neutral wording.
package neutralizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Neutralizer applies an ordered replacement table. It is safe for
// concurrent use.
type Neutralizer struct {
	table    []Replacement
	combined *regexp.Regexp
	anchored []*regexp.Regexp
}

// New compiles a replacement table. An empty table yields a Neutralizer that
// returns every input unchanged.
func New(table []Replacement) (*Neutralizer, error) {
	n := &Neutralizer{table: table, anchored: make([]*regexp.Regexp, len(table))}
	if len(table) == 0 {
		return n, nil
	}

	alts := make([]string, len(table))
	for i, r := range table {
		re, err := regexp.Compile(`(?i)^(?:` + r.Pattern + `)$`)
		if err != nil {
			return nil, fmt.Errorf("neutralizer: pattern %d %q: %w", i, r.Pattern, err)
		}
		n.anchored[i] = re
		alts[i] = `(?:` + r.Pattern + `)`
	}

	combined, err := regexp.Compile(`(?i)` + strings.Join(alts, "|"))
	if err != nil {
		return nil, fmt.Errorf("neutralizer: combined pattern: %w", err)
	}
	n.combined = combined
	return n, nil
}

// MustDefault compiles DefaultTable and panics on error.
func MustDefault() *Neutralizer {
	n, err := New(DefaultTable)
	if err != nil {
		panic(err)
	}
	return n
}

// Text rewrites every match. At each position the earliest table entry that
// matches wins; text with no match is returned unchanged.
func (n *Neutralizer) Text(s string) string {
	if n.combined == nil {
		return s
	}
	return n.combined.ReplaceAllStringFunc(s, func(m string) string {
		for i, re := range n.anchored {
			if re.MatchString(m) {
				return n.table[i].Neutral
			}
		}
		return m
	})
}

// Record rewrites the title, vignette and option text of one JSON-encoded
// dilemma. Every other field, including unknown ones, is carried through.
// The output is compact JSON without HTML escaping.
func (n *Neutralizer) Record(raw []byte) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode dilemma: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("decode dilemma: expected a JSON object")
	}

	for _, key := range []string{"title", "vignette"} {
		if v, ok := fields[key]; ok {
			rewritten, err := n.rawString(v)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			fields[key] = rewritten
		}
	}

	if v, ok := fields["options"]; ok {
		var opts []map[string]json.RawMessage
		if err := json.Unmarshal(v, &opts); err != nil {
			return nil, fmt.Errorf("field \"options\": %w", err)
		}
		for i, opt := range opts {
			if t, ok := opt["text"]; ok {
				rewritten, err := n.rawString(t)
				if err != nil {
					return nil, fmt.Errorf("option %d text: %w", i, err)
				}
				opt["text"] = rewritten
			}
		}
		encoded, err := marshal(opts)
		if err != nil {
			return nil, err
		}
		fields["options"] = encoded
	}

	return marshal(fields)
}

func (n *Neutralizer) rawString(v json.RawMessage) (json.RawMessage, error) {
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, err
	}
	return marshal(n.Text(s))
}

func marshal(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
