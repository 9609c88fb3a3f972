package fetcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// NoTextContent is written when a document holds no extractable text.
const NoTextContent = "No text content found"

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	unsafePathRe = regexp.MustCompile(`[/\s]+`)
	reservedRe   = regexp.MustCompile(`[<>:"|?*]`)
)

// textFields are tried in order on every object.
var textFields = []string{"text", "he", "en", "content", "body"}

// maxFallbackDepth limits the all-values walk on objects without text fields.
const maxFallbackDepth = 3

// SanitizeFilename maps a tractate name to a file-name stem.
func SanitizeFilename(name string) string {
	s := unsafePathRe.ReplaceAllString(name, "_")
	return reservedRe.ReplaceAllString(s, "")
}

// ExtractText pulls readable text out of a Sefaria document. HTML tags are
// stripped, whitespace collapsed, and passages joined by a blank line.
func ExtractText(doc []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	root, err := decodeOrdered(dec)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	texts := walk(root, 0)
	if len(texts) == 0 {
		return NoTextContent, nil
	}
	return strings.Join(texts, "\n\n"), nil
}

func cleanHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func walk(v any, level int) []string {
	var out []string
	switch t := v.(type) {
	case string:
		if c := cleanHTML(t); c != "" {
			out = append(out, c)
		}
	case []any:
		for _, item := range t {
			out = append(out, walk(item, level+1)...)
		}
	case *object:
		for _, f := range textFields {
			if fv, ok := t.get(f); ok {
				out = append(out, walk(fv, level+1)...)
			}
		}
		if len(out) == 0 && level < maxFallbackDepth {
			for _, kv := range t.fields {
				out = append(out, walk(kv.value, level+1)...)
			}
		}
	}
	return out
}

// object is a JSON object that remembers key order.
type object struct {
	fields []field
}

type field struct {
	key   string
	value any
}

func (o *object) get(key string) (any, bool) {
	for _, f := range o.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

func decodeOrdered(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty document")
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &object{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", kt)
				}
				val, err := decodeOrdered(dec)
				if err != nil {
					return nil, err
				}
				obj.fields = append(obj.fields, field{key: key, value: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			var arr []any
			for dec.More() {
				val, err := decodeOrdered(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return t, nil
	}
}
