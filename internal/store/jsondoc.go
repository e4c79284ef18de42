// ABOUTME: JSON document encoding shared by the local backends.
// ABOUTME: Documents are maps of top-level field name to raw JSON value.
package store

import (
	"encoding/json"
	"fmt"
	"time"
)

type rawDoc map[string]json.RawMessage

// encodeFields marshals each field, resolving ServerTimestamp against now.
func encodeFields(fields Fields, now time.Time) (rawDoc, error) {
	out := make(rawDoc, len(fields))
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			v = now.UTC()
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", k, err)
		}
		out[k] = b
	}
	return out, nil
}

// merge returns existing with every patched top-level field replaced.
func merge(existing, patch rawDoc) rawDoc {
	out := make(rawDoc, len(existing)+len(patch))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func decodeRaw(data []byte) (rawDoc, error) {
	var doc rawDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// matchesDate reports whether the document's date field equals date.
func (d rawDoc) matchesDate(date string) bool {
	raw, ok := d["date"]
	if !ok {
		return false
	}
	var got string
	if err := json.Unmarshal(raw, &got); err != nil {
		return false
	}
	return got == date
}

func jsonDocument(id string, doc rawDoc) Document {
	return Document{
		ID: id,
		decode: func(dst any) error {
			b, err := json.Marshal(doc)
			if err != nil {
				return err
			}
			return json.Unmarshal(b, dst)
		},
	}
}

func marshalRaw(doc rawDoc) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(b), nil
}
