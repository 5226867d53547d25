// Package manifestio decodes the JSON edit manifest: case-insensitive
// field names, optional stdin input.
//
// Decode only rejects a manifest that isn't valid JSON or whose shape is
// structurally wrong (e.g. "changes" isn't an array). A per-entry problem
// such as a replace missing "find" is not a decode error: it is a
// per-operation failure, and editor.Run is the place that classifies and
// reports it so one bad entry never prevents the rest of the manifest
// from being applied.
package manifestio

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Change is one entry of the manifest's "changes" list.
type Change struct {
	Type    string
	Find    string
	Replace string
	Anchor  string
	Text    string
}

// Comment is one entry of the manifest's "comments" list.
type Comment struct {
	Anchor string
	Text   string
}

// Manifest is the decoded edit manifest.
type Manifest struct {
	Author   string
	Changes  []Change
	Comments []Comment
}

// rawEntry is one undecoded JSON object (the manifest itself or one of its
// list entries), whose keys are matched case-insensitively via lookup.
type rawEntry map[string]json.RawMessage

// Decode reads and decodes a manifest from r, matching field names
// case-insensitively (so "Author", "author", "AUTHOR" are equivalent).
func Decode(r io.Reader) (*Manifest, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("manifestio: reading manifest: %w", err)
	}
	var top rawEntry
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("manifestio: manifest is not valid JSON: %w", err)
	}

	m := &Manifest{}
	if v, ok := lookup(top, "author"); ok {
		if err := json.Unmarshal(v, &m.Author); err != nil {
			return nil, fmt.Errorf("manifestio: \"author\" must be a string: %w", err)
		}
	}
	if v, ok := lookup(top, "changes"); ok {
		var rawChanges []rawEntry
		if err := json.Unmarshal(v, &rawChanges); err != nil {
			return nil, fmt.Errorf("manifestio: \"changes\" must be an array: %w", err)
		}
		for _, rc := range rawChanges {
			m.Changes = append(m.Changes, decodeChange(rc))
		}
	}
	if v, ok := lookup(top, "comments"); ok {
		var rawComments []rawEntry
		if err := json.Unmarshal(v, &rawComments); err != nil {
			return nil, fmt.Errorf("manifestio: \"comments\" must be an array: %w", err)
		}
		for _, rc := range rawComments {
			m.Comments = append(m.Comments, decodeComment(rc))
		}
	}
	return m, nil
}

// decodeChange pulls every recognized field out of a changes[] entry
// without validating them — field requirements vary by Type, and Type
// itself may be missing or unrecognized, so that judgment belongs to
// editor.Run, which turns a malformed entry into a failed Result rather
// than a decode error.
func decodeChange(raw rawEntry) Change {
	var c Change
	c.Type = stringField(raw, "type")
	c.Find = stringField(raw, "find")
	c.Replace = stringField(raw, "replace")
	c.Anchor = stringField(raw, "anchor")
	c.Text = stringField(raw, "text")
	return c
}

func decodeComment(raw rawEntry) Comment {
	var c Comment
	c.Anchor = stringField(raw, "anchor")
	c.Text = stringField(raw, "text")
	return c
}

func stringField(raw rawEntry, name string) string {
	v, ok := lookup(raw, name)
	if !ok {
		return ""
	}
	var s string
	_ = json.Unmarshal(v, &s)
	return s
}

// lookup finds a key in raw matching name case-insensitively.
func lookup(raw rawEntry, name string) (json.RawMessage, bool) {
	if v, ok := raw[name]; ok {
		return v, true
	}
	for k, v := range raw {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}
