// Package overrides rewrites firmware setting defaults in the settings
// source from values supplied in the project's config.json.
package overrides

import (
	"errors"
	"fmt"
	"os"

	"github.com/muhammadmuzzammil1998/jsonc"
	"github.com/tidwall/gjson"
)

// Document is a parsed configuration document. The zero value is the empty
// document, which overrides nothing.
type Document struct {
	raw []byte
}

// ParseDocument parses a JSON object. Line and block comments are
// tolerated.
func ParseDocument(data []byte) (Document, error) {
	clean := jsonc.ToJSON(data)
	if !gjson.ValidBytes(clean) {
		return Document{}, errors.New("invalid JSON")
	}
	if !gjson.ParseBytes(clean).IsObject() {
		return Document{}, errors.New("top level is not an object")
	}
	return Document{raw: clean}, nil
}

// LoadDocument reads the document at path. A missing file yields the empty
// document and a nil error.
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, nil
		}
		return Document{}, err
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return Document{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Empty reports whether the document holds no keys.
func (d Document) Empty() bool {
	if len(d.raw) == 0 {
		return true
	}
	empty := true
	gjson.ParseBytes(d.raw).ForEach(func(_, _ gjson.Result) bool {
		empty = false
		return false
	})
	return empty
}

// Lookup returns the value at a dotted path such as "wifi.ssid". Null values
// and empty strings are reported as absent.
func (d Document) Lookup(path string) (gjson.Result, bool) {
	if len(d.raw) == 0 {
		return gjson.Result{}, false
	}
	v := gjson.GetBytes(d.raw, path)
	if !v.Exists() || v.Type == gjson.Null {
		return v, false
	}
	if v.Type == gjson.String && v.Str == "" {
		return v, false
	}
	return v, true
}
