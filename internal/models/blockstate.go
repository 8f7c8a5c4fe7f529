package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// variantEntry is one key of a blockstate's variants table. Entries keep
// document order: when no preferred key is present the first variant in
// the file wins, and a decoded Go map would scramble that.
type variantEntry struct {
	key   string
	model string
}

// PickModelRef chooses the default model reference from blockID's
// display-state file.
//
// Variants are preferred over multipart rules. Within the variants table
// the "" and "normal" keys win; otherwise the first entry naming a model
// is taken in document order. For multipart, the first rule's "apply"
// model is used.
func (r *Resolver) PickModelRef(blockID string) (string, error) {
	path := filepath.Join(r.BlockstatesDir, blockID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNoBlockstate, blockID)
		}
		return "", err
	}

	ref, err := pickFromBlockstate(data)
	if err != nil {
		return "", fmt.Errorf("blockstate %s: %w", blockID, err)
	}
	if ref == "" {
		return "", fmt.Errorf("%w: %s", ErrNoModelRef, blockID)
	}
	return ref, nil
}

func pickFromBlockstate(data []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", fmt.Errorf("root is not an object")
	}

	var (
		variants     []variantEntry
		haveVariants bool
		multipart    []json.RawMessage
	)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return "", err
		}
		key, _ := keyTok.(string)

		switch key {
		case "variants":
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return "", err
			}
			variants, err = decodeOrderedVariants(raw)
			if err != nil {
				return "", err
			}
			haveVariants = true
		case "multipart":
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return "", err
			}
			// A non-array multipart is ignored, like a non-object
			// variants table.
			_ = json.Unmarshal(raw, &multipart)
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return "", err
			}
		}
	}

	if haveVariants {
		if ref := chooseVariant(variants); ref != "" {
			return ref, nil
		}
	}
	if len(multipart) > 0 {
		var first struct {
			Apply json.RawMessage `json:"apply"`
		}
		if err := json.Unmarshal(multipart[0], &first); err != nil {
			return "", err
		}
		if len(first.Apply) > 0 {
			return modelOf(first.Apply), nil
		}
	}
	return "", nil
}

// decodeOrderedVariants walks the variants object token by token so the
// entry order survives. A variants value that is not an object decodes to
// no entries.
func decodeOrderedVariants(raw json.RawMessage) ([]variantEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil
	}

	var entries []variantEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		entries = append(entries, variantEntry{key: key, model: modelOf(value)})
	}
	return entries, nil
}

// modelOf extracts the model reference from a variant value, which is
// either an object or a list of candidate objects (first one wins).
func modelOf(raw json.RawMessage) string {
	var obj struct {
		Model string `json:"model"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Model != "" {
		return obj.Model
	}

	var list []struct {
		Model string `json:"model"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0].Model
	}
	return ""
}

// chooseVariant applies the selection order: preferred keys first, then
// document order.
func chooseVariant(entries []variantEntry) string {
	for _, preferred := range [...]string{"", "normal"} {
		for _, e := range entries {
			if e.key == preferred && e.model != "" {
				return e.model
			}
		}
	}
	for _, e := range entries {
		if e.model != "" {
			return e.model
		}
	}
	return ""
}
