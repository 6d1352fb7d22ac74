package a2a

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Part kind discriminator values.
const (
	PartKindText = "text"
	PartKindData = "data"
	PartKindFile = "file"
)

// Part represents a polymorphic segment of message or artifact content.
// Concrete part types implement the unexported isPart marker enabling a
// closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text     string         `json:"text"`               // Plain UTF-8 text
	Metadata map[string]any `json:"metadata,omitempty"` // Optional producer-provided metadata
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// MarshalJSON adds the "text" kind discriminator.
func (p TextPart) MarshalJSON() ([]byte, error) {
	type alias TextPart

	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{Kind: PartKindText, alias: alias(p)})
}

// DataPart is a structured data segment (e.g. a JSON object map).
type DataPart struct {
	Data     map[string]any `json:"data"` // Structured key/value payload
	Metadata map[string]any `json:"metadata,omitempty"`
}

// isPart implements the Part interface for DataPart.
func (DataPart) isPart() {}

// MarshalJSON adds the "data" kind discriminator.
func (p DataPart) MarshalJSON() ([]byte, error) {
	type alias DataPart

	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{Kind: PartKindData, alias: alias(p)})
}

// FileContent is the file payload of a FilePart. Exactly one of Bytes
// (base64 encoded contents) or URI should be set.
type FileContent struct {
	Name     string `json:"name,omitempty"`     // Original filename hint
	MimeType string `json:"mimeType,omitempty"` // Optional MIME type
	Bytes    string `json:"bytes,omitempty"`    // Base64 encoded contents (if inlined)
	URI      string `json:"uri,omitempty"`      // External retrieval URI (if not inlined)
}

// FilePart is a file attachment segment.
type FilePart struct {
	File     FileContent    `json:"file"` // File metadata / reference
	Metadata map[string]any `json:"metadata,omitempty"`
}

// isPart implements the Part interface for FilePart.
func (FilePart) isPart() {}

// MarshalJSON adds the "file" kind discriminator.
func (p FilePart) MarshalJSON() ([]byte, error) {
	type alias FilePart

	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{Kind: PartKindFile, alias: alias(p)})
}

// Parts is an ordered heterogeneous list of content parts with JSON support
// for the kind-discriminated union encoding.
type Parts []Part

// Text concatenates the text parts, newline separated. Non-text parts are
// skipped.
func (p Parts) Text() string {
	texts := make([]string, 0, len(p))

	for _, part := range p {
		if tp, ok := part.(TextPart); ok {
			texts = append(texts, tp.Text)
		}
	}

	return strings.Join(texts, "\n")
}

// UnmarshalJSON decodes each element through UnmarshalPart.
func (p *Parts) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	parts := make(Parts, 0, len(raws))

	for _, raw := range raws {
		part, err := UnmarshalPart(raw)
		if err != nil {
			return err
		}

		parts = append(parts, part)
	}

	*p = parts

	return nil
}

// UnmarshalPart decodes a single part from its JSON encoding, dispatching on
// the "kind" discriminator. Unknown kinds are an error.
func UnmarshalPart(data []byte) (Part, error) {
	var probe struct {
		Kind string `json:"kind"`
	}

	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode part: %w", err)
	}

	switch probe.Kind {
	case PartKindText:
		var part TextPart
		if err := json.Unmarshal(data, &part); err != nil {
			return nil, fmt.Errorf("decode text part: %w", err)
		}

		return part, nil
	case PartKindData:
		var part DataPart
		if err := json.Unmarshal(data, &part); err != nil {
			return nil, fmt.Errorf("decode data part: %w", err)
		}

		return part, nil
	case PartKindFile:
		var part FilePart
		if err := json.Unmarshal(data, &part); err != nil {
			return nil, fmt.Errorf("decode file part: %w", err)
		}

		return part, nil
	default:
		return nil, fmt.Errorf("unknown part kind %q", probe.Kind)
	}
}
