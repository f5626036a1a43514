package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format is a payload encoding for the task file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

const schemaVersion = 1

// FormatForPath picks the encoding from the file extension; JSON is the
// default.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".cbor":
		return FormatCBOR
	default:
		return FormatJSON
	}
}

// document is the persisted shape: an ordered list of [descriptor, text]
// pairs rather than a map, since descriptors cannot be map keys in JSON.
type document struct {
	Schema   int    `json:"schema" yaml:"schema" cbor:"schema"`
	Revision string `json:"revision,omitempty" yaml:"revision,omitempty" cbor:"revision,omitempty"`
	Tasks    []pair `json:"tasks" yaml:"tasks" cbor:"tasks"`
}

type pair struct {
	_    struct{} `cbor:",toarray"`
	Desc Descriptor
	Text string
}

func (p pair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Desc, p.Text})
}

func (p *pair) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("task entry has %d elements, want 2", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Desc); err != nil {
		return fmt.Errorf("task descriptor: %w", err)
	}
	return json.Unmarshal(raw[1], &p.Text)
}

func (p pair) MarshalYAML() (any, error) {
	return []any{p.Desc, p.Text}, nil
}

func (p *pair) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: task entry must be a two element list", node.Line)
	}
	if err := node.Content[0].Decode(&p.Desc); err != nil {
		return fmt.Errorf("task descriptor: %w", err)
	}
	return node.Content[1].Decode(&p.Text)
}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("store: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("store: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode serializes tasks in ascending order under a fresh revision.
func Encode(t *Tasks, format Format) ([]byte, string, error) {
	doc := document{Schema: schemaVersion, Revision: newULID(), Tasks: []pair{}}
	for e := range t.All(Ascending) {
		doc.Tasks = append(doc.Tasks, pair{Desc: e.Desc, Text: e.Text})
	}
	var (
		b   []byte
		err error
	)
	switch format {
	case FormatYAML:
		b, err = yaml.Marshal(&doc)
	case FormatCBOR:
		b, err = cborEnc.Marshal(&doc)
	default:
		b, err = json.MarshalIndent(&doc, "", "  ")
		if err == nil {
			b = append(b, '\n')
		}
	}
	if err != nil {
		return nil, "", err
	}
	return b, doc.Revision, nil
}

// Decode rebuilds a collection from a payload. An empty payload is an empty
// collection. JSON payloads are checked against the store schema, and a
// JSON object keyed by encoded descriptors is read as the legacy layout.
func Decode(data []byte, format Format) (*Tasks, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewTasks(), nil
	}
	var doc document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatCBOR:
		if err := cborDec.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		legacy, ok, err := decodeLegacyJSON(data)
		if err != nil {
			return nil, err
		}
		if ok {
			return FromEntries(legacy)
		}
		if err := validateJSON(data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}
	if doc.Schema > schemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d", doc.Schema)
	}
	entries := make([]Entry, 0, len(doc.Tasks))
	for _, p := range doc.Tasks {
		entries = append(entries, Entry{Desc: p.Desc, Text: p.Text})
	}
	return FromEntries(entries)
}

// decodeLegacyJSON reads {"<encoded descriptor>": "<text>", ...}. It reports
// ok=false when data is a current document instead.
func decodeLegacyJSON(data []byte) ([]Entry, bool, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		// Not an object; let schema validation explain.
		return nil, false, nil
	}
	if _, ok := probe["tasks"]; ok {
		return nil, false, nil
	}
	if _, ok := probe["schema"]; ok {
		return nil, false, nil
	}
	keys := make([]string, 0, len(probe))
	for k := range probe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		d, err := DecodeDescriptor(k)
		if err != nil {
			return nil, false, err
		}
		var text string
		if err := json.Unmarshal(probe[k], &text); err != nil {
			return nil, false, fmt.Errorf("task %s: %w", k, err)
		}
		entries = append(entries, Entry{Desc: d, Text: text})
	}
	return entries, true, nil
}
