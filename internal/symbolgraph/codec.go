package symbolgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/swiftusd/doctool/internal/fragment"
)

const (
	keyDeclarationFragments = "declarationFragments"
	keyFunctionSignature    = "functionSignature"
	keySwiftExtension       = "swiftExtension"
)

// objectWriter emits a JSON object with a fixed key order, so re-encoded documents diff
// cleanly against the extractor's output.
type objectWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func (w *objectWriter) raw(key string, value json.RawMessage) {
	if w.err != nil {
		return
	}
	if w.n == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	w.n++
	k, _ := json.Marshal(key)
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(value)
}

func (w *objectWriter) field(key string, value any) {
	if w.err != nil {
		return
	}
	b, err := marshal(value)
	if err != nil {
		w.err = fmt.Errorf("encode %s: %w", key, err)
		return
	}
	w.raw(key, b)
}

func (w *objectWriter) rest(extra map[string]json.RawMessage) {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.raw(k, extra[k])
	}
}

func (w *objectWriter) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if w.n == 0 {
		return []byte("{}"), nil
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

// marshal encodes without HTML escaping so spellings such as "&" and "<" stay readable.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// take removes key from m and decodes it into dst when present.
func take(m map[string]json.RawMessage, key string, dst any) (bool, error) {
	raw, ok := m[key]
	if !ok {
		return false, nil
	}
	delete(m, key)
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (g *Graph) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	g.Metadata = m["metadata"]
	g.Module = m["module"]
	delete(m, "metadata")
	delete(m, "module")

	var symbols []Symbol
	if _, err := take(m, "symbols", &symbols); err != nil {
		return err
	}
	g.Symbols = make(map[string]Symbol, len(symbols))
	for _, s := range symbols {
		g.Symbols[s.Identifier.Precise] = s
	}
	if _, err := take(m, "relationships", &g.Relationships); err != nil {
		return err
	}
	if len(m) > 0 {
		g.extra = m
	}
	return nil
}

func (g *Graph) MarshalJSON() ([]byte, error) {
	var w objectWriter
	if g.Metadata != nil {
		w.raw("metadata", g.Metadata)
	}
	if g.Module != nil {
		w.raw("module", g.Module)
	}
	symbols := make([]Symbol, 0, len(g.Symbols))
	for _, id := range g.SortedIDs() {
		symbols = append(symbols, g.Symbols[id])
	}
	w.field("symbols", symbols)
	rels := g.Relationships
	if rels == nil {
		rels = []Relationship{}
	}
	w.field("relationships", rels)
	w.rest(g.extra)
	return w.bytes()
}

type wireKind struct {
	Identifier  string `json:"identifier"`
	DisplayName string `json:"displayName"`
}

func (s *Symbol) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var kind wireKind
	if _, err := take(m, "kind", &kind); err != nil {
		return err
	}
	s.Kind = NewSymbolKind(kind.Identifier, kind.DisplayName)
	if _, err := take(m, "identifier", &s.Identifier); err != nil {
		return err
	}
	if _, err := take(m, "names", &s.Names); err != nil {
		return err
	}
	if _, err := take(m, "pathComponents", &s.PathComponents); err != nil {
		return err
	}
	mixins, err := decodeMixins(m)
	if err != nil {
		return fmt.Errorf("symbol %s: %w", s.Identifier.Precise, err)
	}
	s.Mixins = mixins
	return nil
}

func (s Symbol) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.field("kind", wireKind{Identifier: s.Kind.Raw, DisplayName: s.Kind.DisplayName})
	w.field("identifier", s.Identifier)
	path := s.PathComponents
	if path == nil {
		path = []string{}
	}
	w.field("pathComponents", path)
	w.field("names", s.Names)
	s.Mixins.write(&w)
	return w.bytes()
}

func (r *Relationship) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if _, err := take(m, "kind", &r.Kind); err != nil {
		return err
	}
	if _, err := take(m, "source", &r.Source); err != nil {
		return err
	}
	if _, err := take(m, "target", &r.Target); err != nil {
		return err
	}
	if _, err := take(m, "targetFallback", &r.TargetFallback); err != nil {
		return err
	}
	mixins, err := decodeMixins(m)
	if err != nil {
		return fmt.Errorf("relationship %s -> %s: %w", r.Source, r.Target, err)
	}
	r.Mixins = mixins
	return nil
}

func (r Relationship) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.field("kind", r.Kind)
	w.field("source", r.Source)
	w.field("target", r.Target)
	if r.TargetFallback != nil {
		w.field("targetFallback", *r.TargetFallback)
	}
	r.Mixins.write(&w)
	return w.bytes()
}

// decodeMixins consumes every remaining key of m.
func decodeMixins(m map[string]json.RawMessage) (Mixins, error) {
	var mx Mixins
	var decl fragment.Array
	ok, err := take(m, keyDeclarationFragments, &decl)
	if err != nil {
		return mx, err
	}
	if ok {
		if decl == nil {
			decl = fragment.Array{}
		}
		mx.DeclarationFragments = decl
	}
	var sig FunctionSignature
	if ok, err = take(m, keyFunctionSignature, &sig); err != nil {
		return mx, err
	} else if ok {
		mx.FunctionSignature = &sig
	}
	var ext SwiftExtension
	if ok, err = take(m, keySwiftExtension, &ext); err != nil {
		return mx, err
	} else if ok {
		mx.SwiftExtension = &ext
	}
	if len(m) > 0 {
		mx.Other = m
	}
	return mx, nil
}

func (mx Mixins) write(w *objectWriter) {
	if mx.DeclarationFragments != nil {
		w.field(keyDeclarationFragments, mx.DeclarationFragments)
	}
	if mx.FunctionSignature != nil {
		w.field(keyFunctionSignature, mx.FunctionSignature)
	}
	if mx.SwiftExtension != nil {
		w.field(keySwiftExtension, mx.SwiftExtension)
	}
	w.rest(mx.Other)
}

func (e *SwiftExtension) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if _, err := take(m, "extendedModule", &e.ExtendedModule); err != nil {
		return err
	}
	if len(m) > 0 {
		e.extra = m
	}
	return nil
}

func (e SwiftExtension) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.field("extendedModule", e.ExtendedModule)
	w.rest(e.extra)
	return w.bytes()
}
