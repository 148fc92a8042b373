package cmn

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Lenient is a JSON object of T keyed by string. Entries that fail to decode are logged and kept
// verbatim, so one bad record neither fails the document nor gets lost when it is written back.
type Lenient[T any] struct {
	Items  map[string]*T
	broken map[string]json.RawMessage
}

func (m *Lenient[T]) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	m.Items = make(map[string]*T, len(raw))
	m.broken = nil

	for k, v := range raw {
		item := new(T)
		if err := json.Unmarshal(v, item); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("keeping undecodable entry as is")
			if m.broken == nil {
				m.broken = map[string]json.RawMessage{}
			}
			m.broken[k] = v
			continue
		}
		m.Items[k] = item
	}
	return nil
}

func (m Lenient[T]) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Items)+len(m.broken))
	for k, v := range m.broken {
		out[k] = v
	}
	for k, v := range m.Items {
		out[k] = v
	}
	return json.Marshal(out)
}

func (m *Lenient[T]) Get(key string) *T {
	if m.Items == nil {
		return nil
	}
	return m.Items[key]
}

// Set stores v under key, replacing a broken entry with the same key.
func (m *Lenient[T]) Set(key string, v *T) {
	if m.Items == nil {
		m.Items = map[string]*T{}
	}
	delete(m.broken, key)
	m.Items[key] = v
}

func (m *Lenient[T]) Broken() int {
	return len(m.broken)
}

// BrokenKeys returns the keys of the entries kept verbatim, in no particular order.
func (m *Lenient[T]) BrokenKeys() []string {
	keys := make([]string, 0, len(m.broken))
	for k := range m.broken {
		keys = append(keys, k)
	}
	return keys
}

func (m *Lenient[T]) Raw(key string) json.RawMessage {
	return m.broken[key]
}

// SetRaw replaces the verbatim content of a broken entry.
func (m *Lenient[T]) SetRaw(key string, raw json.RawMessage) {
	if _, ok := m.broken[key]; ok {
		m.broken[key] = raw
	}
}
