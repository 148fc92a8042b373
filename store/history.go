package store

import (
	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/rs/zerolog/log"
)

// HistoryStore is the position history document, position_<id> -> record.
type HistoryStore struct {
	path string
}

func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

func (s *HistoryStore) Path() string {
	return s.path
}

// Load returns the stored history, or an empty one when the file is missing or corrupt.
func (s *HistoryStore) Load() (*cmn.History, error) {
	h := &cmn.History{}
	if err := Load(s.path, h, func() { h = &cmn.History{} }); err != nil {
		return nil, err
	}

	if n := h.Broken(); n > 0 {
		log.Warn().Msgf("%d undecodable position records in %s are kept as is", n, s.path)
	}
	return h, nil
}

func (s *HistoryStore) Save(h *cmn.History) error {
	return SaveAtomic(s.path, h)
}
