// Package snapshot persists full session aggregates for crash recovery.
// It is strictly slower than and independent of the in-memory path: a lost
// write costs at most one recovered mutation, never a live game.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"werewolf-arena/internal/game"
)

const documentVersion = 1

var ErrBadDocument = errors.New("bad_snapshot_document")

type document struct {
	Version int           `json:"version"`
	SavedAt time.Time     `json:"saved_at"`
	Session *game.Session `json:"session"`
}

// Encode serializes the full aggregate, transient trackers included, as a
// versioned document.
func Encode(s *game.Session) ([]byte, error) {
	return json.Marshal(document{
		Version: documentVersion,
		SavedAt: time.Now().UTC(),
		Session: s,
	})
}

// Decode reconstructs a session from a document produced by Encode.
func Decode(data []byte) (*game.Session, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}
	if doc.Version != documentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadDocument, doc.Version)
	}
	if doc.Session == nil || doc.Session.ID == "" {
		return nil, fmt.Errorf("%w: missing session", ErrBadDocument)
	}
	s := doc.Session
	if s.Seats == nil {
		return nil, fmt.Errorf("%w: missing seats", ErrBadDocument)
	}
	if s.KillVotes == nil {
		s.KillVotes = map[int]int{}
	}
	if s.Votes == nil {
		s.Votes = map[int]int{}
	}
	// An empty Checks map is dropped by omitempty on the way out.
	for _, seat := range s.Seats {
		if seat.Role == game.RoleSeer && seat.Checks == nil {
			seat.Checks = map[int]bool{}
		}
	}
	return s, nil
}
