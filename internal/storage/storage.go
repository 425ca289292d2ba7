// /internal/storage/storage.go
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshon/server-imouto/datastore"
	"github.com/keshon/server-imouto/internal/affinity"
)

const (
	affectionKey        = "affection"
	commandHistoryLimit = 20
)

// Storage persists the per-user affection mapping and per-guild command
// history on top of the JSON datastore. Saves rewrite the whole snapshot
// atomically; a missing file starts as an empty mapping.
type Storage struct {
	ds *datastore.DataStore
}

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Datetime  time.Time `json:"datetime"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// Save forces the snapshot to disk. The autosave loop also runs, but the
// engine wants the score on disk right after every judged exchange.
func (s *Storage) Save() error {
	return s.ds.SaveToFile()
}

// affectionMap reads the mapping back through JSON: the datastore hands
// values out as whatever encoding/json produced on load.
func (s *Storage) affectionMap() map[string]int {
	data, exists := s.ds.Get(affectionKey)
	if !exists {
		return map[string]int{}
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return map[string]int{}
	}

	var scores map[string]int
	if err := json.Unmarshal(jsonData, &scores); err != nil || scores == nil {
		return map[string]int{}
	}
	return scores
}

// Affection returns the stored score for a user, or the default for a user
// never seen before. Never an error: an unknown user is a valid state.
func (s *Storage) Affection(userID string) int {
	scores := s.affectionMap()
	score, exists := scores[userID]
	if !exists {
		return affinity.Default
	}
	return affinity.Clamp(score)
}

// SetAffection stores a score, clamped to the valid range.
func (s *Storage) SetAffection(userID string, score int) {
	scores := s.affectionMap()
	scores[userID] = affinity.Clamp(score)
	s.ds.Add(affectionKey, scores)
}

// AllAffection returns a copy of the full mapping.
func (s *Storage) AllAffection() map[string]int {
	return s.affectionMap()
}

func historyKey(guildID string) string {
	return "history:" + guildID
}

// AppendCommandToHistory records a command execution for a guild, keeping
// only the most recent entries.
func (s *Storage) AppendCommandToHistory(guildID string, record CommandHistoryRecord) error {
	data, exists := s.ds.Get(historyKey(guildID))

	var history []CommandHistoryRecord
	if exists {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("error marshalling history: %w", err)
		}
		if err := json.Unmarshal(jsonData, &history); err != nil {
			return fmt.Errorf("error unmarshalling history: %w", err)
		}
	}

	history = append(history, record)
	if len(history) > commandHistoryLimit {
		history = history[len(history)-commandHistoryLimit:]
	}

	s.ds.Add(historyKey(guildID), history)
	return nil
}

// FetchCommandHistory returns the recorded command history for a guild.
func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	data, exists := s.ds.Get(historyKey(guildID))
	if !exists {
		return []CommandHistoryRecord{}, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling history: %w", err)
	}

	var history []CommandHistoryRecord
	if err := json.Unmarshal(jsonData, &history); err != nil {
		return nil, fmt.Errorf("error unmarshalling history: %w", err)
	}
	return history, nil
}
