package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"studystreak/internal/models"
)

// SaveAll writes both registries to disk, each as a complete snapshot. Every
// snapshot goes to a temp file first and is then renamed over the previous
// one, so an interrupted save never corrupts the durable record.
func (s *Store) SaveAll() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := writeSnapshot(s.usersPath, s.users); err != nil {
		return fmt.Errorf("failed to save users snapshot: %w", err)
	}
	if err := writeSnapshot(s.groupsPath, s.groups); err != nil {
		return fmt.Errorf("failed to save groups snapshot: %w", err)
	}
	return nil
}

// LoadAll replaces the in-memory registries with the snapshots on disk. A
// missing snapshot is a fresh start; an unreadable one is reported and
// replaced with an empty registry rather than failing startup. Transient
// per-group state is rebuilt empty afterwards, it is never persisted.
func (s *Store) LoadAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make(map[string]*models.User)
	if err := readSnapshot(s.usersPath, &users); err != nil {
		s.log.Warn("failed to load users snapshot, starting empty",
			zap.String("path", s.usersPath), zap.Error(err))
		users = make(map[string]*models.User)
	}
	s.users = users

	groups := make(map[string]*models.Group)
	if err := readSnapshot(s.groupsPath, &groups); err != nil {
		s.log.Warn("failed to load groups snapshot, starting empty",
			zap.String("path", s.groupsPath), zap.Error(err))
		groups = make(map[string]*models.Group)
	}
	s.groups = groups

	for _, u := range s.users {
		u.EnsureMaps()
	}
	for _, g := range s.groups {
		g.EnsureTransient()
		g.ResetTodayStudy()
	}

	s.log.Info("loaded snapshots",
		zap.Int("users", len(s.users)), zap.Int("groups", len(s.groups)))
}

func writeSnapshot(path string, v interface{}) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	// os.Rename replaces the destination in place on every supported platform.
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

func readSnapshot(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return nil
}
