// Package store holds all durable state: the account store and the group
// registry, plus their snapshot persistence. The design is single-actor; the
// coarse mutex only guards the registries themselves.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"studystreak/internal/models"
)

const (
	usersFile  = "users.json"
	groupsFile = "groups.json"
)

// Store is the account store and group registry, backed by two snapshot files
// under a data directory.
type Store struct {
	mu     sync.RWMutex
	users  map[string]*models.User
	groups map[string]*models.Group

	usersPath  string
	groupsPath string
	log        *zap.Logger
}

// Open prepares a store rooted at dataDir. No snapshot is read until LoadAll.
func Open(dataDir string, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{
		users:      make(map[string]*models.User),
		groups:     make(map[string]*models.Group),
		usersPath:  filepath.Join(dataDir, usersFile),
		groupsPath: filepath.Join(dataDir, groupsFile),
		log:        log,
	}, nil
}

// CreateUser registers a new account keyed by username.
func (s *Store) CreateUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.Username]; exists {
		return models.Errorf(models.KindAlreadyExists, "username %s already exists", u.Username)
	}
	s.users[u.Username] = u
	return nil
}

func (s *Store) GetUser(username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, models.Errorf(models.KindNotFound, "user %s not found", username)
	}
	return u, nil
}

// Users returns every registered user, ordered by username.
func (s *Store) Users() []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// CreateGroup registers a new group keyed by name.
func (s *Store) CreateGroup(g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.groups[g.Name]; exists {
		return models.Errorf(models.KindAlreadyExists, "group %s already exists", g.Name)
	}
	s.groups[g.Name] = g
	return nil
}

func (s *Store) GetGroup(name string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[name]
	if !ok {
		return nil, models.Errorf(models.KindNotFound, "group %s not found", name)
	}
	return g, nil
}

// Groups returns every group, ordered by name.
func (s *Store) Groups() []*models.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
