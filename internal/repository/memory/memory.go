package memory

import (
	"WAGroups-Backend/internal/domain"
	"WAGroups-Backend/internal/repository"
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemStorage is an in-memory Storage used by tests and local development.
type MemStorage struct {
	mu            sync.RWMutex
	groups        map[int64]*domain.Group
	groupsByLink  map[string]int64
	clickEvents   []*domain.ClickEvent
	admins        map[string]*domain.AdminUser
	refreshTokens map[string]*domain.RefreshToken
	groupCounter  int64
	adminCounter  int64
	tokenCounter  int64
	eventCounter  int64
}

func New() *MemStorage {
	return &MemStorage{
		groups:        make(map[int64]*domain.Group),
		groupsByLink:  make(map[string]int64),
		admins:        make(map[string]*domain.AdminUser),
		refreshTokens: make(map[string]*domain.RefreshToken),
	}
}

// --- Group Methods ---

func (s *MemStorage) SaveGroup(_ context.Context, group *domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groupsByLink[group.Link]; exists {
		return repository.ErrLinkExists
	}

	s.groupCounter++
	group.ID = s.groupCounter
	if group.AddedAt.IsZero() {
		group.AddedAt = time.Now().UTC()
	}

	stored := *group
	s.groups[group.ID] = &stored
	s.groupsByLink[group.Link] = group.ID
	return nil
}

func (s *MemStorage) GetGroup(_ context.Context, id int64) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[id]
	if !ok {
		return nil, repository.ErrGroupNotFound
	}
	out := *group
	out.Normalize()
	return &out, nil
}

func (s *MemStorage) GetGroupByLink(_ context.Context, link string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.groupsByLink[link]
	if !ok {
		return nil, repository.ErrGroupNotFound
	}
	out := *s.groups[id]
	out.Normalize()
	return &out, nil
}

func (s *MemStorage) LinkExists(_ context.Context, link string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.groupsByLink[link]
	return ok, nil
}

func (s *MemStorage) ListGroups(_ context.Context, filter repository.ListFilter) ([]*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups []*domain.Group
	for _, group := range s.groups {
		if filter.Category != "" && group.Category != filter.Category {
			continue
		}
		if filter.ApprovedOnly && !group.Approved {
			continue
		}
		if filter.Search != "" && !matchesSearch(group, filter.Search) {
			continue
		}
		out := *group
		out.Normalize()
		groups = append(groups, &out)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].AddedAt.After(groups[j].AddedAt)
	})
	if filter.Limit > 0 && len(groups) > filter.Limit {
		groups = groups[:filter.Limit]
	}
	return groups, nil
}

func (s *MemStorage) ListTrending(_ context.Context, limit int) ([]*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups []*domain.Group
	for _, group := range s.groups {
		if !group.Approved {
			continue
		}
		out := *group
		out.Normalize()
		groups = append(groups, &out)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Clicks > groups[j].Clicks
	})
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups, nil
}

func (s *MemStorage) IncrementClicks(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[id]
	if !ok {
		return 0, repository.ErrGroupNotFound
	}
	group.Clicks++
	return group.Clicks, nil
}

func (s *MemStorage) SetApproved(_ context.Context, id int64, approved bool) (*domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[id]
	if !ok {
		return nil, repository.ErrGroupNotFound
	}
	group.Approved = approved
	out := *group
	out.Normalize()
	return &out, nil
}

func (s *MemStorage) DeleteGroup(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[id]
	if !ok {
		return repository.ErrGroupNotFound
	}
	delete(s.groupsByLink, group.Link)
	delete(s.groups, id)
	return nil
}

func (s *MemStorage) GetDirectoryStats(_ context.Context) (*domain.DirectoryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.DirectoryStats{ByCategory: make(map[string]int64)}
	for _, group := range s.groups {
		stats.TotalGroups++
		if group.Approved {
			stats.ApprovedGroups++
		}
		stats.TotalClicks += group.Clicks
		category := group.Category
		if category == "" {
			category = "Other"
		}
		stats.ByCategory[category]++
	}
	stats.PendingGroups = stats.TotalGroups - stats.ApprovedGroups
	return stats, nil
}

// --- Click Telemetry Methods ---

func (s *MemStorage) RecordClickEvent(_ context.Context, event *domain.ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[event.GroupID]; !ok {
		return repository.ErrGroupNotFound
	}
	s.eventCounter++
	event.ID = s.eventCounter
	if event.ClickedAt.IsZero() {
		event.ClickedAt = time.Now().UTC()
	}
	stored := *event
	s.clickEvents = append(s.clickEvents, &stored)
	return nil
}

func (s *MemStorage) GetClicksByDevice(_ context.Context, groupID int64) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clicksByDevice := make(map[string]int64)
	for _, event := range s.clickEvents {
		if event.GroupID == groupID {
			clicksByDevice[event.GetDeviceType()]++
		}
	}
	return clicksByDevice, nil
}

// --- Admin Methods ---

func (s *MemStorage) GetAdminByUsername(_ context.Context, username string) (*domain.AdminUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	admin, ok := s.admins[username]
	if !ok || !admin.IsActive {
		return nil, repository.ErrAdminNotFound
	}
	out := *admin
	return &out, nil
}

func (s *MemStorage) GetAdminByID(_ context.Context, id int64) (*domain.AdminUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, admin := range s.admins {
		if admin.ID == id && admin.IsActive {
			out := *admin
			return &out, nil
		}
	}
	return nil, repository.ErrAdminNotFound
}

func (s *MemStorage) CreateAdmin(_ context.Context, admin *domain.AdminUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.adminCounter++
	admin.ID = s.adminCounter
	stored := *admin
	s.admins[admin.Username] = &stored
	return nil
}

func (s *MemStorage) UpdateAdmin(_ context.Context, admin *domain.AdminUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *admin
	s.admins[admin.Username] = &stored
	return nil
}

func (s *MemStorage) SaveRefreshToken(_ context.Context, token *domain.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokenCounter++
	token.ID = s.tokenCounter
	stored := *token
	s.refreshTokens[token.Token] = &stored
	return nil
}

func (s *MemStorage) GetRefreshToken(_ context.Context, token string) (*domain.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rt, ok := s.refreshTokens[token]
	if !ok {
		return nil, repository.ErrTokenNotFound
	}
	out := *rt
	return &out, nil
}

func (s *MemStorage) RevokeRefreshToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.refreshTokens[token]
	if !ok {
		return repository.ErrTokenNotFound
	}
	rt.IsRevoked = true
	return nil
}

func matchesSearch(group *domain.Group, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(group.Name), needle) ||
		strings.Contains(strings.ToLower(group.Description), needle) ||
		strings.Contains(strings.ToLower(group.Category), needle)
}
