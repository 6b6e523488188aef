package postgres

import (
	"WAGroups-Backend/internal/domain"
	"WAGroups-Backend/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStorage implements the Storage interface for PostgreSQL.
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New creates a new PostgreSQL storage instance.
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- Group Methods ---

// SaveGroup inserts a new group. Returns ErrLinkExists when a record with
// the same link is already present, whether caught by the pre-check or by
// the unique index under a concurrent insert.
func (s *PostgresStorage) SaveGroup(ctx context.Context, group *domain.Group) error {
	var existing domain.Group
	err := s.db.WithContext(ctx).Where("link = ?", group.Link).First(&existing).Error
	if err == nil {
		return repository.ErrLinkExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Error("failed to check link existence", zap.String("link", group.Link), zap.Error(err))
		return fmt.Errorf("failed to check link: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(group).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrLinkExists
		}
		s.log.Error("failed to save group", zap.String("link", group.Link), zap.Error(err))
		return fmt.Errorf("failed to save group: %w", err)
	}

	s.log.Info("saved new group", zap.Int64("group_id", group.ID), zap.String("category", group.Category))
	return nil
}

// GetGroup fetches a group by id.
func (s *PostgresStorage) GetGroup(ctx context.Context, id int64) (*domain.Group, error) {
	var group domain.Group

	err := s.db.WithContext(ctx).First(&group, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrGroupNotFound
	}
	if err != nil {
		s.log.Error("failed to get group", zap.Int64("group_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	group.Normalize()
	return &group, nil
}

// GetGroupByLink fetches a group by its WhatsApp link.
func (s *PostgresStorage) GetGroupByLink(ctx context.Context, link string) (*domain.Group, error) {
	var group domain.Group

	err := s.db.WithContext(ctx).Where("link = ?", link).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrGroupNotFound
	}
	if err != nil {
		s.log.Error("failed to get group by link", zap.String("link", link), zap.Error(err))
		return nil, fmt.Errorf("failed to get group by link: %w", err)
	}

	group.Normalize()
	return &group, nil
}

// LinkExists reports whether a group with the given link is present.
func (s *PostgresStorage) LinkExists(ctx context.Context, link string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Group{}).Where("link = ?", link).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check link existence", zap.String("link", link), zap.Error(err))
		return false, fmt.Errorf("failed to check link: %w", err)
	}

	return count > 0, nil
}

// ListGroups returns groups ordered by addedat descending, narrowed by the
// filter. A query failure is always reported as an error, never as an empty
// result.
func (s *PostgresStorage) ListGroups(ctx context.Context, filter repository.ListFilter) ([]*domain.Group, error) {
	query := s.db.WithContext(ctx).Model(&domain.Group{}).Order("addedat DESC")

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ? OR category ILIKE ?", pattern, pattern, pattern)
	}
	if filter.ApprovedOnly {
		query = query.Where("approved = ?", true)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var groups []*domain.Group
	if err := query.Find(&groups).Error; err != nil {
		s.log.Error("failed to list groups", zap.Error(err))
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	for _, group := range groups {
		group.Normalize()
	}
	return groups, nil
}

// ListTrending returns approved groups ordered by click count descending.
func (s *PostgresStorage) ListTrending(ctx context.Context, limit int) ([]*domain.Group, error) {
	var groups []*domain.Group

	err := s.db.WithContext(ctx).Where("approved = ?", true).
		Order("clicks DESC").Limit(limit).Find(&groups).Error
	if err != nil {
		s.log.Error("failed to list trending groups", zap.Error(err))
		return nil, fmt.Errorf("failed to list trending groups: %w", err)
	}

	for _, group := range groups {
		group.Normalize()
	}
	return groups, nil
}

// IncrementClicks bumps the click counter in a single atomic UPDATE and
// returns the new value. There is deliberately no read-modify-write here:
// concurrent clicks must each land.
func (s *PostgresStorage) IncrementClicks(ctx context.Context, id int64) (int64, error) {
	var clicks int64

	result := s.db.WithContext(ctx).Raw(
		"UPDATE whatsapp_groups SET clicks = clicks + 1 WHERE id = ? RETURNING clicks", id,
	).Scan(&clicks)
	if result.Error != nil {
		s.log.Error("failed to increment clicks", zap.Int64("group_id", id), zap.Error(result.Error))
		return 0, fmt.Errorf("failed to increment clicks: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, repository.ErrGroupNotFound
	}

	return clicks, nil
}

// SetApproved updates the moderation flag and returns the updated record.
func (s *PostgresStorage) SetApproved(ctx context.Context, id int64, approved bool) (*domain.Group, error) {
	result := s.db.WithContext(ctx).Model(&domain.Group{}).Where("id = ?", id).Update("approved", approved)
	if result.Error != nil {
		s.log.Error("failed to update approval", zap.Int64("group_id", id), zap.Error(result.Error))
		return nil, fmt.Errorf("failed to update approval: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrGroupNotFound
	}

	return s.GetGroup(ctx, id)
}

// DeleteGroup removes a group and its telemetry rows.
func (s *PostgresStorage) DeleteGroup(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&domain.Group{}, id)
	if result.Error != nil {
		s.log.Error("failed to delete group", zap.Int64("group_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to delete group: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrGroupNotFound
	}

	if err := s.db.WithContext(ctx).Where("group_id = ?", id).Delete(&domain.ClickEvent{}).Error; err != nil {
		s.log.Warn("failed to delete click events for group", zap.Int64("group_id", id), zap.Error(err))
	}

	s.log.Info("deleted group", zap.Int64("group_id", id))
	return nil
}

// GetDirectoryStats aggregates the admin dashboard numbers.
func (s *PostgresStorage) GetDirectoryStats(ctx context.Context) (*domain.DirectoryStats, error) {
	stats := &domain.DirectoryStats{ByCategory: make(map[string]int64)}

	groupModel := s.db.WithContext(ctx).Model(&domain.Group{})
	if err := groupModel.Count(&stats.TotalGroups).Error; err != nil {
		return nil, fmt.Errorf("failed to count groups: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&domain.Group{}).
		Where("approved = ?", true).Count(&stats.ApprovedGroups).Error; err != nil {
		return nil, fmt.Errorf("failed to count approved groups: %w", err)
	}
	stats.PendingGroups = stats.TotalGroups - stats.ApprovedGroups

	if err := s.db.WithContext(ctx).Model(&domain.Group{}).
		Select("COALESCE(SUM(clicks), 0)").Scan(&stats.TotalClicks).Error; err != nil {
		return nil, fmt.Errorf("failed to sum clicks: %w", err)
	}

	var rows []struct {
		Category string `gorm:"column:category"`
		Count    int64  `gorm:"column:count"`
	}
	err := s.db.WithContext(ctx).Model(&domain.Group{}).
		Select("COALESCE(NULLIF(category, ''), 'Other') as category, count(*) as count").
		Group("1").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count groups by category: %w", err)
	}
	for _, row := range rows {
		stats.ByCategory[row.Category] = row.Count
	}

	return stats, nil
}

// --- Click Telemetry Methods ---

// RecordClickEvent stores a telemetry row for a click.
func (s *PostgresStorage) RecordClickEvent(ctx context.Context, event *domain.ClickEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		s.log.Error("failed to record click event", zap.Int64("group_id", event.GroupID), zap.Error(err))
		return fmt.Errorf("failed to record click event: %w", err)
	}
	return nil
}

// GetClicksByDevice returns click counts per device type for a group.
func (s *PostgresStorage) GetClicksByDevice(ctx context.Context, groupID int64) (map[string]int64, error) {
	var results []struct {
		DeviceType string `gorm:"column:device_type"`
		Count      int64  `gorm:"column:count"`
	}

	err := s.db.WithContext(ctx).
		Model(&domain.ClickEvent{}).
		Select("COALESCE(device_type, 'unknown') as device_type, count(*) as count").
		Where("group_id = ?", groupID).
		Group("device_type").
		Find(&results).Error
	if err != nil {
		s.log.Error("failed to get clicks by device", zap.Int64("group_id", groupID), zap.Error(err))
		return nil, fmt.Errorf("failed to get clicks by device: %w", err)
	}

	clicksByDevice := make(map[string]int64)
	for _, result := range results {
		clicksByDevice[result.DeviceType] = result.Count
	}

	return clicksByDevice, nil
}

// --- Admin Methods ---

// GetAdminByUsername fetches an active admin account.
func (s *PostgresStorage) GetAdminByUsername(ctx context.Context, username string) (*domain.AdminUser, error) {
	var admin domain.AdminUser

	err := s.db.WithContext(ctx).Where("username = ? AND is_active = ?", username, true).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrAdminNotFound
	}
	if err != nil {
		s.log.Error("failed to get admin", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	return &admin, nil
}

// GetAdminByID fetches an active admin account by id.
func (s *PostgresStorage) GetAdminByID(ctx context.Context, id int64) (*domain.AdminUser, error) {
	var admin domain.AdminUser

	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrAdminNotFound
	}
	if err != nil {
		s.log.Error("failed to get admin by id", zap.Int64("admin_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	return &admin, nil
}

// CreateAdmin inserts a new admin account.
func (s *PostgresStorage) CreateAdmin(ctx context.Context, admin *domain.AdminUser) error {
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		s.log.Error("failed to create admin", zap.String("username", admin.Username), zap.Error(err))
		return fmt.Errorf("failed to create admin: %w", err)
	}

	s.log.Info("created admin account", zap.Int64("admin_id", admin.ID), zap.String("username", admin.Username))
	return nil
}

// UpdateAdmin persists changes to an admin account.
func (s *PostgresStorage) UpdateAdmin(ctx context.Context, admin *domain.AdminUser) error {
	if err := s.db.WithContext(ctx).Save(admin).Error; err != nil {
		s.log.Error("failed to update admin", zap.Int64("admin_id", admin.ID), zap.Error(err))
		return fmt.Errorf("failed to update admin: %w", err)
	}
	return nil
}

// SaveRefreshToken stores a refresh token.
func (s *PostgresStorage) SaveRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		s.log.Error("failed to save refresh token", zap.Int64("admin_id", token.AdminID), zap.Error(err))
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken fetches a refresh token by value.
func (s *PostgresStorage) GetRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	var rt domain.RefreshToken

	err := s.db.WithContext(ctx).Where("token = ?", token).First(&rt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrTokenNotFound
	}
	if err != nil {
		s.log.Error("failed to get refresh token", zap.Error(err))
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return &rt, nil
}

// RevokeRefreshToken marks a refresh token as revoked.
func (s *PostgresStorage) RevokeRefreshToken(ctx context.Context, token string) error {
	result := s.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("token = ?", token).Update("is_revoked", true)
	if result.Error != nil {
		s.log.Error("failed to revoke refresh token", zap.Error(result.Error))
		return fmt.Errorf("failed to revoke refresh token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrTokenNotFound
	}
	return nil
}
