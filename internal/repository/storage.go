package repository

import (
	"WAGroups-Backend/internal/domain"
	"context"
	"errors"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrLinkExists    = errors.New("link already exists")
	ErrAdminNotFound = errors.New("admin not found")
	ErrTokenNotFound = errors.New("refresh token not found")
)

// ListFilter narrows ListGroups. Zero value means "everything, newest first".
type ListFilter struct {
	Category     string // exact category match when non-empty
	Search       string // case-insensitive substring over name/description/category
	Limit        int    // 0 means no cap
	ApprovedOnly bool
}

type Storage interface {
	// Group methods
	SaveGroup(ctx context.Context, group *domain.Group) error
	GetGroup(ctx context.Context, id int64) (*domain.Group, error)
	GetGroupByLink(ctx context.Context, link string) (*domain.Group, error)
	LinkExists(ctx context.Context, link string) (bool, error)
	ListGroups(ctx context.Context, filter ListFilter) ([]*domain.Group, error)
	ListTrending(ctx context.Context, limit int) ([]*domain.Group, error)
	IncrementClicks(ctx context.Context, id int64) (int64, error)
	SetApproved(ctx context.Context, id int64, approved bool) (*domain.Group, error)
	DeleteGroup(ctx context.Context, id int64) error
	GetDirectoryStats(ctx context.Context) (*domain.DirectoryStats, error)

	// Click telemetry methods
	RecordClickEvent(ctx context.Context, event *domain.ClickEvent) error
	GetClicksByDevice(ctx context.Context, groupID int64) (map[string]int64, error)

	// Admin methods
	GetAdminByUsername(ctx context.Context, username string) (*domain.AdminUser, error)
	GetAdminByID(ctx context.Context, id int64) (*domain.AdminUser, error)
	CreateAdmin(ctx context.Context, admin *domain.AdminUser) error
	UpdateAdmin(ctx context.Context, admin *domain.AdminUser) error
	SaveRefreshToken(ctx context.Context, token *domain.RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
}
