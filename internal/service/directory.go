package service

import (
	"WAGroups-Backend/internal/config"
	"WAGroups-Backend/internal/domain"
	"WAGroups-Backend/internal/repository"
	"context"
	"fmt"
	"strings"
	"time"
)

// whatsAppHost must appear in every submitted link; the stricter prefix form
// is the same check the original submission form applied.
const (
	whatsAppHost       = "chat.whatsapp.com"
	whatsAppLinkPrefix = "https://chat.whatsapp.com/"
)

// Validation error codes surfaced to API clients.
const (
	CodeMissingFields = "MISSING_FIELDS"
	CodeInvalidLink   = "INVALID_LINK"
)

// ValidationError reports a rejected submission with a machine-readable code
// and the offending field. It is always returned before any store write.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Submission is the input of the submission flow.
type Submission struct {
	Name        string
	Link        string
	Category    string
	Description string
	ImageURL    string
	CustomColor string
}

// ListOptions narrows the public listing.
type ListOptions struct {
	Category string
	Search   string
	Limit    int
}

// DirectoryService implements the submission and retrieval pipeline on top
// of an injected Storage handle.
type DirectoryService struct {
	storage repository.Storage
	config  *config.Directory
}

func NewDirectory(storage repository.Storage, cfg *config.Directory) *DirectoryService {
	return &DirectoryService{
		storage: storage,
		config:  cfg,
	}
}

// Submit validates a submission, rejects duplicate links and inserts the
// group with clicks=0, approved=true and addedAt=now.
func (s *DirectoryService) Submit(ctx context.Context, sub Submission) (*domain.Group, error) {
	group, err := s.validate(sub)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.LinkExists(ctx, group.Link)
	if err != nil {
		return nil, fmt.Errorf("failed to check link existence: %w", err)
	}
	if exists {
		return nil, repository.ErrLinkExists
	}

	// The unique index still backs this up: a concurrent submit of the same
	// link loses with ErrLinkExists from SaveGroup.
	if err := s.storage.SaveGroup(ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}

// List returns groups ordered by recency. A store failure propagates as an
// error; it is never folded into an empty result.
func (s *DirectoryService) List(ctx context.Context, opts ListOptions) ([]*domain.Group, error) {
	groups, err := s.storage.ListGroups(ctx, repository.ListFilter{
		Category: opts.Category,
		Search:   opts.Search,
		Limit:    opts.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	if groups == nil {
		groups = []*domain.Group{}
	}
	return groups, nil
}

// Trending returns approved groups ordered by click count.
func (s *DirectoryService) Trending(ctx context.Context, limit int) ([]*domain.Group, error) {
	if limit <= 0 || limit > s.config.TrendingLimit {
		limit = s.config.TrendingLimit
	}
	groups, err := s.storage.ListTrending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trending groups: %w", err)
	}
	if groups == nil {
		groups = []*domain.Group{}
	}
	return groups, nil
}

// RegisterClick bumps the click counter for a group identified by id, or by
// link when legacy clients only know the link. The increment is a single
// atomic store operation.
func (s *DirectoryService) RegisterClick(ctx context.Context, id int64, link string) (int64, error) {
	if id == 0 && link != "" {
		group, err := s.storage.GetGroupByLink(ctx, strings.TrimSpace(link))
		if err != nil {
			return 0, err
		}
		id = group.ID
	}

	return s.storage.IncrementClicks(ctx, id)
}

func (s *DirectoryService) validate(sub Submission) (*domain.Group, error) {
	name := strings.TrimSpace(sub.Name)
	link := strings.TrimSpace(sub.Link)
	category := strings.TrimSpace(sub.Category)

	if name == "" || link == "" || category == "" {
		return nil, &ValidationError{
			Code:    CodeMissingFields,
			Field:   firstMissing(name, link, category),
			Message: "name, link and category are required",
		}
	}
	if len([]rune(name)) < s.config.MinNameLength {
		return nil, &ValidationError{
			Code:    CodeMissingFields,
			Field:   "name",
			Message: fmt.Sprintf("name must be at least %d characters", s.config.MinNameLength),
		}
	}
	if !strings.Contains(link, whatsAppHost) {
		return nil, &ValidationError{
			Code:    CodeInvalidLink,
			Field:   "link",
			Message: "link must be a chat.whatsapp.com invite",
		}
	}
	if s.config.StrictLinkPrefix && !strings.HasPrefix(link, whatsAppLinkPrefix) {
		return nil, &ValidationError{
			Code:    CodeInvalidLink,
			Field:   "link",
			Message: "link must start with " + whatsAppLinkPrefix,
		}
	}

	return &domain.Group{
		Name:        name,
		Link:        link,
		Category:    category,
		Description: strings.TrimSpace(sub.Description),
		AddedAt:     time.Now().UTC(),
		Clicks:      0,
		Approved:    true,
		ImageURL:    strings.TrimSpace(sub.ImageURL),
		CustomColor: strings.TrimSpace(sub.CustomColor),
	}, nil
}

func firstMissing(name, link, category string) string {
	switch {
	case name == "":
		return "name"
	case link == "":
		return "link"
	default:
		return "category"
	}
}
