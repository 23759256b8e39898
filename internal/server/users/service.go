package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/premrelay/internal/common"
)

// RegistrationStatus tells the caller how a /register request resolved.
type RegistrationStatus int

const (
	// Registered means a new user record was created.
	Registered RegistrationStatus = iota
	// AlreadyRegistered means an active record already existed.
	AlreadyRegistered
	// Reactivated means a soft-deleted record was restored.
	Reactivated
)

// Service carries the registration and session flows on top of the
// repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Start marks the user as having started the bot, creating a minimal record
// for first-time users.
func (s *Service) Start(ctx context.Context, userID int64) error {
	return s.repo.SetStarted(ctx, userID, true)
}

// Stop marks the user as stopped; non-command messages are ignored until the
// next /start.
func (s *Service) Stop(ctx context.Context, userID int64) error {
	return s.repo.SetStarted(ctx, userID, false)
}

// Register creates the user's record, or restores it if the user had
// unregistered earlier. The returned User reflects the stored state.
func (s *Service) Register(ctx context.Context, candidate *User) (*User, RegistrationStatus, error) {
	existing, err := s.repo.Get(ctx, candidate.UserID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, 0, fmt.Errorf("error checking user: %w", err)
	}

	if existing != nil {
		if existing.Deleted {
			if _, err := s.repo.SetDeleted(ctx, candidate.UserID, false); err != nil {
				return nil, 0, fmt.Errorf("error restoring user: %w", err)
			}
			existing.Deleted = false
			return existing, Reactivated, nil
		}
		return existing, AlreadyRegistered, nil
	}

	user := &User{
		UserID:          candidate.UserID,
		FirstName:       candidate.FirstName,
		LastName:        candidate.LastName,
		Username:        candidate.Username,
		Deleted:         false,
		Started:         true,
		DownloadedFiles: []string{},
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			// Lost a race with a concurrent /register.
			return user, AlreadyRegistered, nil
		}
		return nil, 0, fmt.Errorf("error creating user: %w", err)
	}

	return user, Registered, nil
}

// Unregister soft-deletes the user. It reports false when no active record
// existed.
func (s *Service) Unregister(ctx context.Context, userID int64) (bool, error) {
	return s.repo.SetDeleted(ctx, userID, true)
}

// Get returns the user's record, or common.ErrorNotFound.
func (s *Service) Get(ctx context.Context, userID int64) (*User, error) {
	return s.repo.Get(ctx, userID)
}

// IsRegistered reports whether the user has an active (not soft-deleted)
// record.
func (s *Service) IsRegistered(ctx context.Context, userID int64) (bool, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return !user.Deleted, nil
}

// HasStarted reports whether the user has started the bot.
func (s *Service) HasStarted(ctx context.Context, userID int64) (bool, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.Started, nil
}

// RecordDownload associates a finalized content hash with the user's
// download history.
func (s *Service) RecordDownload(ctx context.Context, userID int64, hash string) error {
	return s.repo.AddDownloadedFile(ctx, userID, hash)
}
