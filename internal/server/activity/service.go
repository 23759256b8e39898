package activity

import (
	"context"
	"time"

	"github.com/dmitrijs2005/premrelay/internal/logging"
)

// Service constructs and records activity events. Recording is best-effort:
// a failed insert is logged but never fails the operation that produced the
// event.
type Service struct {
	repo   Repository
	logger logging.Logger
}

func NewService(repo Repository, logger logging.Logger) *Service {
	return &Service{repo: repo, logger: logger.With("module", "activity")}
}

func (s *Service) MessageReceived(ctx context.Context, userID int64, text string) {
	s.record(ctx, &Event{
		UserID:  userID,
		Event:   EventMessageReceived,
		Message: text,
	})
}

func (s *Service) DownloadSucceeded(ctx context.Context, userID int64, url, hash, fileURL string) {
	event := EventDownloadSuccessDirect
	if fileURL != "" {
		event = EventDownloadSuccessLink
	}
	s.record(ctx, &Event{
		UserID:   userID,
		Event:    event,
		URL:      url,
		FileURL:  fileURL,
		FileHash: hash,
	})
}

func (s *Service) DownloadFailed(ctx context.Context, userID int64, url string) {
	s.record(ctx, &Event{
		UserID: userID,
		Event:  EventDownloadFailed,
		URL:    url,
	})
}

func (s *Service) record(ctx context.Context, event *Event) {
	event.Timestamp = time.Now().UTC()
	if err := s.repo.Insert(ctx, event); err != nil {
		s.logger.Error(ctx, "failed to record activity", "event", event.Event, "error", err.Error())
	}
}
