package activity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/premrelay/internal/logging"
)

type fakeRepo struct {
	events    []*Event
	insertErr error
}

func (f *fakeRepo) Insert(ctx context.Context, event *Event) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.events = append(f.events, event)
	return nil
}

func newTestService(t *testing.T, repo *fakeRepo) *Service {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewService(repo, logger)
}

func TestMessageReceived(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestService(t, repo)

	s.MessageReceived(context.Background(), 7, "hello")

	require.Len(t, repo.events, 1)
	e := repo.events[0]
	assert.Equal(t, EventMessageReceived, e.Event)
	assert.Equal(t, int64(7), e.UserID)
	assert.Equal(t, "hello", e.Message)
	assert.False(t, e.Timestamp.IsZero())
}

func TestDownloadSucceeded_EventKind(t *testing.T) {
	tests := []struct {
		name    string
		fileURL string
		want    string
	}{
		{"hosted link delivery", "https://files.example.com/download/abc", EventDownloadSuccessLink},
		{"direct inline delivery", "", EventDownloadSuccessDirect},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{}
			s := newTestService(t, repo)

			s.DownloadSucceeded(context.Background(), 7, "https://rapidgator.net/file/x", "abc", tc.fileURL)

			require.Len(t, repo.events, 1)
			assert.Equal(t, tc.want, repo.events[0].Event)
			assert.Equal(t, "abc", repo.events[0].FileHash)
		})
	}
}

func TestDownloadFailed(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestService(t, repo)

	s.DownloadFailed(context.Background(), 7, "https://rapidgator.net/file/x")

	require.Len(t, repo.events, 1)
	assert.Equal(t, EventDownloadFailed, repo.events[0].Event)
	assert.Equal(t, "https://rapidgator.net/file/x", repo.events[0].URL)
}

func TestRecord_InsertFailureIsSwallowed(t *testing.T) {
	repo := &fakeRepo{insertErr: errors.New("db down")}
	s := newTestService(t, repo)

	// Must not panic; recording is best-effort.
	s.MessageReceived(context.Background(), 7, "hello")
	assert.Empty(t, repo.events)
}
