package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/premrelay/internal/common"
)

type fakeRepo struct {
	users map[int64]*User

	getErr    error
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[int64]*User)}
}

func (f *fakeRepo) Get(ctx context.Context, userID int64) (*User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copy := *u
	return &copy, nil
}

func (f *fakeRepo) Create(ctx context.Context, user *User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[user.UserID]; ok {
		return common.ErrorAlreadyExists
	}
	copy := *user
	f.users[user.UserID] = &copy
	return nil
}

func (f *fakeRepo) SetStarted(ctx context.Context, userID int64, started bool) error {
	u, ok := f.users[userID]
	if !ok {
		u = &User{UserID: userID}
		f.users[userID] = u
	}
	u.Started = started
	return nil
}

func (f *fakeRepo) SetDeleted(ctx context.Context, userID int64, deleted bool) (bool, error) {
	u, ok := f.users[userID]
	if !ok {
		return false, nil
	}
	u.Deleted = deleted
	return true, nil
}

func (f *fakeRepo) AddDownloadedFile(ctx context.Context, userID int64, hash string) error {
	u, ok := f.users[userID]
	if !ok {
		return nil
	}
	for _, h := range u.DownloadedFiles {
		if h == hash {
			return nil
		}
	}
	u.DownloadedFiles = append(u.DownloadedFiles, hash)
	return nil
}

func TestRegister_NewUser(t *testing.T) {
	repo := newFakeRepo()
	s := NewService(repo)

	user, status, err := s.Register(context.Background(), &User{
		UserID:    7,
		FirstName: "Ann",
		Username:  "ann",
	})
	require.NoError(t, err)
	assert.Equal(t, Registered, status)
	assert.True(t, user.Started)
	assert.NotNil(t, user.DownloadedFiles)
	assert.Empty(t, user.DownloadedFiles)
}

func TestRegister_AlreadyRegistered(t *testing.T) {
	repo := newFakeRepo()
	repo.users[7] = &User{UserID: 7, FirstName: "Ann"}
	s := NewService(repo)

	_, status, err := s.Register(context.Background(), &User{UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, AlreadyRegistered, status)
}

func TestRegister_ReactivatesSoftDeleted(t *testing.T) {
	repo := newFakeRepo()
	repo.users[7] = &User{UserID: 7, FirstName: "Ann", Deleted: true}
	s := NewService(repo)

	user, status, err := s.Register(context.Background(), &User{UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, Reactivated, status)
	assert.False(t, user.Deleted)
	assert.Equal(t, "Ann", user.FirstName, "original record survives re-registration")
	assert.False(t, repo.users[7].Deleted)
}

func TestRegister_RaceFallsBackToAlreadyRegistered(t *testing.T) {
	repo := newFakeRepo()
	repo.getErr = nil
	repo.createErr = common.ErrorAlreadyExists
	s := NewService(repo)

	_, status, err := s.Register(context.Background(), &User{UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, AlreadyRegistered, status)
}

func TestRegister_RepositoryErrorPropagates(t *testing.T) {
	repo := newFakeRepo()
	repo.getErr = errors.New("boom")
	s := NewService(repo)

	_, _, err := s.Register(context.Background(), &User{UserID: 7})
	require.Error(t, err)
}

func TestUnregister(t *testing.T) {
	repo := newFakeRepo()
	repo.users[7] = &User{UserID: 7}
	s := NewService(repo)

	modified, err := s.Unregister(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, modified)
	assert.True(t, repo.users[7].Deleted)

	modified, err = s.Unregister(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, modified)
}

func TestIsRegistered(t *testing.T) {
	repo := newFakeRepo()
	repo.users[1] = &User{UserID: 1}
	repo.users[2] = &User{UserID: 2, Deleted: true}
	s := NewService(repo)

	tests := []struct {
		name   string
		userID int64
		want   bool
	}{
		{"active user", 1, true},
		{"soft-deleted user", 2, false},
		{"unknown user", 3, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.IsRegistered(context.Background(), tc.userID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHasStarted(t *testing.T) {
	repo := newFakeRepo()
	repo.users[1] = &User{UserID: 1, Started: true}
	repo.users[2] = &User{UserID: 2, Started: false}
	s := NewService(repo)

	got, err := s.HasStarted(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = s.HasStarted(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = s.HasStarted(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestRecordDownload_Deduplicates(t *testing.T) {
	repo := newFakeRepo()
	repo.users[1] = &User{UserID: 1}
	s := NewService(repo)

	require.NoError(t, s.RecordDownload(context.Background(), 1, "aaa"))
	require.NoError(t, s.RecordDownload(context.Background(), 1, "aaa"))
	require.NoError(t, s.RecordDownload(context.Background(), 1, "bbb"))

	assert.Equal(t, []string{"aaa", "bbb"}, repo.users[1].DownloadedFiles)
}
