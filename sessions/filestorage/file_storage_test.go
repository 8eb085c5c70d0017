package filestorage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/jrsteele09/agro-console/internal/errors"
	"github.com/jrsteele09/agro-console/sessions"
	"github.com/jrsteele09/agro-console/sessions/filestorage"
	"github.com/jrsteele09/agro-console/users"
	"github.com/stretchr/testify/require"
)

func TestStorage_MissingFileIsEmpty(t *testing.T) {
	s, err := filestorage.New(filepath.Join(t.TempDir(), "nested", "session.json"))
	require.NoError(t, err)

	v, ok, err := s.Get(context.Background(), sessions.AccessTokenKey)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, v)

	require.NoError(t, s.Remove(context.Background(), sessions.AccessTokenKey))
}

func TestStorage_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "agroctl", "session.json")

	s, err := filestorage.New(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, sessions.AccessTokenKey, "A"))
	require.NoError(t, s.Set(ctx, sessions.RefreshTokenKey, "R"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := filestorage.New(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, sessions.AccessTokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "A", v)

	require.NoError(t, reopened.Remove(ctx, sessions.AccessTokenKey))
	again, err := filestorage.New(path)
	require.NoError(t, err)
	_, ok, err = again.Get(ctx, sessions.AccessTokenKey)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStorage_Sealed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := filestorage.New(path, filestorage.WithPassphrase("correct horse"))
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, sessions.RefreshTokenKey, "very-secret-refresh-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.False(t, strings.Contains(string(raw), "very-secret-refresh-token"))

	reopened, err := filestorage.New(path, filestorage.WithPassphrase("correct horse"))
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, sessions.RefreshTokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "very-secret-refresh-token", v)

	_, err = filestorage.New(path, filestorage.WithPassphrase("wrong"))
	require.ErrorIs(t, err, filestorage.ErrWrongPassphrase)
}

func TestStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))

	_, err := filestorage.New(path)
	require.ErrorIs(t, err, apperrors.ErrCorruptSession)

	s, err := filestorage.New(path, filestorage.WithDiscardUnreadable())
	require.NoError(t, err)
	_, ok, err := s.Get(context.Background(), sessions.AccessTokenKey)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStorage_DiscardUnreadableSealedFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	plain, err := filestorage.New(path)
	require.NoError(t, err)
	require.NoError(t, plain.Set(ctx, sessions.AccessTokenKey, "A"))

	_, err = filestorage.New(path, filestorage.WithPassphrase("new key"))
	require.ErrorIs(t, err, filestorage.ErrWrongPassphrase)

	s, err := filestorage.New(path, filestorage.WithPassphrase("new key"), filestorage.WithDiscardUnreadable())
	require.NoError(t, err)
	_, ok, err := s.Get(ctx, sessions.AccessTokenKey)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, s.Remove(ctx, sessions.AccessTokenKey))
}

func TestStorage_FailedWriteKeepsMemory(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "agroctl")
	path := filepath.Join(dir, "session.json")

	s, err := filestorage.New(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, sessions.AccessTokenKey, "A"))

	// A regular file where the directory was makes every save fail.
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("not a directory"), 0o600))

	require.Error(t, s.Set(ctx, sessions.AccessTokenKey, "B"))
	require.Error(t, s.Remove(ctx, sessions.AccessTokenKey))

	v, ok, err := s.Get(ctx, sessions.AccessTokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "A", v)
}

func TestStorage_BacksSessionStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	user := &users.User{ID: "user-1", Name: "Jane", Email: "jane@example.com"}

	fs, err := filestorage.New(path)
	require.NoError(t, err)
	store, err := sessions.NewStore(fs)
	require.NoError(t, err)
	require.NoError(t, store.SetSession(ctx, "A", "R", user))

	fs2, err := filestorage.New(path)
	require.NoError(t, err)
	reloaded, err := sessions.NewStore(fs2)
	require.NoError(t, err)
	ok, err := reloaded.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, sessions.Session{AccessToken: "A", RefreshToken: "R", User: user}, reloaded.Current())
}
