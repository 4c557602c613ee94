package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/room-control/internal/config"
	domain "github.com/oshokin/room-control/internal/domain/alarm"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))
	s, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, s)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns equal state.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "state.json")
	repo := NewFileRepository(file)

	want := &domain.State{
		Timestamp: time.Date(2024, 5, 10, 12, 0, 5, 250, time.UTC),
		LastActor: &domain.Actor{
			Hostname: "lab-02",
			Username: "guard",
		},
		IsArmed: false,
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	info, err := os.Stat(file)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(config.DefaultFilePermissions), info.Mode().Perm())
}

// TestFileRepository_OptionalFields covers a state without actor or timestamp.
func TestFileRepository_OptionalFields(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "state.json"))

	require.NoError(t, repo.Save(context.Background(), &domain.State{IsArmed: true}))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.True(t, got.IsArmed)
	require.Nil(t, got.LastActor)
	require.True(t, got.Timestamp.IsZero())
}

// TestFileRepository_Malformed verifies broken files are reported, not defaulted.
func TestFileRepository_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contents string
	}{
		{name: "not json", contents: "armed"},
		{name: "missing flag", contents: `{"timestamp":"2024-05-10T12:00:05Z"}`},
		{name: "flag is a string", contents: `{"is_armed":"yes"}`},
		{name: "bad timestamp", contents: `{"is_armed":true,"timestamp":"yesterday"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			file := filepath.Join(t.TempDir(), "state.json")
			require.NoError(t, os.WriteFile(file, []byte(tt.contents), config.DefaultFilePermissions))

			_, err := NewFileRepository(file).Load(context.Background())
			require.Error(t, err)
			require.NotErrorIs(t, err, ErrNotFound)
		})
	}
}
