package session

import (
	"context"
	"errors"
	"testing"

	"jamjar/core/share"
	"jamjar/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejects Empty Fields", func(t *testing.T) {
		catalog := new(MockCatalog)
		repo := new(MockSessionRepository)
		r := NewRegistrar(repo, catalog)

		cases := [][4]string{
			{"", "p1", "at", "rt"},
			{"u1", "", "at", "rt"},
			{"u1", "p1", "", "rt"},
			{"u1", "p1", "at", ""},
		}
		for _, c := range cases {
			_, err := r.Register(ctx, c[0], c[1], c[2], c[3])
			assert.ErrorIs(t, err, ErrInvalidRegistration)
		}
		catalog.AssertNotCalled(t, "PlaylistTracks", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("Snapshot Failure", func(t *testing.T) {
		catalog := new(MockCatalog)
		repo := new(MockSessionRepository)
		r := NewRegistrar(repo, catalog)

		catalog.On("PlaylistTracks", mock.Anything, "p1", "at").
			Return(nil, errors.New("boom"))

		_, err := r.Register(ctx, "u1", "p1", "at", "rt")
		assert.ErrorIs(t, err, ErrSnapshotFailed)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("Seeds Known Tracks From Snapshot", func(t *testing.T) {
		catalog := new(MockCatalog)
		repo := new(MockSessionRepository)
		r := NewRegistrar(repo, catalog)

		catalog.On("PlaylistTracks", mock.Anything, "p1", "at").
			Return([]model.Track{{ID: "t1"}, {ID: "t2"}}, nil)

		var stored *model.Session
		repo.On("Upsert", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).(*model.Session)
			}).
			Return(nil)

		token, err := r.Register(ctx, "u1", "p1", "at", "rt")
		assert.NoError(t, err)
		assert.Equal(t, share.Fingerprint("u1", "p1"), token)

		if assert.NotNil(t, stored) {
			assert.Equal(t, token, stored.Token)
			assert.Equal(t, "u1", stored.HostID)
			assert.Equal(t, "p1", stored.PlaylistID)
			assert.Equal(t, "at", stored.AccessToken)
			assert.Equal(t, "rt", stored.RefreshToken)
			assert.Len(t, stored.KnownTracks, 2)
			assert.Contains(t, stored.KnownTracks, "t1")
			assert.Contains(t, stored.KnownTracks, "t2")
		}
	})

	t.Run("Re-registration Wins", func(t *testing.T) {
		repo := newMemSessionRepository()
		catalog := &countingCatalog{tracks: []model.Track{{ID: "t1"}}}
		r := NewRegistrar(repo, catalog)

		first, err := r.Register(ctx, "u1", "p1", "at-old", "rt-old")
		assert.NoError(t, err)

		catalog.tracks = []model.Track{{ID: "t7"}, {ID: "t8"}}
		second, err := r.Register(ctx, "u1", "p1", "at-new", "rt-new")
		assert.NoError(t, err)
		assert.Equal(t, first, second, "same pair must map to the same token")

		assert.Len(t, repo.sessions, 1, "re-registration must not create a second record")

		sess, err := repo.GetByToken(ctx, second)
		assert.NoError(t, err)
		assert.Equal(t, "at-new", sess.AccessToken)
		assert.Equal(t, "rt-new", sess.RefreshToken)
		assert.Len(t, sess.KnownTracks, 2)
		assert.Contains(t, sess.KnownTracks, "t7")
		assert.NotContains(t, sess.KnownTracks, "t1", "ledger must reset to the fresh snapshot")
	})
}
