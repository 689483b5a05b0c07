package session

import (
	"context"
	"sync"

	"jamjar/model"

	"github.com/stretchr/testify/mock"
)

// MockSessionRepository is a testify mock of repository.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Upsert(ctx context.Context, session *model.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionRepository) AddKnownTrack(ctx context.Context, token, trackID string) error {
	args := m.Called(ctx, token, trackID)
	return args.Error(0)
}

func (m *MockSessionRepository) UpdateAccessToken(ctx context.Context, token, accessToken string) error {
	args := m.Called(ctx, token, accessToken)
	return args.Error(0)
}

func (m *MockSessionRepository) UpdateRefreshToken(ctx context.Context, token, refreshToken string) error {
	args := m.Called(ctx, token, refreshToken)
	return args.Error(0)
}

// MockCatalog is a testify mock of CatalogGateway.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) PlaylistTracks(ctx context.Context, playlistID, accessToken string) ([]model.Track, error) {
	args := m.Called(ctx, playlistID, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Track), args.Error(1)
}

func (m *MockCatalog) AppendTrack(ctx context.Context, playlistID, accessToken, trackID string) error {
	args := m.Called(ctx, playlistID, accessToken, trackID)
	return args.Error(0)
}

// MockRefresher is a testify mock of TokenRefresher.
type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

// MockAppendLog is a testify mock of repository.AppendLogRepository.
type MockAppendLog struct {
	mock.Mock
}

func (m *MockAppendLog) Record(ctx context.Context, token, trackID, outcome string) error {
	args := m.Called(ctx, token, trackID, outcome)
	return args.Error(0)
}

func (m *MockAppendLog) RecentByToken(ctx context.Context, token string, limit int) ([]*model.AppendLog, error) {
	args := m.Called(ctx, token, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AppendLog), args.Error(1)
}

// memSessionRepository is an in-memory store for end-to-end style tests.
type memSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newMemSessionRepository() *memSessionRepository {
	return &memSessionRepository{sessions: make(map[string]*model.Session)}
}

func (r *memSessionRepository) clone(s *model.Session) *model.Session {
	cp := *s
	cp.KnownTracks = make(map[string]struct{}, len(s.KnownTracks))
	for id := range s.KnownTracks {
		cp.KnownTracks[id] = struct{}{}
	}
	return &cp
}

func (r *memSessionRepository) Upsert(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Token] = r.clone(session)
	return nil
}

func (r *memSessionRepository) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return nil, nil
	}
	return r.clone(s), nil
}

func (r *memSessionRepository) AddKnownTrack(ctx context.Context, token, trackID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[token]; ok {
		s.KnownTracks[trackID] = struct{}{}
	}
	return nil
}

func (r *memSessionRepository) UpdateAccessToken(ctx context.Context, token, accessToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[token]; ok {
		s.AccessToken = accessToken
	}
	return nil
}

func (r *memSessionRepository) UpdateRefreshToken(ctx context.Context, token, refreshToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[token]; ok {
		s.RefreshToken = refreshToken
	}
	return nil
}

// countingCatalog counts external calls; used where call counts are the
// property under test.
type countingCatalog struct {
	mu          sync.Mutex
	tracks      []model.Track
	appendCalls int
	appendErr   error // returned once, then cleared
}

func (c *countingCatalog) PlaylistTracks(ctx context.Context, playlistID, accessToken string) ([]model.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracks, nil
}

func (c *countingCatalog) AppendTrack(ctx context.Context, playlistID, accessToken, trackID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appendCalls += 1
	if c.appendErr != nil {
		err := c.appendErr
		c.appendErr = nil
		return err
	}
	return nil
}

func (c *countingCatalog) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appendCalls
}

// staticRefresher always succeeds with the same access token.
type staticRefresher struct {
	access string
	calls  int
	mu     sync.Mutex
}

func (r *staticRefresher) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.access, refreshToken, nil
}
