package session

import (
	"context"
	"sync"

	"jamjar/core/spotify"
	"jamjar/logger"
	"jamjar/repository"
)

// Appender implements the add-track protocol: de-duplicate against the
// known-track set, append through the catalog gateway, refresh expired
// credentials at most once, persist the grown set.
type Appender struct {
	sessions  repository.SessionRepository
	catalog   CatalogGateway
	refresher TokenRefresher
	log       repository.AppendLogRepository // optional

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAppender creates a new Appender. log may be nil to disable the
// append audit trail.
func NewAppender(sessions repository.SessionRepository, catalog CatalogGateway, refresher TokenRefresher, log repository.AppendLogRepository) *Appender {
	return &Appender{
		sessions:  sessions,
		catalog:   catalog,
		refresher: refresher,
		log:       log,
		locks:     make(map[string]*sync.Mutex),
	}
}

// tokenLock serializes add-track calls per share token so that two
// concurrent calls for the same track cannot both observe it as unknown.
func (a *Appender) tokenLock(token string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.locks[token]
	if !ok {
		l = &sync.Mutex{}
		a.locks[token] = l
	}
	return l
}

func (a *Appender) record(ctx context.Context, token, trackID string, outcome Outcome) {
	if a.log == nil {
		return
	}
	if err := a.log.Record(ctx, token, trackID, outcome.String()); err != nil {
		logger.Warn("[AddTrack] failed to record append log",
			logger.String("token", token), logger.String("track_id", trackID),
			logger.ErrorField(err))
	}
}

// AddTrack appends trackID to the playlist behind token. For a given
// token, each distinct track triggers at most one external append; once a
// track is known it stays known.
func (a *Appender) AddTrack(ctx context.Context, token, trackID string) (Outcome, error) {
	lock := a.tokenLock(token)
	lock.Lock()
	defer lock.Unlock()

	sess, err := a.sessions.GetByToken(ctx, token)
	if err != nil {
		return OutcomeAppendFailed, err
	}
	if sess == nil {
		logger.Warn("[AddTrack] unknown share token", logger.String("token", token))
		return OutcomeNotFound, nil
	}

	if sess.Knows(trackID) {
		logger.Debug("[AddTrack] track already known",
			logger.String("token", token), logger.String("track_id", trackID))
		a.record(ctx, token, trackID, OutcomeAlreadyPresent)
		return OutcomeAlreadyPresent, nil
	}

	appendErr := a.catalog.AppendTrack(ctx, sess.PlaylistID, sess.AccessToken, trackID)
	if appendErr != nil && spotify.IsAuthExpired(appendErr) {
		// Expired credentials: refresh once, retry once. Never looped.
		access, refresh, err := a.refresher.Refresh(ctx, sess.RefreshToken)
		if err != nil {
			logger.Error("[AddTrack] credential refresh failed",
				logger.String("token", token), logger.String("track_id", trackID),
				logger.ErrorField(err))
			a.record(ctx, token, trackID, OutcomeAppendFailed)
			return OutcomeAppendFailed, err
		}

		sess.AccessToken = access
		if err := a.sessions.UpdateAccessToken(ctx, token, access); err != nil {
			// The refreshed token still works for this request; a later
			// request will just refresh again.
			logger.Warn("[AddTrack] failed to persist refreshed access token",
				logger.String("token", token), logger.ErrorField(err))
		}
		if refresh != "" && refresh != sess.RefreshToken {
			if err := a.sessions.UpdateRefreshToken(ctx, token, refresh); err != nil {
				logger.Warn("[AddTrack] failed to persist rotated refresh token",
					logger.String("token", token), logger.ErrorField(err))
			}
		}

		appendErr = a.catalog.AppendTrack(ctx, sess.PlaylistID, sess.AccessToken, trackID)
	}

	if appendErr != nil {
		logger.Error("[AddTrack] append failed",
			logger.String("token", token), logger.String("host_id", sess.HostID),
			logger.String("playlist_id", sess.PlaylistID), logger.String("track_id", trackID),
			logger.ErrorField(appendErr))
		a.record(ctx, token, trackID, OutcomeAppendFailed)
		return OutcomeAppendFailed, appendErr
	}

	// The external append is authoritative. A failed local persist only
	// risks a duplicate append attempt later, never a lost append.
	if err := a.sessions.AddKnownTrack(ctx, token, trackID); err != nil {
		logger.Warn("[AddTrack] appended but failed to persist known track",
			logger.String("token", token), logger.String("track_id", trackID),
			logger.ErrorField(err))
	}

	logger.Info("[AddTrack] track appended",
		logger.String("token", token), logger.String("host_id", sess.HostID),
		logger.String("playlist_id", sess.PlaylistID), logger.String("track_id", trackID))
	a.record(ctx, token, trackID, OutcomeAppended)
	return OutcomeAppended, nil
}
