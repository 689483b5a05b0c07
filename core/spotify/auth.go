package spotify

import (
	"context"
	"errors"
	"fmt"

	"jamjar/core/auth"
	"jamjar/logger"

	"golang.org/x/oauth2"
)

// Authorization failures. Each is terminal for the current login attempt;
// the caller restarts from BeginAuthorization.
var (
	ErrStateMismatch        = errors.New("authorization state does not match login cookie")
	ErrAuthExchangeFailed   = errors.New("failed to exchange authorization code")
	ErrIdentityLookupFailed = errors.New("failed to resolve host identity")
	ErrRefreshFailed        = errors.New("failed to refresh access token")
)

// Scopes requested from the provider: read and write access to the
// host's public and private playlists.
var authScopes = []string{
	"playlist-modify-public",
	"playlist-modify-private",
	"playlist-read-private",
	"playlist-read-collaborative",
}

// Authenticator owns the OAuth2 authorization-code exchange and the
// refresh-token renewal flow.
type Authenticator struct {
	config *oauth2.Config
	api    *Client
}

// NewAuthenticator creates an authenticator for the given app credentials.
// api is used for the post-exchange identity lookup.
func NewAuthenticator(clientID, clientSecret, redirectURL string, api *Client) *Authenticator {
	return &Authenticator{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       authScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
		api: api,
	}
}

// SetEndpoint overrides the provider endpoints.
func (a *Authenticator) SetEndpoint(authorizeURL, exchangeURL string) {
	a.config.Endpoint = oauth2.Endpoint{
		AuthURL:  authorizeURL,
		TokenURL: exchangeURL,
	}
}

// BeginAuthorization returns the provider authorization URL and the state
// nonce the caller must bind to a short-lived cookie.
func (a *Authenticator) BeginAuthorization() (string, string, error) {
	nonce, err := auth.GenerateNonce(16)
	if err != nil {
		return "", "", err
	}

	redirect := a.config.AuthCodeURL(nonce,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("show_dialog", "true"),
	)
	return redirect, nonce, nil
}

// CompleteAuthorization exchanges the callback code for a token pair and
// resolves the host's user ID. The state check runs before any network
// call.
func (a *Authenticator) CompleteAuthorization(ctx context.Context, code, state, cookieState string) (accessToken, refreshToken, hostID string, err error) {
	if state == "" || cookieState == "" || state != cookieState {
		return "", "", "", ErrStateMismatch
	}

	tok, err := a.config.Exchange(ctx, code)
	if err != nil {
		logger.Error("[CompleteAuthorization] code exchange failed", logger.ErrorField(err))
		return "", "", "", fmt.Errorf("%w: %v", ErrAuthExchangeFailed, err)
	}
	if tok.AccessToken == "" {
		return "", "", "", fmt.Errorf("%w: empty access token in response", ErrAuthExchangeFailed)
	}

	hostID, err = a.api.Me(ctx, tok.AccessToken)
	if err != nil {
		logger.Error("[CompleteAuthorization] identity lookup failed", logger.ErrorField(err))
		return "", "", "", fmt.Errorf("%w: %v", ErrIdentityLookupFailed, err)
	}

	logger.Info("[CompleteAuthorization] host authorized", logger.String("host_id", hostID))
	return tok.AccessToken, tok.RefreshToken, hostID, nil
}

// Refresh exchanges the refresh token for a new access token. The second
// return value is the refresh token to keep using: the provider's new one
// when it rotates, the input otherwise.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	src := a.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		logger.Error("[Refresh] token renewal failed", logger.ErrorField(err))
		return "", "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	if tok.AccessToken == "" {
		return "", "", fmt.Errorf("%w: empty access token in response", ErrRefreshFailed)
	}

	next := refreshToken
	if tok.RefreshToken != "" {
		next = tok.RefreshToken
	}
	return tok.AccessToken, next, nil
}
