package spotify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// DefaultRedirectURL is the loopback callback registered for the CLI.
const DefaultRedirectURL = "http://127.0.0.1:8976/callback"

// Scopes are the permissions a museum needs.
var Scopes = []string{
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopeUserReadPrivate,
}

// Authenticator drives one authorization-code login with PKCE.
// Each Authenticator carries its own state and verifier, so create a new one
// per login attempt.
type Authenticator struct {
	auth     *spotifyauth.Authenticator
	cfg      oauth2.Config
	state    string
	verifier string
}

// NewAuthenticator creates an authenticator for a public client.
func NewAuthenticator(clientID, redirectURL string) *Authenticator {
	if redirectURL == "" {
		redirectURL = DefaultRedirectURL
	}
	return &Authenticator{
		cfg: oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURL,
			Scopes:      Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   spotifyauth.AuthURL,
				TokenURL:  spotifyauth.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		auth: spotifyauth.New(
			spotifyauth.WithClientID(clientID),
			spotifyauth.WithRedirectURL(redirectURL),
			spotifyauth.WithScopes(Scopes...),
		),
		state:    uuid.NewString(),
		verifier: oauth2.GenerateVerifier(),
	}
}

// State returns the anti-forgery state embedded in the authorization URL.
func (a *Authenticator) State() string { return a.state }

// AuthURL returns the consent page the listener must open.
func (a *Authenticator) AuthURL() string {
	return a.auth.AuthURL(a.state, oauth2.S256ChallengeOption(a.verifier))
}

// Token completes the flow from the callback request, verifying the state
// and exchanging the code together with the PKCE verifier.
func (a *Authenticator) Token(ctx context.Context, r *http.Request) (*oauth2.Token, error) {
	if errMsg := r.FormValue("error"); errMsg != "" {
		return nil, fmt.Errorf("authorization denied: %s", errMsg)
	}
	tok, err := a.auth.Token(ctx, a.state, r, oauth2.VerifierOption(a.verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return tok, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token is kept when the response does not rotate it.
func (a *Authenticator) Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	if tok == nil || tok.RefreshToken == "" {
		return nil, fmt.Errorf("refresh token: no refresh token")
	}
	fresh, err := a.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: tok.RefreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return fresh, nil
}
