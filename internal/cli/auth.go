package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/integrations/spotify"
	"github.com/matzehuels/museum/pkg/museum"
	"github.com/matzehuels/museum/pkg/session"
)

// loginTimeout bounds the wait for the browser consent.
const loginTimeout = 5 * time.Minute

const callbackPage = `<!doctype html><html><body style="font-family:sans-serif;background:#121212;color:#fff;text-align:center;padding-top:20vh">
<h1>%s</h1><p>You can close this window and return to the terminal.</p></body></html>`

// loginCommand creates the login command.
func (c *CLI) loginCommand() *cobra.Command {
	var token string
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with Spotify",
		Long: `Log in with the Spotify authorization-code flow (PKCE).

A browser window opens on the Spotify consent page; once you approve, the
token is stored in ~/.config/museum/sessions/ and refreshed automatically.
Requires a client ID ($SPOTIFY_CLIENT_ID or [spotify] client_id) whose
redirect URI matches [spotify] redirect_url.

With --token, an existing access token is stored instead. It cannot be
refreshed and expires after an hour.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if token != "" {
				return c.storeToken(ctx, &oauth2.Token{AccessToken: token, TokenType: "Bearer"})
			}
			tok, err := c.runLogin(ctx, !noBrowser)
			if err != nil {
				return err
			}
			return c.storeToken(ctx, tok)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "store this access token instead of logging in")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print the consent URL instead of opening it")
	return cmd
}

// logoutCommand creates the logout command.
func (c *CLI) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored Spotify session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sessionStore()
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			if err := store.DeleteSession(cmd.Context()); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Logged out")
			return nil
		},
	}
}

// whoamiCommand creates the whoami command.
func (c *CLI) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in Spotify account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			store, err := sessionStore()
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			sess, err := store.Active(ctx, c.refresher())
			if err != nil {
				return sessionError(err)
			}

			spinner := newSpinnerWithContext(ctx, "Verifying session...")
			spinner.Start()
			profile, err := c.fetchProfile(ctx, sess.AccessToken)
			if err != nil {
				spinner.StopWithError("Session invalid")
				return fmt.Errorf("verify session: %w", err)
			}
			spinner.Stop()

			printSuccess("Spotify session")
			printKeyValue("User", profile.Name())
			printKeyValue("ID", profile.ID)
			if profile.Product != "" {
				printKeyValue("Plan", profile.Product)
			}
			printKeyValue("Logged in", sess.CreatedAt.Format("Jan 2, 2006"))
			if !sess.TokenExpiry.IsZero() {
				printKeyValue("Token until", sess.TokenExpiry.Format("15:04 Jan 2"))
			}
			printKeyValue("Expires", sess.ExpiresAt.Format("Jan 2, 2006"))
			return nil
		},
	}
}

// =============================================================================
// Credentials
// =============================================================================

// credential resolves the access token for a command: the --token flag,
// then $SPOTIFY_TOKEN, then the stored login session.
func (c *CLI) credential(ctx context.Context, flagToken string) (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}
	if c.Config.Spotify.Token != "" {
		return c.Config.Spotify.Token, nil
	}
	store, err := sessionStore()
	if err != nil {
		return "", fmt.Errorf("open session store: %w", err)
	}
	sess, err := store.Active(ctx, c.refresher())
	if err != nil {
		return "", sessionError(err)
	}
	return sess.AccessToken, nil
}

// refresher renews expired tokens when a client ID is configured.
func (c *CLI) refresher() session.Refresher {
	if c.Config.Spotify.ClientID == "" {
		return nil
	}
	return spotify.NewAuthenticator(c.Config.Spotify.ClientID, c.Config.Spotify.RedirectURL).Refresh
}

func sessionError(err error) error {
	switch {
	case stderrors.Is(err, session.ErrNotFound):
		return errors.New(errors.ErrCodeSessionNotFound, "not logged in (run 'museum login' or pass --token)")
	case stderrors.Is(err, session.ErrExpired):
		return errors.Wrap(errors.ErrCodeSessionExpired, err, "session expired (run 'museum login' again)")
	default:
		return fmt.Errorf("load session: %w", err)
	}
}

func (c *CLI) fetchProfile(ctx context.Context, credential string) (*museum.Profile, error) {
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return nil, err
	}
	defer runner.Close()
	return runner.Profile(ctx, credential)
}

// storeToken verifies tok against the API and saves it as the session.
func (c *CLI) storeToken(ctx context.Context, tok *oauth2.Token) error {
	profile, err := c.fetchProfile(ctx, tok.AccessToken)
	if err != nil {
		return fmt.Errorf("verify token: %w", err)
	}
	sess, err := session.New(tok, profile)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	store, err := sessionStore()
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	if err := store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	printSuccess("Logged in as %s", profile.Name())
	printDetail("Session stored in %s", store.Path())
	return nil
}

// =============================================================================
// Authorization Code Login
// =============================================================================

// runLogin serves the redirect URI locally, sends the listener to the
// consent page and waits for the callback.
func (c *CLI) runLogin(ctx context.Context, openURL bool) (*oauth2.Token, error) {
	cfg := c.Config.Spotify
	if cfg.ClientID == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"no client ID configured (set $SPOTIFY_CLIENT_ID or [spotify] client_id, or use --token)")
	}
	redirect, err := url.Parse(cfg.RedirectURL)
	if err != nil || redirect.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid redirect URL %q", cfg.RedirectURL)
	}

	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	auth := spotify.NewAuthenticator(cfg.ClientID, cfg.RedirectURL)
	results := make(chan loginResult, 1)

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", redirect.Host, err)
	}
	srv := &http.Server{Handler: callbackRouter(redirect.Path, auth, results), ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	consent := auth.AuthURL()
	printNewline()
	fmt.Println(StyleTitle.Render("Spotify Authorization"))
	printNewline()
	printKeyValue("URL", StyleLink.Render(consent))
	printNewline()
	if !openURL || openBrowser(consent) != nil {
		printDetail("Copy the URL above and paste it in your browser")
	} else {
		printDetail("Opening browser...")
	}
	printInline("Waiting for authorization...")

	select {
	case res := <-results:
		printNewline()
		if res.err != nil {
			return nil, fmt.Errorf("authorization failed: %w", res.err)
		}
		return res.tok, nil
	case <-ctx.Done():
		printNewline()
		return nil, fmt.Errorf("authorization failed: %w", ctx.Err())
	}
}

type loginResult struct {
	tok *oauth2.Token
	err error
}

// callbackRouter serves the redirect path. Only the first callback is
// delivered; later ones are answered but ignored.
func callbackRouter(path string, auth *spotify.Authenticator, results chan<- loginResult) http.Handler {
	if path == "" {
		path = "/"
	}
	r := chi.NewRouter()
	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		tok, err := auth.Token(req.Context(), req)
		heading := "Logged in to museum"
		if err != nil {
			heading = "Login failed"
			w.WriteHeader(http.StatusBadRequest)
		}
		fmt.Fprintf(w, callbackPage, heading)
		select {
		case results <- loginResult{tok: tok, err: err}:
		default:
		}
	})
	return r
}

func openBrowser(rawURL string) error {
	if err := errors.ValidateURL(rawURL); err != nil {
		return err
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
