package runtime

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	gc "github.com/joshsymonds/inboxsweep/internal/gmail"
)

// Scope selects the OAuth scope requested for the session.
type Scope int

const (
	ScopeReadonly Scope = iota
	ScopeModify
)

const credentialsFile = "credentials.json"

func (s Scope) oauthScope() string {
	switch s {
	case ScopeReadonly:
		return gmail.GmailReadonlyScope
	case ScopeModify:
		return gmail.GmailModifyScope
	default:
		panic("unknown scope")
	}
}

// tokenFile keeps one cached token per scope so a read-only grant is never
// reused for a run that needs to modify messages.
func (s Scope) tokenFile() string {
	if s == ScopeReadonly {
		return "token-readonly.json"
	}
	return "token.json"
}

// NewGmailClient opens an authenticated session using the OAuth client
// secret and cached token stored in authDir. Without a cached token it runs
// the installed-app consent flow on the terminal and caches the result.
func NewGmailClient(ctx context.Context, authDir string, scope Scope) (gc.Client, error) {
	oauthCfg, err := loadOAuthConfig(authDir, scope)
	if err != nil {
		return nil, err
	}
	tokenPath := filepath.Join(authDir, scope.tokenFile())
	tok, err := LoadToken(tokenPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: read token: %w", gc.ErrAuth, err)
		}
		tok, err = authorize(ctx, oauthCfg, os.Stdin, os.Stderr)
		if err != nil {
			return nil, err
		}
		if err = SaveToken(tokenPath, tok); err != nil {
			return nil, err
		}
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("%w: create gmail service: %w", gc.ErrAuth, err)
	}
	return NewGoogleAPIClient(svc), nil
}

func loadOAuthConfig(authDir string, scope Scope) (*oauth2.Config, error) {
	raw, err := os.ReadFile(filepath.Join(authDir, credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("%w: read client secret: %w", gc.ErrAuth, err)
	}
	cfg, err := google.ConfigFromJSON(raw, scope.oauthScope())
	if err != nil {
		return nil, fmt.Errorf("%w: parse client secret: %w", gc.ErrAuth, err)
	}
	return cfg, nil
}

func authorize(ctx context.Context, cfg *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	url := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open the following link in your browser, then paste the authorization code:\n%s\n> ", url)
	code, err := bufio.NewReader(in).ReadString('\n')
	code = strings.TrimSpace(code)
	if code == "" {
		if err == nil {
			err = errors.New("empty authorization code")
		}
		return nil, fmt.Errorf("%w: read authorization code: %w", gc.ErrAuth, err)
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange authorization code: %w", gc.ErrAuth, err)
	}
	return tok, nil
}

// LoadToken reads a cached OAuth token.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err = json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", path, err)
	}
	return tok, nil
}

// SaveToken caches tok at path, readable only by the owner.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create auth dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err = json.NewEncoder(f).Encode(tok); err != nil {
		f.Close()
		return fmt.Errorf("encode token: %w", err)
	}
	return f.Close()
}

// DefaultLogger writes text logs to stderr at the given level.
func DefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
