// Package identity is the Session Provider backed by a hosted identity REST API
// (accounts:* endpoints plus a secure-token refresh endpoint).
package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/adapters/restclient"
	"hotel_booking/internal/domain"
)

// refreshSkew refreshes ID tokens slightly before they expire.
const refreshSkew = time.Minute

// Tokens is what survives a restart.
type Tokens struct {
	UserID       string `json:"uid"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

func (t Tokens) user() *domain.SessionUser {
	return &domain.SessionUser{ID: t.UserID, DisplayName: t.DisplayName, Email: t.Email}
}

type TokenStore interface {
	Load(ctx context.Context) (Tokens, bool, error)
	Save(ctx context.Context, t Tokens) error
	Clear(ctx context.Context) error
}

type Config struct {
	IdentityBase string
	TokenBase    string
	APIKey       string
	RPS          int
}

type Provider struct {
	cfg    Config
	rc     *restclient.Client
	tokens TokenStore
	now    func() time.Time

	mu        sync.Mutex
	cur       *Tokens
	known     bool
	nextID    int
	listeners map[int]func(*domain.SessionUser)
}

func New(cfg Config, tokens TokenStore) *Provider {
	return &Provider{
		cfg:       cfg,
		rc:        restclient.New("identity", cfg.RPS, 15*time.Second),
		tokens:    tokens,
		now:       time.Now,
		listeners: map[int]func(*domain.SessionUser){},
	}
}

/********** wire types **********/

type authResp struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

type refreshResp struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

type lookupResp struct {
	Users []struct {
		LocalID     string `json:"localId"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	} `json:"users"`
}

type errorResp struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

/********** SessionProvider **********/

// Restore loads persisted tokens and announces the resulting session.
// Until it returns, listeners receive nothing.
func (p *Provider) Restore(ctx context.Context) {
	var user *domain.SessionUser
	tok, ok, err := p.tokens.Load(ctx)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("session tokens unavailable")
	case ok:
		user = p.resume(ctx, tok)
	}
	p.publish(user, func() {
		if user == nil {
			p.cur = nil
		}
	})
}

// resume revalidates stored tokens. An offline provider keeps the stored user.
func (p *Provider) resume(ctx context.Context, tok Tokens) *domain.SessionUser {
	fresh, err := p.refresh(ctx, tok)
	if err == nil {
		fresh, err = p.lookup(ctx, fresh)
	}
	var ae *domain.AuthError
	switch {
	case errors.As(err, &ae) && ae.Code >= 400 && ae.Code < 500:
		log.Info().Str("reason", ae.Message).Msg("stored session rejected")
		if cerr := p.tokens.Clear(ctx); cerr != nil {
			log.Warn().Err(cerr).Msg("clear session tokens")
		}
		return nil
	case err != nil:
		log.Warn().Err(err).Msg("identity service unreachable, using stored session")
		fresh = tok
	default:
		p.save(ctx, fresh)
	}
	p.mu.Lock()
	p.cur = &fresh
	p.mu.Unlock()
	return fresh.user()
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (domain.SessionUser, error) {
	var r authResp
	in := map[string]any{"email": email, "password": password, "returnSecureToken": true}
	if err := p.call(ctx, p.accountsURL("signInWithPassword"), "signIn", in, &r, false); err != nil {
		return domain.SessionUser{}, err
	}
	return p.signedIn(ctx, Tokens{
		UserID: r.LocalID, Email: r.Email, DisplayName: r.DisplayName,
		IDToken: r.IDToken, RefreshToken: r.RefreshToken,
	}), nil
}

// SignUp creates the account and sets its display name before announcing it.
func (p *Provider) SignUp(ctx context.Context, email, password, displayName string) (domain.SessionUser, error) {
	var r authResp
	in := map[string]any{"email": email, "password": password, "returnSecureToken": true}
	if err := p.call(ctx, p.accountsURL("signUp"), "signUp", in, &r, false); err != nil {
		return domain.SessionUser{}, err
	}
	tok := Tokens{UserID: r.LocalID, Email: r.Email, IDToken: r.IDToken, RefreshToken: r.RefreshToken}
	if displayName != "" {
		updated, err := p.updateProfile(ctx, tok, displayName)
		if err != nil {
			log.Warn().Err(err).Str("uid", tok.UserID).Msg("set display name after sign up")
		} else {
			tok = updated
		}
	}
	return p.signedIn(ctx, tok), nil
}

// SignOut is local: tokens are forgotten and listeners see no session.
func (p *Provider) SignOut(ctx context.Context) error {
	err := p.tokens.Clear(ctx)
	p.publish(nil, func() { p.cur = nil })
	return errors.Wrap(err, "sign out")
}

func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	in := map[string]any{"requestType": "PASSWORD_RESET", "email": email}
	return p.call(ctx, p.accountsURL("sendOobCode"), "sendOobCode", in, nil, false)
}

func (p *Provider) UpdateDisplayName(ctx context.Context, name string) error {
	p.mu.Lock()
	if p.cur == nil {
		p.mu.Unlock()
		return domain.ErrAuthRequired
	}
	tok := *p.cur
	p.mu.Unlock()

	tok, err := p.ensureFresh(ctx, tok)
	if err != nil {
		return err
	}
	tok, err = p.updateProfile(ctx, tok, name)
	if err != nil {
		return err
	}
	p.signedIn(ctx, tok)
	return nil
}

// OnSessionChange delivers the known session right away, then every change.
func (p *Provider) OnSessionChange(fn func(*domain.SessionUser)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	known := p.known
	var u *domain.SessionUser
	if p.cur != nil {
		u = p.cur.user()
	}
	p.mu.Unlock()

	if known {
		fn(u)
	}
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

/********** internals **********/

func (p *Provider) signedIn(ctx context.Context, tok Tokens) domain.SessionUser {
	p.save(ctx, tok)
	p.publish(tok.user(), func() { p.cur = &tok })
	return *tok.user()
}

func (p *Provider) save(ctx context.Context, tok Tokens) {
	if err := p.tokens.Save(ctx, tok); err != nil {
		log.Warn().Err(err).Msg("persist session tokens")
	}
}

// publish applies mutate under the lock, then notifies listeners outside it.
func (p *Provider) publish(u *domain.SessionUser, mutate func()) {
	p.mu.Lock()
	mutate()
	p.known = true
	fns := make([]func(*domain.SessionUser), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	observability.SetSignedIn(u != nil)

	for _, fn := range fns {
		var cp *domain.SessionUser
		if u != nil {
			v := *u
			cp = &v
		}
		fn(cp)
	}
}

func (p *Provider) updateProfile(ctx context.Context, tok Tokens, name string) (Tokens, error) {
	var r authResp
	in := map[string]any{"idToken": tok.IDToken, "displayName": name, "returnSecureToken": true}
	if err := p.call(ctx, p.accountsURL("update"), "update", in, &r, false); err != nil {
		return tok, err
	}
	tok.DisplayName = name
	if r.IDToken != "" {
		tok.IDToken = r.IDToken
	}
	if r.RefreshToken != "" {
		tok.RefreshToken = r.RefreshToken
	}
	return tok, nil
}

// ensureFresh refreshes the ID token when it is expired, about to expire or unreadable.
func (p *Provider) ensureFresh(ctx context.Context, tok Tokens) (Tokens, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok.IDToken, &claims); err == nil &&
		claims.ExpiresAt != nil && p.now().Add(refreshSkew).Before(claims.ExpiresAt.Time) {
		return tok, nil
	}
	return p.refresh(ctx, tok)
}

func (p *Provider) refresh(ctx context.Context, tok Tokens) (Tokens, error) {
	var r refreshResp
	in := map[string]any{"grant_type": "refresh_token", "refresh_token": tok.RefreshToken}
	u := p.cfg.TokenBase + "/token?key=" + url.QueryEscape(p.cfg.APIKey)
	if err := p.call(ctx, u, "token", in, &r, true); err != nil {
		return tok, err
	}
	tok.IDToken = r.IDToken
	if r.RefreshToken != "" {
		tok.RefreshToken = r.RefreshToken
	}
	return tok, nil
}

func (p *Provider) lookup(ctx context.Context, tok Tokens) (Tokens, error) {
	var r lookupResp
	if err := p.call(ctx, p.accountsURL("lookup"), "lookup", map[string]any{"idToken": tok.IDToken}, &r, true); err != nil {
		return tok, err
	}
	if len(r.Users) == 0 {
		return tok, &domain.AuthError{Code: http.StatusBadRequest, Message: "USER_NOT_FOUND"}
	}
	u := r.Users[0]
	tok.UserID, tok.Email, tok.DisplayName = u.LocalID, u.Email, u.DisplayName
	return tok, nil
}

func (p *Provider) accountsURL(method string) string {
	return p.cfg.IdentityBase + "/accounts:" + method + "?key=" + url.QueryEscape(p.cfg.APIKey)
}

// call maps transport failures to AuthError; Code 0 means the service was not reached.
func (p *Provider) call(ctx context.Context, u, endpoint string, in, out any, retryable bool) error {
	err := p.rc.Call(ctx, http.MethodPost, u, endpoint, in, out, retryable)
	if err == nil {
		observability.ObserveAuth(endpoint, "ok")
		return nil
	}
	var se *restclient.StatusError
	if errors.As(err, &se) {
		observability.ObserveAuth(endpoint, "rejected")
		var er errorResp
		if jerr := json.Unmarshal(se.Body, &er); jerr == nil && er.Error.Message != "" {
			return &domain.AuthError{Code: se.Code, Message: er.Error.Message}
		}
		return &domain.AuthError{Code: se.Code, Message: http.StatusText(se.Code)}
	}
	observability.ObserveAuth(endpoint, "unreachable")
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &domain.AuthError{Message: err.Error()}
}
