package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"nominas/backend/internal/config"
	"nominas/backend/internal/identity"
	"nominas/backend/internal/tenancy"
)

// Logger defines the logging interface compatible with the application
// logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Auth contains configuration and helpers for performing OpenID Connect
// authentication and binding each request to its tenant scope.
type Auth struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	apiVerifier  *oidc.IDTokenVerifier
	directory    *tenancy.Directory
	provisioner  *tenancy.Provisioner
	logger       Logger
	devMode      bool
	authBypass   bool
}

// New creates a new Auth object using values from the application
// configuration. It establishes a connection to the provider and
// prepares an ID token verifier.
func New(ctx context.Context, cfg *config.Config, directory *tenancy.Directory, provisioner *tenancy.Provisioner, logger Logger) (*Auth, error) {
	isDev := strings.ToUpper(cfg.Environment) == "DEV"
	shouldBypass := isDev && cfg.DevModeBypass

	var oauth2Config *oauth2.Config
	var verifier *oidc.IDTokenVerifier
	var apiVerifier *oidc.IDTokenVerifier

	if !shouldBypass {
		if cfg.Auth.Issuer == "" || cfg.Auth.ClientID == "" ||
			cfg.Auth.ClientSecret == "" || cfg.Auth.RedirectURL == "" {
			return nil, errors.New("auth configuration is incomplete")
		}

		provider, err := oidc.NewProvider(ctx, cfg.Auth.Issuer)
		if err != nil {
			return nil, err
		}

		oauth2Config = &oauth2.Config{
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.Auth.RedirectURL,
			Scopes:       []string{ScopeOpenID, ScopeProfile, ScopeEmail},
		}

		verifier = provider.Verifier(&oidc.Config{ClientID: cfg.Auth.ClientID})

		// Separate verifier for Access Tokens (Bearer). ClientID check
		// is skipped because access tokens often carry a different
		// audience (e.g. "api://default").
		apiVerifier = provider.Verifier(&oidc.Config{SkipClientIDCheck: true})
	}

	return &Auth{
		oauth2Config: oauth2Config,
		verifier:     verifier,
		apiVerifier:  apiVerifier,
		directory:    directory,
		provisioner:  provisioner,
		logger:       logger,
		devMode:      isDev,
		authBypass:   shouldBypass,
	}, nil
}

// LoginHandler initiates the OAuth2 authorization code flow by
// redirecting the user to the provider's authorization endpoint. A
// random state value is stored in a cookie to mitigate CSRF attacks.
func (a *Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if a.authBypass {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		http.Error(w, "failed to generate state", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		HttpOnly: true,
		Path:     "/",
		// For production you should set Secure: true and SameSite=strict
	})

	http.Redirect(w, r, a.oauth2Config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// CallbackHandler handles the redirect back from the provider. It
// verifies the state parameter, exchanges the code for tokens,
// validates the ID token, and sets a session cookie containing the raw
// ID token.
func (a *Auth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	if a.authBypass {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	// verify state
	cookie, err := r.Cookie("oauthstate")
	if err != nil || r.URL.Query().Get("state") != cookie.Value {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}

	// exchange code for token
	token, err := a.oauth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		http.Error(w, "token exchange failed", http.StatusInternalServerError)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		http.Error(w, "no id_token in token response", http.StatusInternalServerError)
		return
	}

	if _, err := a.verifier.Verify(r.Context(), rawIDToken); err != nil {
		http.Error(w, "failed to verify id token", http.StatusUnauthorized)
		return
	}

	// set session cookie with raw id token
	http.SetCookie(w, &http.Cookie{
		Name:     "id_token",
		Value:    rawIDToken,
		HttpOnly: true,
		Path:     "/",
		// Secure: true,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RequireAuth is middleware that authenticates the request and binds it
// to its tenant scope: verify the token, normalize the claims, resolve
// or create the tenant record, ensure its schema exists, and attach the
// session binding to the request context. Requests that cannot complete
// the chain never reach scoped handlers.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := a.authenticate(w, r)
		if !ok {
			return
		}

		id, err := identity.Normalize(claims)
		if err != nil {
			http.Error(w, "token has no usable identity", http.StatusUnauthorized)
			return
		}

		tenant, err := a.directory.ResolveOrCreate(r.Context(), id)
		if err != nil {
			a.fail(w, "tenant resolution failed", "email", id.Email, "error", err)
			return
		}

		schema, err := a.provisioner.Ensure(r.Context(), tenant.ID)
		if err != nil {
			a.fail(w, "tenant provisioning failed", "email", id.Email, "tenant_id", tenant.ID, "error", err)
			return
		}

		ctx := tenancy.WithBinding(r.Context(), tenancy.SessionBinding{
			Email:    id.Email,
			TenantID: tenant.ID,
			Schema:   schema,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate verifies the bearer or cookie token and returns its
// claims. On failure it writes the response itself and returns ok=false.
func (a *Auth) authenticate(w http.ResponseWriter, r *http.Request) (identity.Claims, bool) {
	if a.authBypass {
		return identity.Claims{Email: "dev@localhost"}, true
	}

	var token *oidc.IDToken
	var err error

	// Check for Authorization header first (for API clients)
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		rawToken := strings.TrimPrefix(authHeader, "Bearer ")
		token, err = a.apiVerifier.Verify(r.Context(), rawToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return identity.Claims{}, false
		}
	} else {
		cookie, cerr := r.Cookie("id_token")
		if cerr != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return identity.Claims{}, false
		}
		token, err = a.verifier.Verify(r.Context(), cookie.Value)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return identity.Claims{}, false
		}
	}

	var claims identity.Claims
	if err := token.Claims(&claims); err != nil {
		http.Error(w, "failed to parse token claims", http.StatusUnauthorized)
		return identity.Claims{}, false
	}
	return claims, true
}

// fail logs the failure with a correlation id and answers with a
// generic message. Internal identifiers are never echoed to the caller.
func (a *Auth) fail(w http.ResponseWriter, msg string, args ...any) {
	correlation := uuid.NewString()
	if a.logger != nil {
		a.logger.Error(msg, append([]any{"correlation", correlation}, args...)...)
	}
	http.Error(w, "internal error (ref "+correlation+")", http.StatusInternalServerError)
}

// LogoutHandler clears the session cookie and redirects to the home
// page. The session binding dies with the session.
func (a *Auth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   "id_token",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
