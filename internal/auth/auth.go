// Package auth owns the only code path that writes the session credential:
// registration and login against the backend, and logout.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Veraticus/finchat/internal/backend"
	"github.com/Veraticus/finchat/internal/common"
	"github.com/Veraticus/finchat/internal/model"
	"github.com/Veraticus/finchat/internal/session"
	"github.com/Veraticus/finchat/internal/transport"
)

// Messages shown when the backend rejects a request without a detail.
const (
	RegisterFailedMessage     = "Error al registrar usuario"
	InvalidCredentialsMessage = "Credenciales inválidas"
	ConnectionFailedMessage   = "No se pudo conectar con el servidor. Intenta nuevamente."
)

// Orchestrator registers, logs in and logs out against a session.
type Orchestrator struct {
	backend backend.Authenticator
	session *session.Session
}

// NewOrchestrator creates an auth orchestrator.
func NewOrchestrator(b backend.Authenticator, s *session.Session) *Orchestrator {
	return &Orchestrator{backend: b, session: s}
}

// Register creates an account. A non-empty token in the answer is stored
// before Register returns. Backend rejections are *common.AuthError.
func (o *Orchestrator) Register(ctx context.Context, displayName, email, password string) (model.Credential, error) {
	cred, err := o.backend.Register(ctx, displayName, email, password)
	if err != nil {
		return model.Credential{}, authError(err, RegisterFailedMessage)
	}

	return o.persist(ctx, cred, model.User{DisplayName: displayName, Email: email})
}

// Login exchanges email and password for a credential and stores it.
// A rejected login leaves any stored session untouched.
func (o *Orchestrator) Login(ctx context.Context, email, password string) (model.Credential, error) {
	cred, err := o.backend.Login(ctx, email, password)
	if err != nil {
		return model.Credential{}, authError(err, InvalidCredentialsMessage)
	}

	return o.persist(ctx, cred, model.User{Email: email})
}

// Logout clears the stored session without contacting the backend. It is
// idempotent.
func (o *Orchestrator) Logout(ctx context.Context) error {
	return o.session.End(ctx)
}

// IsAuthenticated reports whether a non-empty credential is stored.
func (o *Orchestrator) IsAuthenticated(ctx context.Context) bool {
	return o.session.IsAuthenticated(ctx)
}

// CurrentUser returns the stored user identity, if any.
func (o *Orchestrator) CurrentUser(ctx context.Context) (model.User, bool, error) {
	return o.session.User(ctx)
}

func (o *Orchestrator) persist(ctx context.Context, cred model.Credential, user model.User) (model.Credential, error) {
	if cred.IsZero() {
		slog.Warn("Backend issued an empty token, session not stored", "email", user.Email)
		return cred, nil
	}
	if cred.Kind == "" {
		cred.Kind = model.DefaultTokenKind
	}

	if err := o.session.Establish(ctx, cred, user); err != nil {
		return model.Credential{}, err
	}

	common.LogInfo("Session established", common.Fields{"email": user.Email, "token": cred.Redacted()})
	return cred, nil
}

func authError(err error, fallback string) error {
	msg := strings.TrimSpace(transport.ErrorDetail(err))
	if msg == "" {
		msg = fallback
		// Without any response the credentials were never checked.
		var reqErr *common.RequestError
		if errors.As(err, &reqErr) && reqErr.StatusCode == 0 {
			msg = ConnectionFailedMessage
		}
	}
	common.LogDebug("Authentication rejected", common.Fields{"detail": msg, "error": err})
	return &common.AuthError{Message: msg, Err: err}
}
