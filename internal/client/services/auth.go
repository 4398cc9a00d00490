// Package services composes the session manager and the Data API client
// into the operations the CLI exposes.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fmdata/internal/client/models"
	"github.com/dmitrijs2005/fmdata/internal/client/session"
)

// SessionManager is the part of *session.Manager the services use.
type SessionManager interface {
	IsActiveToken(ctx context.Context) bool
	Current(ctx context.Context) (models.Session, error)
	RefreshToken(ctx context.Context, credential string) (session.RefreshResult, error)
	Token(ctx context.Context, credential string) (string, error)
	Logout(ctx context.Context) (string, error)
}

// Status is what the CLI shows for "status".
type Status struct {
	Active  bool
	Session models.Session
}

// AuthService defines session operations for the CLI.
//
// Contract:
//   - Login: always obtains a fresh token with the given credential.
//   - Status: reports the stored session without touching the network.
//   - Logout: closes the server-side session and clears the local one.
type AuthService interface {
	Login(ctx context.Context, credential string) (session.RefreshResult, error)
	Status(ctx context.Context) (Status, error)
	Logout(ctx context.Context) (string, error)
}

type authService struct {
	sessions SessionManager
}

func NewAuthService(sessions SessionManager) AuthService {
	return &authService{sessions: sessions}
}

func (a *authService) Login(ctx context.Context, credential string) (session.RefreshResult, error) {
	res, err := a.sessions.RefreshToken(ctx, credential)
	if err != nil {
		return session.RefreshResult{}, fmt.Errorf("login error: %w", err)
	}
	return res, nil
}

func (a *authService) Status(ctx context.Context) (Status, error) {
	sess, err := a.sessions.Current(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{Active: a.sessions.IsActiveToken(ctx), Session: sess}, nil
}

func (a *authService) Logout(ctx context.Context) (string, error) {
	code, err := a.sessions.Logout(ctx)
	if err != nil {
		return code, fmt.Errorf("logout error: %w", err)
	}
	return code, nil
}

var _ SessionManager = (*session.Manager)(nil)
