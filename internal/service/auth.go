// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the business operations behind the admin pages:
// credential verification and the audited vegetable reclassification.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/p19091985/nexlify-go/internal/auth"
	"github.com/p19091985/nexlify-go/internal/model"
	"github.com/p19091985/nexlify-go/internal/repository"
)

var (
	// ErrInvalidCredentials is returned for an unknown login or a wrong
	// password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStoreUnavailable is returned when the credential store cannot be
	// reached. It must surface differently from a bad password so users are
	// not told their credentials were wrong during an outage.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// Auth verifies user credentials against the database.
type Auth struct {
	repo   *repository.Repository
	logger *slog.Logger
}

// NewAuth creates an Auth service.
func NewAuth(repo *repository.Repository, logger *slog.Logger) *Auth {
	return &Auth{repo: repo, logger: logger}
}

// VerifyCredentials checks a login/password pair. On success it returns the
// authenticated identity and records the login time. A failure is either
// ErrInvalidCredentials or ErrStoreUnavailable; no identity is ever returned
// alongside an error.
func (a *Auth) VerifyCredentials(ctx context.Context, login, password string) (model.Identity, error) {
	user, err := a.repo.ReadOne(ctx, "users", repository.Eq("login", login))
	if errors.Is(err, repository.ErrNotFound) {
		return model.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		a.logger.Error("credential store lookup failed", "error", err)
		return model.Identity{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	hash := user.String("password_hash")
	ok, err := auth.CheckPassword(password, hash)
	if err != nil {
		a.logger.Error("stored password hash is malformed", "login", login, "error", err)
		return model.Identity{}, ErrInvalidCredentials
	}
	if !ok {
		return model.Identity{}, ErrInvalidCredentials
	}

	role, err := model.ParseRole(user.String("role"))
	if err != nil {
		a.logger.Error("user has unknown role", "login", login, "error", err)
		return model.Identity{}, ErrInvalidCredentials
	}

	if auth.NeedsRehash(hash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if _, err := a.repo.Update(ctx, "users",
				repository.Row{"password_hash": newHash},
				repository.Eq("login", login)); err != nil {
				a.logger.Warn("password rehash failed", "login", login, "error", err)
			}
		}
	}

	if _, err := a.repo.Update(ctx, "users",
		repository.Row{"last_login_at": time.Now().UTC()},
		repository.Eq("login", login)); err != nil {
		a.logger.Warn("recording login time failed", "login", login, "error", err)
	}

	return model.Identity{
		Username:    login,
		DisplayName: user.String("display_name"),
		Role:        role,
	}, nil
}
