// Package services contains the server-side business logic. This file
// implements CredentialService, which drives the credential lifecycle:
// register, authenticate, change, delete.
package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/erisahalipaj/userauth/internal/common"
	"github.com/erisahalipaj/userauth/internal/dbx"
	"github.com/erisahalipaj/userauth/internal/logging"
	"github.com/erisahalipaj/userauth/internal/server/auth"
	"github.com/erisahalipaj/userauth/internal/server/models"
	"github.com/erisahalipaj/userauth/internal/server/repositories/repomanager"
	"github.com/erisahalipaj/userauth/internal/server/repositories/users"
)

// RegisterRequest carries the inputs of the register operation.
type RegisterRequest struct {
	Username        string
	Password        string
	PasswordConfirm string
}

// ChangeRequest carries the inputs of the change operation. At least one of
// NewUsername / NewPassword must be set.
type ChangeRequest struct {
	UserID             string
	NewUsername        string
	NewPassword        string
	NewPasswordConfirm string
}

// AuthResult is the success payload of register and authenticate. Token is
// empty when token issuance is disabled.
type AuthResult struct {
	UserID string
	Token  string
}

// CredentialService orchestrates the password hasher, the user store, and
// the token issuer into the four lifecycle operations. It holds no mutable
// state between requests; the *sql.DB pool is the only shared resource.
type CredentialService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	hasher auth.PasswordHasher
	issuer *auth.TokenIssuer
	logger logging.Logger

	// dummyHash is verified against when a username does not exist, so a
	// failed lookup costs the same as a failed password check.
	dummyHash string
}

// NewCredentialService wires the service. A nil issuer disables token
// issuance; AuthResult.Token stays empty in that case.
func NewCredentialService(db *sql.DB, repos repomanager.RepositoryManager, hasher auth.PasswordHasher, issuer *auth.TokenIssuer, logger logging.Logger) (*CredentialService, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	return &CredentialService{
		db:        db,
		repos:     repos,
		hasher:    hasher,
		issuer:    issuer,
		logger:    logger.With("module", "credentials"),
		dummyHash: dummy,
	}, nil
}

// Register creates a new user. Validation order is part of the contract:
// missing fields, then password confirmation, then the store's uniqueness
// constraint.
func (s *CredentialService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if req.Username == "" || req.Password == "" || req.PasswordConfirm == "" {
		return nil, common.ErrMissingField
	}
	if req.Password != req.PasswordConfirm {
		return nil, common.ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error(ctx, "hashing password", "error", err.Error())
		return nil, common.ErrInternal
	}

	user := &models.User{Username: req.Username, PasswordHash: hash}
	created, err := s.repos.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return nil, common.ErrUsernameTaken
		}
		s.logger.Error(ctx, "creating user", "error", err.Error())
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "user registered", "user_id", created.ID)
	return s.authResult(ctx, created)
}

// Authenticate verifies a (username, password) pair. Unknown usernames and
// wrong passwords are indistinguishable to the caller: both cost one hash
// verification and both yield ErrInvalidCredentials.
func (s *CredentialService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, common.ErrMissingField
	}

	user, err := s.repos.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "looking up user", "error", err.Error())
		return nil, common.ErrInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	return s.authResult(ctx, user)
}

// Change updates the username and/or password of an existing user inside a
// single transaction. The caller is expected to have proven ownership of
// req.UserID already (the transport checks the identity assertion).
func (s *CredentialService) Change(ctx context.Context, req ChangeRequest) error {
	if req.UserID == "" || (req.NewUsername == "" && req.NewPassword == "") {
		return common.ErrMissingField
	}

	fields := users.UpdateFields{}
	if req.NewUsername != "" {
		fields.Username = &req.NewUsername
	}
	if req.NewPassword != "" {
		if req.NewPassword != req.NewPasswordConfirm {
			return common.ErrPasswordMismatch
		}
		hash, err := s.hasher.Hash(req.NewPassword)
		if err != nil {
			s.logger.Error(ctx, "hashing password", "error", err.Error())
			return common.ErrInternal
		}
		fields.PasswordHash = &hash
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Users(tx)
		if _, err := repo.GetByID(ctx, req.UserID); err != nil {
			return err
		}
		return repo.Update(ctx, req.UserID, fields)
	})

	switch {
	case err == nil:
		s.logger.Info(ctx, "credentials updated", "user_id", req.UserID)
		return nil
	case errors.Is(err, common.ErrNotFound):
		return common.ErrNotFound
	case errors.Is(err, common.ErrDuplicateUsername):
		return common.ErrUsernameTaken
	default:
		s.logger.Error(ctx, "updating credentials", "error", err.Error())
		return common.ErrInternal
	}
}

// Delete removes a user permanently. Deleting an id with no row yields
// ErrNotFound rather than silent success, matching the update semantics.
func (s *CredentialService) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return common.ErrMissingField
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Users(tx)
		if _, err := repo.GetByID(ctx, userID); err != nil {
			return err
		}
		return repo.Delete(ctx, userID)
	})

	switch {
	case err == nil:
		s.logger.Info(ctx, "user deleted", "user_id", userID)
		return nil
	case errors.Is(err, common.ErrNotFound):
		return common.ErrNotFound
	default:
		s.logger.Error(ctx, "deleting user", "error", err.Error())
		return common.ErrInternal
	}
}

func (s *CredentialService) authResult(ctx context.Context, user *models.User) (*AuthResult, error) {
	res := &AuthResult{UserID: user.ID}

	if s.issuer != nil {
		token, err := s.issuer.Issue(user.ID, user.Username)
		if err != nil {
			s.logger.Error(ctx, "issuing token", "error", err.Error())
			return nil, common.ErrInternal
		}
		res.Token = token
	}

	return res, nil
}
