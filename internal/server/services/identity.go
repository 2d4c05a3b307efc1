// Package services contains the server-side business logic. This file holds
// IdentityService, the built-in identity provider: credential signup,
// password login, refresh-token rotation, logout, and access-token
// verification.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/auth"
	"github.com/dmitrijs2005/taskboard/internal/server/config"
	"github.com/dmitrijs2005/taskboard/internal/server/identity"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLen = 72
)

var (
	hashPassword = func(password []byte) ([]byte, error) {
		return bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	}
	comparePassword = bcrypt.CompareHashAndPassword
)

// SignupInput is the payload of a new account.
type SignupInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	jwtSecret   []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration

	dummyOnce sync.Once
	dummyHash []byte
}

var _ identity.Provider = (*IdentityService)(nil)

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *IdentityService {
	return &IdentityService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "identity"),
		jwtSecret:   []byte(cfg.SecretKey),
		accessTTL:   cfg.AccessTokenTTL,
		refreshTTL:  cfg.RefreshTokenTTL,
	}
}

// Signup creates a credential. Input problems yield an error wrapping
// common.ErrorValidation; a taken email yields common.ErrorAlreadyExists.
func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (*models.Credential, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if n := len(in.Password); n < minPasswordLen || n > maxPasswordLen {
		return nil, fmt.Errorf("%w: password must be %d to %d bytes", common.ErrorValidation, minPasswordLen, maxPasswordLen)
	}

	pw := []byte(in.Password)
	defer common.WipeByteArray(pw)

	hash, err := hashPassword(pw)
	if err != nil {
		return nil, common.ErrorInternal
	}

	c, err := s.repomanager.Credentials(s.db).Create(ctx, &models.Credential{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating credential: %w", err)
	}

	s.logger.Info(ctx, "credential created", "credential_id", c.ID)
	return c, nil
}

// Login checks email and password and issues a token pair. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	c, err := s.repomanager.Credentials(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// keep the timing of a real comparison
			_ = comparePassword(s.dummyPasswordHash(), []byte(password))
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "credential lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if err := comparePassword(c.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}

	return s.generateTokenPair(ctx, c, s.db)
}

// Refresh rotates refreshToken: the old token is deleted and a new pair is
// issued in one transaction. A token is redeemable once; a caller that loses
// the race for the delete gets common.ErrorUnauthorized.
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	c, err := s.repomanager.Credentials(s.db).GetByID(ctx, token.CredentialID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading credential: %w", err)
	}

	var pair *models.TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		deleted, err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken)
		if err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		if !deleted {
			return common.ErrorUnauthorized
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, c, tx)
		return genErr
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes refreshToken. Revoking an unknown token succeeds.
func (s *IdentityService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if _, err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// Verify implements identity.Provider for tokens issued by Login/Refresh.
func (s *IdentityService) Verify(_ context.Context, token string) (identity.Identity, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return identity.Identity{}, err
	}
	return identity.Identity{
		ExternalID: claims.Subject,
		Email:      claims.Email,
		FirstName:  claims.FirstName,
		LastName:   claims.LastName,
	}, nil
}

// PurgeExpiredTokens removes refresh tokens past their expiry.
func (s *IdentityService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, time.Now())
}

func (s *IdentityService) generateTokenPair(ctx context.Context, c *models.Credential, tx dbx.DBTX) (*models.TokenPair, error) {
	access, err := auth.GenerateToken(auth.Subject{
		ID:        c.ID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}, s.jwtSecret, s.accessTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repomanager.RefreshTokens(tx).Create(ctx, c.ID, refresh, s.refreshTTL); err != nil {
		s.logger.Error(ctx, "storing refresh token failed", "error", err)
		return nil, common.ErrorInternal
	}

	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL / time.Second),
	}, nil
}

func (s *IdentityService) dummyPasswordHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = hashPassword(common.GenerateRandByteArray(16))
	})
	return s.dummyHash
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: malformed email", common.ErrorValidation)
	}
	return email, nil
}
