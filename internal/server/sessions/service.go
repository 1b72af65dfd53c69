// Package sessions contains the session manager: it orchestrates the
// credential store, password hasher and token issuer to implement
// register/login/refresh/logout and bearer-token authentication.
package sessions

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/seedvest/internal/common"
	"github.com/dmitrijs2005/seedvest/internal/logging"
	"github.com/dmitrijs2005/seedvest/internal/server/auth"
	"github.com/dmitrijs2005/seedvest/internal/server/models"
	"github.com/dmitrijs2005/seedvest/internal/server/repositories/accounts"
	"github.com/google/uuid"
)

// Session bundles the freshly minted token pair with the sanitized account
// view. The access token is returned in response bodies; the refresh token
// is delivered only via an http-only cookie.
type Session struct {
	AccessToken  string
	RefreshToken string
	Account      models.AccountView
}

// Principal identifies the account behind a verified access token.
type Principal struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Service implements the session lifecycle. Per account, at most one
// refresh-token hash is live at any time: register, login and refresh all
// replace it, and refresh replaces it with a single atomic compare-and-swap
// so that of two concurrent refreshes with the same token exactly one wins.
type Service struct {
	accounts accounts.Repository
	hasher   *auth.PasswordHasher
	issuer   *auth.TokenIssuer
	logger   logging.Logger
}

func NewService(repo accounts.Repository, hasher *auth.PasswordHasher, issuer *auth.TokenIssuer, logger logging.Logger) *Service {
	return &Service{
		accounts: repo,
		hasher:   hasher,
		issuer:   issuer,
		logger:   logger,
	}
}

// Register creates a new account and establishes its first session.
// Returns common.ErrEmailTaken when the email is already registered.
func (s *Service) Register(ctx context.Context, email, fullName, password string) (*Session, error) {
	_, err := s.accounts.GetByEmail(ctx, email)
	if err == nil {
		return nil, common.ErrEmailTaken
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("error searching account: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, common.ErrInternal
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
	}
	account, err = s.accounts.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID)

	return s.establishSession(ctx, account)
}

// Login verifies the credentials and establishes a new session. Unknown
// email and wrong password both yield common.ErrInvalidCredentials so the
// response does not reveal which emails are registered.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching account: %w", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	s.logger.Info(ctx, "account logged in", "account_id", account.ID)

	return s.establishSession(ctx, account)
}

// Refresh rotates a presented refresh token: it verifies the token, checks
// its hash against the account's currently stored hash and atomically
// replaces the hash with that of a freshly issued token. A token that has
// already been rotated out loses the race and yields common.ErrInvalidToken.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	account, err := s.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching account: %w", err)
	}
	if account.RefreshTokenHash == nil {
		// no active session
		return nil, common.ErrInvalidToken
	}

	presentedHash := auth.HashRefreshToken(refreshToken)
	if subtle.ConstantTimeCompare([]byte(presentedHash), []byte(*account.RefreshTokenHash)) != 1 {
		s.logger.Warn(ctx, "refresh token hash mismatch", "account_id", account.ID)
		return nil, common.ErrInvalidToken
	}

	pair, err := s.issueTokenPair(account)
	if err != nil {
		return nil, err
	}

	swapped, err := s.accounts.SwapRefreshTokenHash(ctx, account.ID, presentedHash, auth.HashRefreshToken(pair.RefreshToken))
	if err != nil {
		return nil, fmt.Errorf("error rotating refresh token: %w", err)
	}
	if !swapped {
		// a concurrent refresh with the same token won the swap
		return nil, common.ErrInvalidToken
	}

	return pair, nil
}

// Logout revokes the session behind the presented refresh token. The
// operation is best-effort and idempotent: an absent, invalid or already
// rotated token is not an error, and the caller always clears the cookie.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	claims, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil
	}

	presentedHash := auth.HashRefreshToken(refreshToken)
	if _, err := s.accounts.ClearRefreshTokenHash(ctx, claims.Subject, presentedHash); err != nil {
		return fmt.Errorf("error clearing refresh token: %w", err)
	}

	s.logger.Info(ctx, "account logged out", "account_id", claims.Subject)
	return nil
}

// Authenticate verifies a bearer access token and returns the principal it
// identifies. The check is stateless: access tokens stay valid until expiry
// even after the account's refresh token rotates.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	claims, err := s.issuer.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, common.ErrUnauthorized
	}
	return &Principal{UserID: claims.Subject, Email: claims.Email}, nil
}

// establishSession mints a token pair and unconditionally installs the new
// refresh-token hash, replacing any previous session.
func (s *Service) establishSession(ctx context.Context, account *models.Account) (*Session, error) {
	pair, err := s.issueTokenPair(account)
	if err != nil {
		return nil, err
	}

	hash := auth.HashRefreshToken(pair.RefreshToken)
	if err := s.accounts.SetRefreshTokenHash(ctx, account.ID, &hash); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return pair, nil
}

func (s *Service) issueTokenPair(account *models.Account) (*Session, error) {
	access, err := s.issuer.IssueAccessToken(account.ID, account.Email)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := s.issuer.IssueRefreshToken(account.ID, account.Email)
	if err != nil {
		return nil, common.ErrInternal
	}
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		Account:      account.View(),
	}, nil
}
