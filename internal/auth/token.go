package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// clockSkew is the leeway applied to exp/nbf checks
const clockSkew = time.Second

var errUnsupportedAlgorithm = errors.New("only HS256 is accepted")

// SubjectLookup reloads a token subject on refresh
type SubjectLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// TokenManager issues, verifies and rotates HS256 access/refresh token pairs.
// It holds no per-token state; rotating the signing key invalidates every issued token.
type TokenManager struct {
	signingKey      []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
	subjects        SubjectLookup
	logger          *slog.Logger
	now             func() time.Time
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(signingKey []byte, accessValidity, refreshValidity time.Duration, subjects SubjectLookup, logger *slog.Logger) *TokenManager {
	return &TokenManager{
		signingKey:      signingKey,
		accessValidity:  accessValidity,
		refreshValidity: refreshValidity,
		subjects:        subjects,
		logger:          logger,
		now:             time.Now,
	}
}

// SetClock overrides the clock used for issuing and verifying tokens
func (tm *TokenManager) SetClock(now func() time.Time) {
	tm.now = now
}

// Issue mints a new access/refresh pair for subject
func (tm *TokenManager) Issue(subject string, authorities []string, fingerprint string) (*models.TokenPair, error) {
	// NumericDate has second precision, so the reported expiry is truncated to match the claim
	now := tm.now().Truncate(time.Second)
	accessExpiresAt := now.Add(tm.accessValidity)

	accessToken, err := tm.sign(&models.TokenClaims{
		Type:        models.TokenTypeAccess,
		Authorities: authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiresAt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := tm.sign(&models.TokenClaims{
		Type:              models.TokenTypeRefresh,
		DeviceFingerprint: fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.refreshValidity)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &models.TokenPair{
		AccessToken:          accessToken,
		RefreshToken:         refreshToken,
		AccessTokenExpiresAt: accessExpiresAt,
	}, nil
}

func (tm *TokenManager) sign(claims *models.TokenClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.signingKey)
}

// Validate reports whether token has a valid signature and has not expired. It never fails.
func (tm *TokenManager) Validate(token string) bool {
	_, err := tm.Parse(token)
	return err == nil
}

// Parse verifies a token and returns its claims. Failures are classified as
// ErrMalformedAccessToken, ErrUnsupportedTokenAlgorithm, ErrBadSignature or ErrExpiredAccessToken.
func (tm *TokenManager) Parse(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%w: got %v", errUnsupportedAlgorithm, token.Header["alg"])
			}
			return tm.signingKey, nil
		},
		jwt.WithTimeFunc(tm.now),
		jwt.WithLeeway(clockSkew),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	return claims, nil
}

// classifyTokenError maps jwt parser errors onto the token error taxonomy.
// The parser checks structure, then algorithm, then signature, then claims.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", models.ErrMalformedAccessToken, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", models.ErrUnsupportedTokenAlgorithm, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", models.ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", models.ErrExpiredAccessToken, err)
	default:
		return fmt.Errorf("%w: %v", models.ErrMalformedAccessToken, err)
	}
}

// Refresh verifies a refresh token and rotates it into a brand-new pair.
// The presented token is not revoked and stays valid until its own expiry.
// A device fingerprint mismatch is logged and accepted.
func (tm *TokenManager) Refresh(ctx context.Context, refreshToken string, device models.DeviceInfo) (*models.TokenPair, error) {
	claims, err := tm.Parse(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidRefreshToken, err)
	}
	if claims.Type != models.TokenTypeRefresh {
		return nil, fmt.Errorf("%w: token type %q", models.ErrInvalidRefreshToken, claims.Type)
	}

	if claims.DeviceFingerprint != device.Fingerprint {
		tm.logger.Warn("refresh token presented from a different device",
			slog.String("subject", claims.Subject),
			slog.String("source_address", device.SourceAddress),
			slog.String("os_label", device.OSLabel),
		)
	}

	user, err := tm.subjects.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: subject no longer exists", models.ErrInvalidRefreshToken)
		}
		return nil, fmt.Errorf("failed to load token subject: %w", err)
	}

	return tm.Issue(user.ID, user.Authorities, device.Fingerprint)
}

// GetIdentity resolves an access token into the caller's identity
func (tm *TokenManager) GetIdentity(accessToken string) (*models.Identity, error) {
	claims, err := tm.Parse(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != models.TokenTypeAccess {
		return nil, fmt.Errorf("%w: token type %q", models.ErrMalformedAccessToken, claims.Type)
	}

	return &models.Identity{
		Subject:     claims.Subject,
		Authorities: claims.Authorities,
	}, nil
}
