package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	domainerrors "nft-swapper.backend/internal/domain/errors"
	"nft-swapper.backend/pkg/crypto"
	"nft-swapper.backend/pkg/jwt"
	"nft-swapper.backend/pkg/logger"
	"nft-swapper.backend/pkg/redis"
)

// ChallengeStore keeps single-use login challenges per wallet.
type ChallengeStore interface {
	Put(ctx context.Context, address, message string) error
	Take(ctx context.Context, address string) (string, error)
}

var (
	generateNonce   = crypto.GenerateNonce
	verifySignature = crypto.VerifyPersonalSignature
)

// Challenge is the message a wallet must personal_sign to log in.
type Challenge struct {
	Address   string    `json:"address"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthUsecase handles wallet signature authentication
type AuthUsecase struct {
	challenges ChallengeStore
	jwtService *jwt.JWTService
	ttl        time.Duration
	now        Clock
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(challenges ChallengeStore, jwtService *jwt.JWTService, ttl time.Duration) *AuthUsecase {
	return &AuthUsecase{
		challenges: challenges,
		jwtService: jwtService,
		ttl:        ttl,
		now:        time.Now,
	}
}

// IssueChallenge stores a fresh nonce for address and returns the text to sign.
func (u *AuthUsecase) IssueChallenge(ctx context.Context, address common.Address) (*Challenge, error) {
	nonce, err := generateNonce()
	if err != nil {
		return nil, err
	}
	issued := u.now().UTC()
	message := fmt.Sprintf("Sign in to NFT Swapper\nAddress: %s\nNonce: %s\nIssued At: %s",
		address.Hex(), nonce, issued.Format(time.RFC3339))

	if err := u.challenges.Put(ctx, address.Hex(), message); err != nil {
		return nil, err
	}
	return &Challenge{
		Address:   address.Hex(),
		Message:   message,
		ExpiresAt: issued.Add(u.ttl),
	}, nil
}

// Login consumes the pending challenge and returns tokens when the
// signature recovers to address.
func (u *AuthUsecase) Login(ctx context.Context, address common.Address, signature string) (*jwt.TokenPair, error) {
	message, err := u.challenges.Take(ctx, address.Hex())
	if err != nil {
		if errors.Is(err, redis.ErrChallengeNotFound) {
			return nil, domainerrors.Unauthorized("no pending challenge for address")
		}
		return nil, err
	}

	if err := verifySignature(address, message, signature); err != nil {
		logger.Warn(ctx, "Wallet login rejected", zap.String("address", address.Hex()), zap.Error(err))
		return nil, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeUnauthorized, "signature does not match address", errors.Join(domainerrors.ErrInvalidSignature, err))
	}

	pair, err := u.jwtService.GenerateTokenPair(address.Hex())
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Wallet logged in", zap.String("address", address.Hex()))
	return pair, nil
}

// RefreshToken exchanges a valid refresh token for a new pair.
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeUnauthorized, "refresh token expired", domainerrors.ErrTokenExpired)
		}
		return nil, domainerrors.Unauthorized("invalid refresh token")
	}
	return u.jwtService.GenerateTokenPair(claims.Address)
}
