package auth

import (
	"context"
	"errors"
	"time"

	"github.com/seekkrr/creator-portal/internal/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type Service struct {
	secret []byte
	db     db.Querier
}

type Claims struct {
	CreatorID string `json:"creator_id"`
	jwt.RegisteredClaims
}

func NewService(secret string, db db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		db:     db,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (Creator, TokenResponse, error) {
	if req.Email == "" || req.DisplayName == "" || req.Password == "" {
		return Creator{}, TokenResponse{}, errors.New("email, display_name, password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Creator{}, TokenResponse{}, err
	}

	creator := Creator{
		ID:           uuid.NewString(),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO creators (id, email, display_name, password_hash)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at
	`, creator.ID, creator.Email, creator.DisplayName, creator.PasswordHash)
	if err := row.Scan(&creator.CreatedAt, &creator.UpdatedAt); err != nil {
		return Creator{}, TokenResponse{}, err
	}

	tokens, err := s.GenerateTokens(ctx, creator.ID)
	if err != nil {
		return Creator{}, TokenResponse{}, err
	}
	return creator, tokens, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (Creator, TokenResponse, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, is_verified, created_at, updated_at
		FROM creators WHERE email = $1
	`, req.Email)

	var creator Creator
	if err := row.Scan(&creator.ID, &creator.Email, &creator.DisplayName, &creator.PasswordHash,
		&creator.IsVerified, &creator.CreatedAt, &creator.UpdatedAt); err != nil {
		return Creator{}, TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creator.PasswordHash), []byte(req.Password)); err != nil {
		return Creator{}, TokenResponse{}, errors.New("invalid credentials")
	}

	tokens, err := s.GenerateTokens(ctx, creator.ID)
	if err != nil {
		return Creator{}, TokenResponse{}, err
	}
	return creator, tokens, nil
}

func (s *Service) GenerateTokens(ctx context.Context, creatorID string) (TokenResponse, error) {
	access, err := s.signToken(creatorID, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	refresh, err := s.signToken(creatorID, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	if err := s.saveRefreshToken(ctx, refresh, creatorID, refreshTokenTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}

	creatorID, expiresAt, err := s.lookupRefreshToken(ctx, token)
	if err != nil || creatorID != claims.CreatorID || time.Now().After(expiresAt) {
		return "", errors.New("refresh token invalid")
	}
	return claims.CreatorID, nil
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	return claims.CreatorID, nil
}

func (s *Service) signToken(creatorID string, ttl time.Duration) (string, error) {
	claims := Claims{
		CreatorID: creatorID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

func (s *Service) saveRefreshToken(ctx context.Context, token, creatorID string, ttl time.Duration) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, creator_id, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), creatorID, token, time.Now().Add(ttl))
	return err
}

func (s *Service) lookupRefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	row := s.db.QueryRow(ctx, `
		SELECT creator_id, expires_at
		FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	var creatorID string
	var expiresAt time.Time
	if err := row.Scan(&creatorID, &expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return creatorID, expiresAt, nil
}
