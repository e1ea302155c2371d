package service

import (
	"context"
	"errors"
	"time"

	"animehub/internal/api/models"
	"animehub/internal/api/repository"
	"animehub/internal/config"
	"animehub/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
)

// Claims are the JWT claims carried by an access token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, email, password, username string) (accessToken, refreshToken string, user *models.User, err error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *models.User, err error)
	LoginWithGoogle(ctx context.Context, rawIDToken string) (accessToken, refreshToken string, user *models.User, err error)
	RefreshAccessToken(refreshToken string) (newAccessToken string, err error)
	RevokeToken(refreshToken string) error
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	google           IdentityVerifier
	jwtSecret        string
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	google IdentityVerifier,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		google:           google,
		jwtSecret:        cfg.JWTSecret,
		accessTokenTTL:   cfg.AccessTokenTTL,
		refreshTokenTTL:  cfg.RefreshTokenTTL,
	}
}

// Register creates an account with fresh empty collections and logs it in.
func (s *authService) Register(ctx context.Context, email, password, username string) (string, string, *models.User, error) {
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return "", "", nil, ErrEmailInUse
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", "", nil, err
	}

	user := newAccount(email, username)
	user.Password = hashedPassword

	if err := s.userRepo.Create(ctx, user); err != nil {
		// a concurrent registration can slip past the lookup above and hit
		// the unique index instead
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", "", nil, ErrEmailInUse
		}
		return "", "", nil, err
	}

	return s.issueTokens(user)
}

// Login authenticates by email and password.
func (s *authService) Login(ctx context.Context, email, password string) (string, string, *models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		// User not found: dummy compare to keep the failure path constant-time
		auth.VerifyPassword("$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e", password)
		return "", "", nil, ErrInvalidCredentials
	}

	// Google-only accounts carry no password credential
	if user.Password == "" {
		return "", "", nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// LoginWithGoogle verifies a Google ID token and finds or creates the
// matching account. An existing email/password account is linked to the
// Google identity on first federated login.
func (s *authService) LoginWithGoogle(ctx context.Context, rawIDToken string) (string, string, *models.User, error) {
	if s.google == nil {
		return "", "", nil, ErrInvalidToken
	}

	identity, err := s.google.Verify(ctx, rawIDToken)
	if err != nil {
		return "", "", nil, ErrInvalidToken
	}

	if user, err := s.userRepo.FindByGoogleID(ctx, identity.Subject); err == nil {
		return s.issueTokens(user)
	}

	if user, err := s.userRepo.FindByEmail(ctx, identity.Email); err == nil {
		user.GoogleID = &identity.Subject
		if err := s.userRepo.Save(ctx, user); err != nil {
			return "", "", nil, err
		}
		return s.issueTokens(user)
	}

	user := newAccount(identity.Email, identity.Name)
	user.GoogleID = &identity.Subject
	if identity.Picture != "" {
		user.Avatar = identity.Picture
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", "", nil, err
	}

	return s.issueTokens(user)
}

// newAccount builds an account document with empty collections and the
// default privacy flags.
func newAccount(email, username string) *models.User {
	return &models.User{
		ID:             uuid.New().String(),
		Email:          email,
		Username:       username,
		Favorites:      models.FavoriteList{},
		FavoriteGenres: models.GenreList{},
		GenreAnimeList: models.GenreAnimeIndex{},
		WatchList:      models.WatchList{},
		Top10List:      models.Top10Lists{},
		Privacy:        models.DefaultPrivacy(),
	}
}

func (s *authService) issueTokens(user *models.User) (string, string, *models.User, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", nil, err
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return "", "", nil, err
	}

	return accessToken, refreshToken, user, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) generateRefreshToken(user *models.User) (string, error) {
	refreshToken := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     uuid.New().String(), // opaque token, validated server-side
		ExpiresAt: time.Now().Add(s.refreshTokenTTL),
	}

	if err := s.refreshTokenRepo.Create(refreshToken); err != nil {
		return "", err
	}

	return refreshToken.Token, nil
}

func (s *authService) RefreshAccessToken(refreshTokenString string) (string, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(refreshTokenString)
	if err != nil {
		return "", ErrInvalidToken
	}

	if refreshToken.Revoked {
		return "", ErrInvalidToken
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		s.refreshTokenRepo.Delete(refreshToken.ID)
		return "", ErrExpiredToken
	}

	user, err := s.userRepo.FindByID(context.Background(), refreshToken.UserID)
	if err != nil {
		return "", err
	}

	return s.generateAccessToken(user)
}

func (s *authService) RevokeToken(refreshTokenString string) error {
	refreshToken, err := s.refreshTokenRepo.FindByToken(refreshTokenString)
	if err != nil {
		return ErrInvalidToken
	}
	return s.refreshTokenRepo.Revoke(refreshToken.ID)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
