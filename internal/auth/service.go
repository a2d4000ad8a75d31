package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	userdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/user"
)

type Repository interface {
	GetPasswordForEmail(email string) (passwordHash string, userID int64, err error)
	GetUserWithPermissions(userID int64) (*internal.CurrentUser, error)
	EmailExists(email string) (bool, error)
	CreateUser(u *userdm.User) error
}

type Service struct {
	repo           Repository
	tokenGenerator TokenGeneratorAPI
	bcryptCost     int
}

func NewService(repo Repository, tokenGen TokenGeneratorAPI, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
	}
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL == 0 {
		refreshTTL = 24 * 7 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

func (s *Service) Register(dto RegisterDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	exists, err := s.repo.EmailExists(dto.Email)
	if err != nil {
		return AuthTokens{}, err
	}
	if exists {
		return AuthTokens{}, internal.ErrEmailTaken
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return AuthTokens{}, err
	}

	locale := dto.Locale
	if locale == "" {
		locale = "ar"
	}

	u := &userdm.User{
		Email:            dto.Email,
		Name:             dto.Name,
		PasswordHash:     hash,
		Role:             userdm.RoleStudent,
		Locale:           locale,
		SubscriptionTier: userdm.TierFree,
		IsActive:         true,
	}
	if dto.Phone != "" {
		u.Phone = &dto.Phone
	}

	if err := s.repo.CreateUser(u); err != nil {
		return AuthTokens{}, err
	}

	return s.issueTokens(u.ID, u.Email, u.Role)
}

func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	storedHash, userID, err := s.repo.GetPasswordForEmail(dto.Email)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	user, err := s.repo.GetUserWithPermissions(userID)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	return s.issueTokens(user.ID, user.Email, user.Role)
}

func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}

	// Re-read the user so a deactivated account cannot refresh its way back in.
	user, err := s.repo.GetUserWithPermissions(userID)
	if err != nil {
		return AuthTokens{}, internal.ErrUserInactive
	}

	return s.issueTokens(user.ID, user.Email, user.Role)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

func (s *Service) GetUserWithPermissions(userID int64) (*internal.CurrentUser, error) {
	return s.repo.GetUserWithPermissions(userID)
}

func (s *Service) issueTokens(userID int64, email, role string) (AuthTokens, error) {
	uid := strconv.FormatInt(userID, 10)

	accessToken, err := s.tokenGenerator.GenerateAccessToken(uid, email, role)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(uid, email, role)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID, email, role string) (string, error) {
	return j.signToken(userID, email, role, j.AccessTokenSecret, j.AccessTokenTTL)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(userID, email, role string) (string, error) {
	return j.signToken(userID, email, role, j.RefreshTokenSecret, j.RefreshTokenTTL)
}

func (j *JWTTokenGenerator) signToken(userID, email, role string, secret []byte, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	return j.parseToken(tokenString, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.parseToken(tokenString, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) parseToken(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}
