// Package auth implements signup, login, and session-token
// verification on top of the credential store. Sessions are carried in
// signed JWTs; the server keeps no session table, so logout is a
// client-side token drop.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"medichain/internal/logging"
	"medichain/internal/types"
)

// Claims is the JWT payload for a session token.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service provides authentication against a UserStore.
type Service struct {
	users    types.UserStore
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// NewService creates an auth service. tokenTTL bounds session lifetime.
func NewService(users types.UserStore, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Signup creates a new account. Accounts are immutable after creation.
// A taken email returns ErrDuplicateUser and leaves the store
// unchanged.
func (s *Service) Signup(ctx context.Context, name, email, password string, role types.Role) (types.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return types.User{}, &types.ValidationError{Field: "name", Message: "name is required"}
	}
	if email == "" || !strings.Contains(email, "@") {
		return types.User{}, &types.ValidationError{Field: "email", Message: "a valid email is required"}
	}
	if password == "" {
		return types.User{}, &types.ValidationError{Field: "password", Message: "password is required"}
	}
	if _, err := types.ParseRole(string(role)); err != nil {
		return types.User{}, &types.ValidationError{Field: "role", Message: err.Error()}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, types.User{Name: name, Email: email, Role: role}, string(hash))
	if err != nil {
		if errors.Is(err, types.ErrDuplicateUser) {
			logging.Auth("signup rejected: email taken")
			return types.User{}, types.ErrDuplicateUser
		}
		return types.User{}, err
	}
	logging.Auth("signup: id=%s role=%s", user.ID, user.Role)
	return user, nil
}

// Login checks credentials and mints a session token. Wrong email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (types.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, hash, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return types.Session{}, types.ErrInvalidCredentials
		}
		return types.Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		logging.Auth("login failed for user id=%s", user.ID)
		return types.Session{}, types.ErrInvalidCredentials
	}

	issuedAt := s.now()
	claims := &Claims{
		Name: user.Name,
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return types.Session{}, fmt.Errorf("failed to sign token: %w", err)
	}

	logging.Auth("login: id=%s role=%s", user.ID, user.Role)
	return types.Session{User: user, Token: token, IssuedAt: issuedAt}, nil
}

// Verify parses a session token and resolves it to a live Session.
func (s *Service) Verify(ctx context.Context, tokenString string) (types.Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return types.Session{}, types.ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return types.Session{}, types.ErrInvalidCredentials
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	return types.Session{User: user, Token: tokenString, IssuedAt: issuedAt}, nil
}
