package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"shoplite/internal/config"
	"shoplite/internal/models"
	"shoplite/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and token validation.
type AuthService struct {
	tx               repositories.TxManager
	userRepo         repositories.UserRepository
	jwtSecret        []byte
	tokenTTL         time.Duration
	allowAdminSignup bool
}

// maxPasswordBytes is the longest password bcrypt accepts.
const maxPasswordBytes = 72

// NewAuthService creates a new AuthService. Sign-ups run inside tx.
func NewAuthService(tx repositories.TxManager, userRepo repositories.UserRepository, cfg config.AuthConfig) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		tx:               tx,
		userRepo:         userRepo,
		jwtSecret:        []byte(cfg.JWTSecret),
		tokenTTL:         ttl,
		allowAdminSignup: cfg.AllowAdminSignup,
	}
}

// RegisterInput carries the fields of a sign-up request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string // "USER" when empty
}

// AuthResult is returned by Login and Register.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Principal is the identity carried by a valid token.
type Principal struct {
	UserID uint
	Email  string
	Roles  []string
}

// HasRole reports whether the principal holds role.
func (p *Principal) HasRole(role models.RoleName) bool {
	for _, r := range p.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}

// IsAdmin is shorthand for HasRole(models.RoleAdmin).
func (p *Principal) IsAdmin() bool {
	return p.HasRole(models.RoleAdmin)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a hashed password and a single role.
// The role and the user are written in one transaction, so nothing is
// written when the email is already registered.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)

	roleInput := in.Role
	if strings.TrimSpace(roleInput) == "" {
		roleInput = "USER"
	}
	roleName, err := models.ParseRoleName(roleInput)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, in.Role)
	}
	if roleName == models.RoleAdmin && !s.allowAdminSignup {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotAllowed, roleName)
	}

	hashedPassword, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     email,
		Password:  hashedPassword,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	err = s.tx.WithinTransaction(ctx, func(r repositories.Repositories) error {
		exists, err := r.Users.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to register user: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrEmailTaken, email)
		}

		role, err := r.Users.EnsureRole(ctx, roleName)
		if err != nil {
			return fmt.Errorf("failed to register user: %w", err)
		}
		user.Roles = []models.Role{*role}

		if err := r.Users.Create(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return fmt.Errorf("%w: %s", ErrEmailTaken, email)
			}
			return fmt.Errorf("failed to register user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func hashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", fmt.Errorf("%w: at most %d bytes", ErrPasswordTooLong, maxPasswordBytes)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %v", ErrPasswordTooLong, err)
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// IssueToken signs an HS256 token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"roles":   user.RoleNames(),
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a token and returns its principal.
func (s *AuthService) ValidateToken(tokenString string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	id, ok := claims["user_id"].(float64)
	if !ok || id <= 0 {
		return nil, fmt.Errorf("%w: missing user_id", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)

	principal := &Principal{UserID: uint(id), Email: email}
	if raw, ok := claims["roles"].([]interface{}); ok {
		for _, r := range raw {
			if name, ok := r.(string); ok {
				principal.Roles = append(principal.Roles, name)
			}
		}
	}
	return principal, nil
}

// GetUser returns the user with id and its roles.
func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrUserNotFound, id)
		}
		return nil, err
	}
	return user, nil
}

// EnsureRoles creates the role rows that do not exist yet.
func (s *AuthService) EnsureRoles(ctx context.Context) error {
	for _, name := range []models.RoleName{models.RoleUser, models.RoleAdmin} {
		if _, err := s.userRepo.EnsureRole(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// EnsureAdmin creates the administrator account unless the email is taken.
// It reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}
	hashedPassword, err := hashPassword(password)
	if err != nil {
		return false, err
	}

	created := false
	err = s.tx.WithinTransaction(ctx, func(r repositories.Repositories) error {
		exists, err := r.Users.ExistsByEmail(ctx, email)
		if err != nil || exists {
			return err
		}

		role, err := r.Users.EnsureRole(ctx, models.RoleAdmin)
		if err != nil {
			return err
		}
		admin := &models.User{
			Email:     email,
			Password:  hashedPassword,
			FirstName: "Admin",
			LastName:  "User",
			Roles:     []models.Role{*role},
		}
		if err := r.Users.Create(ctx, admin); err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}
