package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"furnistore/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type UserUseCase interface {
	RegisterUser(ctx context.Context, name, email, password string) (*domain.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*AuthResponse, error)
}

type userUseCase struct {
	userRepo  domain.UserRepository
	jwtSecret []byte
	log       *logrus.Logger
}

func NewUserUseCase(repo domain.UserRepository, jwtSecret string, logger *logrus.Logger) UserUseCase {
	return &userUseCase{
		userRepo:  repo,
		jwtSecret: []byte(jwtSecret),
		log:       logger,
	}
}

func (uc *userUseCase) RegisterUser(ctx context.Context, name, email, password string) (*domain.User, error) {
	uc.log.Infof("Use Case: Attempting registration for email: %s", email)

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		uc.log.Warn("Use Case: Registration failed - empty name")
		return nil, fmt.Errorf("%w: user name cannot be empty", domain.ErrInvalidInput)
	}
	if !isValidEmail(email) {
		uc.log.Warnf("Use Case: Registration failed - invalid email format: %s", email)
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if err := validatePassword(password); err != nil {
		uc.log.Warnf("Use Case: Registration failed - password validation error: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %s: %v", email, err)
		return nil, fmt.Errorf("internal error processing password: %w", err)
	}

	newUser := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleCustomer,
	}

	createdUser, err := uc.userRepo.CreateUser(ctx, newUser)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create user %s: %v", email, err)
		return nil, err
	}

	uc.log.Infof("Use Case: User registered. ID: %d, Email: %s", createdUser.ID, createdUser.Email)
	return createdUser, nil
}

func (uc *userUseCase) AuthenticateUser(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	uc.log.Infof("Use Case: Attempting authentication for email: %s", email)

	if !isValidEmail(email) || password == "" {
		uc.log.Warnf("Use Case: Auth failed - invalid email or empty password for %s", email)
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	user, err := uc.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		uc.log.Warnf("Use Case: Auth failed - user lookup error for %s: %v", email, err)
		return nil, fmt.Errorf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.log.Warnf("Use Case: Auth failed - password mismatch for %s", email)
		return nil, fmt.Errorf("invalid email or password")
	}

	token, err := uc.signToken(user)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to sign token for %s: %v", email, err)
		return nil, fmt.Errorf("internal error issuing token: %w", err)
	}

	uc.log.Infof("Use Case: User %d authenticated", user.ID)
	return &AuthResponse{Token: token, User: user}, nil
}

func (uc *userUseCase) signToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"userId": user.ID,
		"role":   user.Role,
		"exp":    time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(uc.jwtSecret)
}

func isValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domainPart := email[at+1:]
	return strings.Contains(domainPart, ".") && !strings.ContainsAny(email, " \t")
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain both letters and digits")
	}
	return nil
}
