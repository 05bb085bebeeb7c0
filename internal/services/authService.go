package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/arzan03/campus-connect/internal/apperr"
	"github.com/arzan03/campus-connect/internal/models"
	"github.com/arzan03/campus-connect/internal/notify"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword compares a plain password with a hashed password
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// generateOTPCode returns a random 6-digit numeric code.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// AuthService handles credentials, tokens and two-phase registration.
type AuthService struct {
	users     models.UserStore
	otps      models.OTPStore
	mail      *notify.Dispatcher
	jwtSecret string
}

func NewAuthService(users models.UserStore, otps models.OTPStore, mail *notify.Dispatcher, jwtSecret string) *AuthService {
	return &AuthService{users: users, otps: otps, mail: mail, jwtSecret: jwtSecret}
}

// GenerateJWT generates a JWT token with user ID and role. Tokens expire in
// 4 hours.
func (s *AuthService) GenerateJWT(userID string, role models.Role) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour * 4).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// RegistrationInput is the payload for both registration paths.
type RegistrationInput struct {
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Password   string            `json:"password"`
	Role       string            `json:"role"`
	Department string            `json:"department"`
	Categories []models.Category `json:"categories"`
}

// validate normalizes and checks the registration payload, returning the
// resolved role.
func (in *RegistrationInput) validate() (models.Role, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Name == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return "", apperr.Validation("Name, email, password and role are required")
	}
	role, ok := models.NormalizeRole(in.Role)
	if !ok {
		return "", apperr.Validation("Invalid role")
	}
	switch role {
	case models.RoleUser:
		if strings.TrimSpace(in.Department) == "" {
			return "", apperr.Validation("Department is required")
		}
	case models.RoleAuthority:
		if len(in.Categories) == 0 {
			return "", apperr.Validation("At least one category is required")
		}
		for _, c := range in.Categories {
			if !c.Valid() {
				return "", apperr.Validation("Invalid category: " + string(c))
			}
		}
	}
	return role, nil
}

// SendOTP stages a registration and issues a fresh 6-digit code for the
// email, replacing any earlier one. The returned code is exposed to clients
// only in non-production builds as a debug preview.
func (s *AuthService) SendOTP(ctx context.Context, in RegistrationInput) (string, error) {
	role, err := in.validate()
	if err != nil {
		return "", err
	}

	_, err = s.users.GetByEmail(ctx, in.Email)
	if err == nil {
		return "", apperr.Conflict("Email already registered")
	}
	if !errors.Is(err, models.ErrNotFound) {
		return "", err
	}

	// Hash up front so the staged payload never holds the plaintext.
	hash, err := HashPassword(in.Password)
	if err != nil {
		return "", err
	}
	code, err := generateOTPCode()
	if err != nil {
		return "", err
	}

	otp := models.OTP{
		Email: in.Email,
		Code:  code,
		UserData: models.PendingUser{
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: hash,
			Role:         role,
			Department:   in.Department,
			Categories:   in.Categories,
		},
		CreatedAt: time.Now(),
	}
	if err := s.otps.Put(ctx, otp); err != nil {
		return "", err
	}

	s.mail.SendOTP(in.Email, code)
	return code, nil
}

// VerifyOTP consumes the staged registration and creates the user. Wrong
// code, expired and absent records all fail the same way.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (string, models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || code == "" {
		return "", models.User{}, apperr.Validation("Email and OTP are required")
	}

	otp, err := s.otps.Consume(ctx, email, code)
	if errors.Is(err, models.ErrNotFound) {
		return "", models.User{}, apperr.Validation("Invalid or expired OTP")
	}
	if err != nil {
		return "", models.User{}, err
	}

	user, err := s.createUser(ctx, otp.UserData)
	if err != nil {
		return "", models.User{}, err
	}

	// Welcome mail is best-effort; delivery failure never rolls back the
	// registration.
	s.mail.SendWelcome(user.Email, user.Name)

	token, err := s.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		return "", models.User{}, err
	}
	return token, sanitize(user), nil
}

// Register is the legacy single-step path kept for old clients: no email
// verification, user created directly.
func (s *AuthService) Register(ctx context.Context, in RegistrationInput) (string, models.User, error) {
	role, err := in.validate()
	if err != nil {
		return "", models.User{}, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return "", models.User{}, err
	}

	user, err := s.createUser(ctx, models.PendingUser{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		Department:   in.Department,
		Categories:   in.Categories,
	})
	if err != nil {
		return "", models.User{}, err
	}

	token, err := s.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		return "", models.User{}, err
	}
	return token, sanitize(user), nil
}

func (s *AuthService) createUser(ctx context.Context, pending models.PendingUser) (models.User, error) {
	categories := pending.Categories
	if pending.Role != models.RoleAuthority {
		// Categories are meaningful only for authorities.
		categories = nil
	}
	user, err := s.users.Create(ctx, models.User{
		Name:       pending.Name,
		Email:      pending.Email,
		Password:   pending.PasswordHash,
		Role:       pending.Role,
		Department: pending.Department,
		Categories: categories,
		CreatedAt:  time.Now(),
	})
	if errors.Is(err, models.ErrDuplicate) {
		return models.User{}, apperr.Conflict("Email already registered")
	}
	return user, err
}

// Login authenticates a user. Unknown email and wrong password fail with the
// same message.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return "", models.User{}, apperr.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return "", models.User{}, err
	}
	if !VerifyPassword(password, user.Password) {
		return "", models.User{}, apperr.Unauthorized("Invalid email or password")
	}

	token, err := s.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		return "", models.User{}, err
	}
	return token, sanitize(user), nil
}

// ProfileUpdate carries the fields a user may change on their own profile.
type ProfileUpdate struct {
	Name       string            `json:"name"`
	Department string            `json:"department"`
	Categories []models.Category `json:"categories"`
}

// UpdateProfile applies a profile update for the authenticated user.
// Categories are accepted only for authorities.
func (s *AuthService) UpdateProfile(ctx context.Context, user models.User, in ProfileUpdate) (models.User, error) {
	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if dept := strings.TrimSpace(in.Department); dept != "" {
		user.Department = dept
	}
	if in.Categories != nil {
		if user.Role != models.RoleAuthority {
			return models.User{}, apperr.Forbidden("Only authorities have categories")
		}
		for _, c := range in.Categories {
			if !c.Valid() {
				return models.User{}, apperr.Validation("Invalid category: " + string(c))
			}
		}
		user.Categories = in.Categories
	}

	updated, err := s.users.Update(ctx, user)
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, apperr.Unauthorized("User no longer exists")
	}
	if err != nil {
		return models.User{}, err
	}
	return sanitize(updated), nil
}

// sanitize strips credential fields before a user leaves the service.
func sanitize(user models.User) models.User {
	user.Password = ""
	return user
}
