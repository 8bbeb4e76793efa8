// Package auth authenticates users and issues session tokens.
package auth

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidPassword    = errors.New("password may only contain letters, digits, '(', ')' and '-'")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrWeakPassword       = errors.New("password is too weak")
)

// Accepted characters of the login form fields.
var (
	emailChars    = regexp.MustCompile(`^[A-Za-z0-9@.()\-]+$`)
	passwordChars = regexp.MustCompile(`^[A-Za-z0-9()\-]+$`)
)

// bcrypt ignores input past 72 bytes.
const maxPasswordLen = 72

// UserStore holds accounts keyed by normalized email. It is safe for
// concurrent use.
type UserStore struct {
	mu       sync.RWMutex
	users    map[string][]byte
	minScore int
	cost     int
}

// NewUserStore returns an empty store. Registration requires a
// PasswordStrength score of at least minScore.
func NewUserStore(minScore int) *UserStore {
	return &UserStore{
		users:    make(map[string][]byte),
		minScore: minScore,
		cost:     bcrypt.DefaultCost,
	}
}

// Seed adds an account with an existing bcrypt hash.
func (s *UserStore) Seed(email, passwordHash string) error {
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return fmt.Errorf("user %s: %w", email, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[NormalizeEmail(email)] = []byte(passwordHash)
	return nil
}

// Register creates an account from the signup form.
func (s *UserStore) Register(email, password, confirm string) error {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	if score, _ := PasswordStrength(password); score < s.minScore {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; ok {
		return ErrUserExists
	}
	s.users[email] = hash
	return nil
}

// Authenticate checks a login attempt.
func (s *UserStore) Authenticate(email, password string) error {
	s.mu.RLock()
	hash, ok := s.users[NormalizeEmail(email)]
	s.mu.RUnlock()
	if !ok {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Len returns the number of accounts.
func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// HashPassword returns the bcrypt hash used in config files.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ValidateEmail checks an address against the login form rules.
func ValidateEmail(email string) error {
	if !emailChars.MatchString(email) {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks a password against the login form rules.
func ValidatePassword(password string) error {
	if len(password) > maxPasswordLen || !passwordChars.MatchString(password) {
		return ErrInvalidPassword
	}
	return nil
}

// NormalizeEmail is the account key form of an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
