package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Token and password limits.
const (
	MinSecretLength   = 16
	DefaultBcryptCost = 12
	MinBcryptCost     = 10
	MaxBcryptCost     = 14
	MinPasswordLength = 8

	// maxBcryptInput is the longest input bcrypt accepts.
	maxBcryptInput = 72
)

// JWTConfig controls how session tokens are signed and how long they last.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// NewJWTConfig reads JWT_SECRET (required), JWT_EXPIRATION_HOURS (default:
// 24) and JWT_ISSUER (default: career-portal).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	hours, err := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}
	if hours < 1 {
		return nil, fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", hours)
	}

	config := &JWTConfig{
		Secret: secret,
		TTL:    time.Duration(hours) * time.Hour,
		Issuer: getEnv("JWT_ISSUER", "career-portal"),
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *JWTConfig) normalize() error {
	if len(c.Secret) < MinSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters, got: %d", MinSecretLength, len(c.Secret))
	}
	if c.TTL < time.Hour {
		return fmt.Errorf("token lifetime must be at least 1 hour, got: %s", c.TTL)
	}
	return nil
}

// PasswordConfig hashes and checks account passwords with bcrypt. A non-empty
// Pepper is appended to every password before hashing.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string
}

// NewPasswordConfig reads BCRYPT_COST (default: 12, range 10-14) and
// PASSWORD_PEPPER (optional).
func NewPasswordConfig() (*PasswordConfig, error) {
	cost, err := strconv.Atoi(getEnv("BCRYPT_COST", strconv.Itoa(DefaultBcryptCost)))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}
	if cost < MinBcryptCost || cost > MaxBcryptCost {
		return nil, fmt.Errorf("bcrypt cost out of range: %d (must be %d-%d)", cost, MinBcryptCost, MaxBcryptCost)
	}
	return &PasswordConfig{BcryptCost: cost, Pepper: os.Getenv("PASSWORD_PEPPER")}, nil
}

func (c *PasswordConfig) peppered(pw string) ([]byte, error) {
	password := pw + c.Pepper
	if len(password) > maxBcryptInput {
		return nil, fmt.Errorf("password too long: %d bytes (max %d)", len(password), maxBcryptInput)
	}
	return []byte(password), nil
}

// HashPassword checks the password policy and returns the bcrypt hash of pw.
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	if len(pw) < MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	password, err := c.peppered(pw)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword(password, c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether pw matches storedHash.
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	password, err := c.peppered(pw)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), password) == nil
}

// NeedsRehash reports whether storedHash was made with a different cost than
// the configured one.
func (c *PasswordConfig) NeedsRehash(storedHash string) bool {
	cost, err := bcrypt.Cost([]byte(storedHash))
	return err != nil || cost != c.BcryptCost
}
