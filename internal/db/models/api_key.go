package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// APIKey represents an API credential for external integrations.
// The plaintext secret is shown exactly once at generation time; only its
// argon2id hash is stored.
type APIKey struct {
	ID uint64 `gorm:"primaryKey"`
	// Name is a human readable label for the key, e.g. "storefront".
	Name string `gorm:"size:100;not null"`
	// Key is the public random identifier sent with requests.
	Key string `gorm:"uniqueIndex;size:64;not null"`
	// SecretHash is the argon2id hash of the secret.
	SecretHash string `gorm:"size:255;not null"`
	// RateLimit is the allowed requests per minute, 0 means unlimited.
	RateLimit int `gorm:"default:0"`
	// Scopes holds the JSON encoded list of permission scopes.
	Scopes string `gorm:"type:text"`
	// ExpiresAt is the expiry timestamp, nil means the key never expires.
	ExpiresAt *time.Time
	// IsActive disables the key when false. Revoking forces it false.
	IsActive bool `gorm:"default:true"`
	// UsageCount is the number of requests made with this key.
	UsageCount uint64 `gorm:"default:0"`
	// LastUsedAt is when the key was last seen on a request.
	LastUsedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the database table name for the APIKey model.
func (APIKey) TableName() string {
	return "api_keys"
}

// HashSecret hashes a plaintext API key secret using the Argon2id algorithm.
func HashSecret(secret string) string {
	hashed, err := argon2id.CreateHash(secret, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash api key secret: %v", err)
	}

	return hashed
}

// VerifySecret verifies a plaintext secret against the stored hash.
// It uses constant-time comparison to prevent timing attacks.
func (k *APIKey) VerifySecret(secret string) bool {
	match, err := argon2id.ComparePasswordAndHash(secret, k.SecretHash)
	if err != nil {
		log.Error().Msgf("failed to verify api key secret: %v", err)
		return false
	}

	return match
}

// Expired reports whether the key has an expiry in the past.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}
