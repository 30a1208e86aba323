// Package apikey manages API credentials: generation with a one-time secret,
// activation toggling, revocation and usage accounting.
package apikey

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
	"github.com/GoShopAdmin/GoShopAdmin/internal/keygen"
)

const keyQueryPattern = "key = ?"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrKeyNotFound is returned when an API key is not found.
	ErrKeyNotFound = errors.New("api key not found")
	// ErrNameEmpty is returned when generating a key without a name.
	ErrNameEmpty = errors.New("api key name cannot be empty")
	// ErrKeyInactive is returned when verifying against a disabled or expired key.
	ErrKeyInactive = errors.New("api key is inactive or expired")
)

// Generated carries the one-time plaintext credentials of a new key.
// The secret is never persisted, only its hash.
type Generated struct {
	Record *models.APIKey
	Key    string
	Secret string
}

// Generate creates a new API key with a random identifier and secret.
// The plaintext secret is only available on the returned struct; afterwards
// the store holds just the argon2id hash.
func Generate(db *gorm.DB, name string, scopes []string, rateLimit int, expiresAt *time.Time) (*Generated, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrNameEmpty
	}

	scopesJSON, err := json.Marshal(scopes)
	if err != nil {
		return nil, err
	}

	key := keygen.NewKey()
	secret := keygen.NewSecret()

	record := &models.APIKey{
		Name:       name,
		Key:        key,
		SecretHash: models.HashSecret(secret),
		RateLimit:  rateLimit,
		Scopes:     string(scopesJSON),
		ExpiresAt:  expiresAt,
		IsActive:   true,
	}

	if err := db.Create(record).Error; err != nil {
		return nil, err
	}

	return &Generated{Record: record, Key: key, Secret: secret}, nil
}

// Get retrieves an API key by its public identifier.
func Get(db *gorm.DB, key string) (*models.APIKey, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var k models.APIKey
	result := db.Where(keyQueryPattern, key).First(&k)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, result.Error
	}

	return &k, nil
}

// GetAll retrieves all API keys, newest first.
func GetAll(db *gorm.DB) ([]models.APIKey, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var list []models.APIKey
	result := db.Order("created_at DESC").Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}

	return list, nil
}

// Toggle flips the active flag of a key.
func Toggle(db *gorm.DB, key string) (*models.APIKey, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	k, err := Get(db, key)
	if err != nil {
		return nil, err
	}

	k.IsActive = !k.IsActive
	if err := db.Save(k).Error; err != nil {
		return nil, err
	}

	return k, nil
}

// Revoke forces a key inactive. Unlike Toggle this is a one-way operation
// used when a credential is suspected compromised.
func Revoke(db *gorm.DB, key string) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.APIKey{}).Where(keyQueryPattern, key).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrKeyNotFound
	}

	return nil
}

// Delete removes a key permanently.
func Delete(db *gorm.DB, key string) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where(keyQueryPattern, key).Delete(&models.APIKey{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrKeyNotFound
	}

	return nil
}

// Verify checks a key/secret pair and, on success, records the usage.
// Inactive and expired keys fail with ErrKeyInactive.
func Verify(db *gorm.DB, key, secret string) (*models.APIKey, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	k, err := Get(db, key)
	if err != nil {
		return nil, err
	}

	if !k.IsActive || k.Expired(time.Now()) {
		return nil, ErrKeyInactive
	}

	if !k.VerifySecret(secret) {
		return nil, ErrKeyNotFound
	}

	now := time.Now().UTC()

	err = db.Model(k).Updates(map[string]any{
		"usage_count":  gorm.Expr("usage_count + 1"),
		"last_used_at": now,
	}).Error
	if err != nil {
		return nil, err
	}

	return k, nil
}

// ScopeList decodes the JSON scopes column of a key.
func ScopeList(k *models.APIKey) []string {
	var scopes []string
	if err := json.Unmarshal([]byte(k.Scopes), &scopes); err != nil {
		return nil
	}

	return scopes
}
