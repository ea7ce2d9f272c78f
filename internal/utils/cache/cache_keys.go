package cache

import "fmt"

type EntityType string

const (
	EntityUser  EntityType = "user"
	EntitySweep EntityType = "roi:sweep"
)

type KeyType string

const (
	KeyID    KeyType = "id"
	KeyEmail KeyType = "email"
)

// GenerateKey creates a standardized cache key
func GenerateKey(entity EntityType, keyType KeyType, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entity, keyType, value)
}

// SweepLockKey is the lock held while the ROI sweep for date runs.
func SweepLockKey(date string) string {
	return fmt.Sprintf("%s:%s", EntitySweep, date)
}
