package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building so staging and
// production can share an instance without colliding.
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" {
		prefix = "staging"
	}
	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeyTakesTable keys a team's cached actual-takes table
func (kb *KeyBuilder) KeyTakesTable(teamSlug string) string {
	return kb.BuildKey(fmt.Sprintf("takes:table:%s", teamSlug))
}
