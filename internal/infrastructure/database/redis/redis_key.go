package redis

import (
	"fmt"
	"regexp"
	"strings"
)

// KeyGenerator builds and validates Redis keys following the CareLink convention.
// Pattern: carelink_{env}_{domain}_{context}:{identifier}
type KeyGenerator struct {
	environment string
}

func NewKeyGenerator(environment string) *KeyGenerator {
	return &KeyGenerator{environment: environment}
}

// KeyPattern describes a standard key family
type KeyPattern struct {
	Domain  string // compliance, cache, ...
	Context string // lease, report, ...
	TTL     int    // TTL in seconds, 0 = no expiration
}

// Only patterns actually used by the service are listed here
var KeyPatterns = map[string]KeyPattern{
	"compliance_lease":  {Domain: "compliance", Context: "lease", TTL: 1800},
	"compliance_report": {Domain: "compliance", Context: "report", TTL: 0},
	"health_probe":      {Domain: "infra", Context: "health", TTL: 10},
}

// GenerateKey builds a key following carelink_{env}_{domain}_{context}:{identifier}
func (kg *KeyGenerator) GenerateKey(patternName string, identifier ...string) (string, error) {
	pattern, exists := KeyPatterns[patternName]
	if !exists {
		return "", fmt.Errorf("redis key pattern not found: %s", patternName)
	}

	prefix := fmt.Sprintf("carelink_%s_%s_%s", kg.environment, pattern.Domain, pattern.Context)

	if len(identifier) > 0 {
		return fmt.Sprintf("%s:%s", prefix, strings.Join(identifier, "_")), nil
	}

	// Singleton keys carry no identifier
	return prefix, nil
}

// GetTTL returns the TTL configured for a pattern
func (kg *KeyGenerator) GetTTL(patternName string) (int, error) {
	pattern, exists := KeyPatterns[patternName]
	if !exists {
		return 0, fmt.Errorf("redis key pattern not found: %s", patternName)
	}
	return pattern.TTL, nil
}

// SweepLeaseKey is the singleton key guarding sweep runs against overlap
func (kg *KeyGenerator) SweepLeaseKey() string {
	key, _ := kg.GenerateKey("compliance_lease")
	return key
}

// LastReportKey stores the serialized report of the most recent sweep run
func (kg *KeyGenerator) LastReportKey() string {
	key, _ := kg.GenerateKey("compliance_report", "last")
	return key
}

func (kg *KeyGenerator) HealthProbeKey() string {
	key, _ := kg.GenerateKey("health_probe")
	return key
}

// ValidateKey checks that a key respects the convention
func (kg *KeyGenerator) ValidateKey(key string) error {
	if len(key) == 0 {
		return fmt.Errorf("empty key")
	}

	if len(key) > 250 {
		return fmt.Errorf("key too long (max 250 characters): %d", len(key))
	}

	validKeyRegex := regexp.MustCompile(`^[a-zA-Z0-9_:\-]+$`)
	if !validKeyRegex.MatchString(key) {
		return fmt.Errorf("key contains invalid characters: %s", key)
	}

	if !strings.HasPrefix(key, "carelink_") {
		return fmt.Errorf("key must start with 'carelink_': %s", key)
	}

	prefix := strings.SplitN(key, ":", 2)[0]
	prefixParts := strings.Split(prefix, "_")
	if len(prefixParts) < 4 {
		return fmt.Errorf("invalid prefix structure (format: carelink_env_domain_context): %s", prefix)
	}

	return nil
}
