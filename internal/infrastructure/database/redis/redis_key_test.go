package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey_WithIdentifier(t *testing.T) {
	kg := NewKeyGenerator("development")

	key, err := kg.GenerateKey("compliance_report", "last")
	require.NoError(t, err)
	assert.Equal(t, "carelink_development_compliance_report:last", key)
}

func TestGenerateKey_SingletonWithoutIdentifier(t *testing.T) {
	kg := NewKeyGenerator("docker")

	key, err := kg.GenerateKey("compliance_lease")
	require.NoError(t, err)
	assert.Equal(t, "carelink_docker_compliance_lease", key)
}

func TestGenerateKey_UnknownPattern(t *testing.T) {
	kg := NewKeyGenerator("development")

	_, err := kg.GenerateKey("no_such_pattern")
	require.Error(t, err)
}

func TestGetTTL(t *testing.T) {
	kg := NewKeyGenerator("development")

	ttl, err := kg.GetTTL("compliance_lease")
	require.NoError(t, err)
	assert.Equal(t, 1800, ttl)

	ttl, err = kg.GetTTL("compliance_report")
	require.NoError(t, err)
	assert.Equal(t, 0, ttl, "last-report key never expires")
}

func TestWellKnownKeys(t *testing.T) {
	kg := NewKeyGenerator("test")

	assert.Equal(t, "carelink_test_compliance_lease", kg.SweepLeaseKey())
	assert.Equal(t, "carelink_test_compliance_report:last", kg.LastReportKey())
	assert.Equal(t, "carelink_test_infra_health", kg.HealthProbeKey())
}

func TestValidateKey(t *testing.T) {
	kg := NewKeyGenerator("development")

	assert.NoError(t, kg.ValidateKey(kg.SweepLeaseKey()))
	assert.NoError(t, kg.ValidateKey(kg.LastReportKey()))

	assert.Error(t, kg.ValidateKey(""))
	assert.Error(t, kg.ValidateKey("wrongprefix_dev_compliance_lease"))
	assert.Error(t, kg.ValidateKey("carelink_short"))
	assert.Error(t, kg.ValidateKey("carelink_dev_compliance_lease:bad key"))
}
