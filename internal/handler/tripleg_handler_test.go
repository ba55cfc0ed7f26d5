package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveToleranceUsesFallback(t *testing.T) {
	tolerance, err := resolveTolerance("", 2.5)
	require.NoError(t, err)
	assert.Equal(t, 2.5, tolerance)
}

func TestResolveToleranceParsesQuery(t *testing.T) {
	tolerance, err := resolveTolerance("0.5", 2.5)
	require.NoError(t, err)
	assert.Equal(t, 0.5, tolerance)
}

func TestResolveToleranceRejectsNonPositive(t *testing.T) {
	_, err := resolveTolerance("0", 2.5)
	assert.Error(t, err)

	_, err = resolveTolerance("-1", 2.5)
	assert.Error(t, err)
}

func TestResolveToleranceRejectsMalformed(t *testing.T) {
	_, err := resolveTolerance("abc", 2.5)
	assert.Error(t, err)
}
