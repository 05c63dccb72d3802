package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderDefaultsToMock(t *testing.T) {
	t.Setenv("PUSH_PROVIDER", "")

	p, err := NewProvider()
	require.NoError(t, err)
	assert.IsType(t, &MockProvider{}, p)
}

func TestNewProviderUnknownName(t *testing.T) {
	t.Setenv("PUSH_PROVIDER", "carrier-pigeon")

	_, err := NewProvider()
	assert.Error(t, err)
}

func TestNewProviderFCMRequiresProject(t *testing.T) {
	t.Setenv("PUSH_PROVIDER", "fcm")
	t.Setenv("FCM_PROJECT_ID", "")

	_, err := NewProvider()
	assert.Error(t, err)
}
