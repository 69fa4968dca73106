package file

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPersistence_StripsFileScheme(t *testing.T) {
	tempDir := t.TempDir()
	p := NewPersistence("file://" + tempDir)

	assert.Equal(t, tempDir, p.root)
}

func TestPersistence_HealthCheck(t *testing.T) {
	p := NewPersistence(t.TempDir())

	err := p.HealthCheck(context.Background())
	require.NoError(t, err)
}

func TestPersistence_Close(t *testing.T) {
	p := NewPersistence(t.TempDir())

	err := p.Close(context.Background())
	require.NoError(t, err)
}
