package producer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresBrokers(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.ErrorContains(t, err, "brokers not configured")
}

func TestNewDoesNotDial(t *testing.T) {
	// franz-go connects lazily, so construction succeeds without a broker.
	p, err := New(DefaultConfig("127.0.0.1:1, "), nil)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.NoError(t, p.Close(), "second close is a no-op")
}
