package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAddrs(t *testing.T) {
	assert.Equal(t, []string{"a:6379", "b:6379"}, splitAddrs(" a:6379, ,b:6379 "))
	assert.Empty(t, splitAddrs(""))
}

func TestConnectOrFallbackWithoutAddress(t *testing.T) {
	client, cleanup := ConnectOrFallback(context.Background(), "  ", nil)
	require.NotNil(t, cleanup)
	cleanup()
	assert.Nil(t, client)
}

func TestConnectRejectsEmptyAddress(t *testing.T) {
	_, err := Connect(context.Background(), "")
	assert.Error(t, err)
}
