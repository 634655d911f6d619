package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(context.Background(), WithRedisAddr(mr.Addr()), WithRedisPrefix("fm"))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "fm:status:EURUSD", c.Key("status", "EURUSD"))
	require.NoError(t, c.Client().Set(context.Background(), c.Key("k"), "v", 0).Err())
	got, err := mr.Get("fm:k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), WithRedisAddr(addr))
	assert.Error(t, err)
}

func TestKey_NoPrefix(t *testing.T) {
	c := NewRedisCacheFromClient(nil, "")
	assert.Equal(t, "a:b", c.Key("a", "b"))
}
