package redisclient

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectRefused(t *testing.T) {
	p, err := ConnectRedis("127.0.0.1:1", "")
	require.Error(t, err)
	require.Nil(t, p)

	p, err = ConnectRedis("redis://127.0.0.1:1/0", "", RedisParam{PoolMultiplier: 1})
	require.Error(t, err)
	require.Nil(t, p)
}

func TestConnectURL(t *testing.T) {
	uri := os.Getenv("TEST_REDIS_URI")
	if uri == "" {
		t.Skip("TEST_REDIS_URI is not set")
	}
	p, err := ConnectRedis(uri, "", RedisParam{PoolMultiplier: 1})
	require.NoError(t, err)
	defer p.Close()

	conn := p.Get()
	defer conn.Close()
	_, err = conn.Do("PING")
	require.NoError(t, err)
}
