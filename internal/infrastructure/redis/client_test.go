package redis

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kidpech/logviewer/internal/config"
)

func TestConnectFailsFastWhenUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	client, err := Connect(context.Background(), config.RedisConfig{Addr: addr}, 500*time.Millisecond)

	require.Error(t, err)
	require.Nil(t, client)
	require.Contains(t, err.Error(), addr)
}

func TestCloseNilClient(t *testing.T) {
	var c *Client
	require.NoError(t, c.Close())
}
