package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	kspp "github.com/gitter-badger/kspp-go"
)

func TestClientConfigBuffering(t *testing.T) {
	cfg := kspp.NewClusterConfig()
	cfg.ConsumerBufferingTime = 250 * time.Millisecond
	cfg.ProducerBufferingTime = 500 * time.Millisecond

	sc, err := ClientConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, sc.Consumer.MaxWaitTime)
	require.Equal(t, 500*time.Millisecond, sc.Producer.Flush.Frequency)
	require.True(t, sc.Producer.Return.Successes)
	require.True(t, sc.Producer.Return.Errors)
	require.False(t, sc.Net.TLS.Enable)
}

func TestClientConfigMissingCertFile(t *testing.T) {
	cfg := kspp.NewClusterConfig()
	cfg.ClientCertPath = "/nonexistent/client.crt"
	cfg.PrivateKeyPath = "/nonexistent/client.key"

	_, err := ClientConfig(cfg)
	require.Error(t, err)
}
