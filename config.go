package kspp

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ClusterConfig is the frozen bag of cluster-wide options every topology
// built from one TopologyBuilder shares (§4.7). It is read-only once
// Validate has succeeded, and is safe to share across every topology on
// every driver thread (§5).
type ClusterConfig struct {
	Brokers string

	ConsumerBufferingTime time.Duration
	ProducerBufferingTime time.Duration

	CACertPath           string
	ClientCertPath       string
	PrivateKeyPath       string
	PrivateKeyPassphrase string

	SchemaRegistryURI     string
	SchemaRegistryTimeout time.Duration

	StorageRoot string

	FailFast bool
}

// NewClusterConfig returns a ClusterConfig with kspp's historical
// defaults: localhost broker, 100ms consumer/producer buffering, no TLS,
// no schema registry, local ./storage, fail_fast off.
func NewClusterConfig() *ClusterConfig {
	return &ClusterConfig{
		Brokers:               "localhost:9092",
		ConsumerBufferingTime: 100 * time.Millisecond,
		ProducerBufferingTime: 100 * time.Millisecond,
		SchemaRegistryTimeout: 10 * time.Second,
		StorageRoot:           "./storage",
	}
}

// Environment variable names consulted by LoadConfigFromEnv, matching
// the C++ original's load_config_from_env.
const (
	EnvBrokers               = "KSPP_KAFKA_BROKERS"
	EnvConsumerBufferingMs   = "KSPP_CONSUMER_BUFFERING_MS"
	EnvProducerBufferingMs   = "KSPP_PRODUCER_BUFFERING_MS"
	EnvCACertPath            = "KSPP_CA_CERT_PATH"
	EnvClientCertPath        = "KSPP_CLIENT_CERT_PATH"
	EnvPrivateKeyPath        = "KSPP_PRIVATE_KEY_PATH"
	EnvPrivateKeyPassphrase  = "KSPP_PRIVATE_KEY_PASSPHRASE"
	EnvSchemaRegistryURI     = "KSPP_SCHEMA_REGISTRY_URI"
	EnvSchemaRegistryTimeout = "KSPP_SCHEMA_REGISTRY_TIMEOUT_MS"
	EnvStorageRoot           = "KSPP_STORAGE_ROOT"
	EnvFailFast              = "KSPP_FAIL_FAST"
)

// LoadConfigFromEnv builds a ClusterConfig from the named environment
// variables above, starting from NewClusterConfig's defaults, using
// viper's environment binding the way this repo's ambient configuration
// stack does throughout.
func LoadConfigFromEnv() *ClusterConfig {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{
		EnvBrokers, EnvConsumerBufferingMs, EnvProducerBufferingMs,
		EnvCACertPath, EnvClientCertPath, EnvPrivateKeyPath, EnvPrivateKeyPassphrase,
		EnvSchemaRegistryURI, EnvSchemaRegistryTimeout, EnvStorageRoot, EnvFailFast,
	} {
		_ = v.BindEnv(key)
	}

	cfg := NewClusterConfig()
	if b := v.GetString(EnvBrokers); b != "" {
		cfg.Brokers = b
	}
	if v.IsSet(EnvConsumerBufferingMs) {
		cfg.ConsumerBufferingTime = time.Duration(v.GetInt64(EnvConsumerBufferingMs)) * time.Millisecond
	}
	if v.IsSet(EnvProducerBufferingMs) {
		cfg.ProducerBufferingTime = time.Duration(v.GetInt64(EnvProducerBufferingMs)) * time.Millisecond
	}
	cfg.CACertPath = v.GetString(EnvCACertPath)
	cfg.ClientCertPath = v.GetString(EnvClientCertPath)
	cfg.PrivateKeyPath = v.GetString(EnvPrivateKeyPath)
	cfg.PrivateKeyPassphrase = v.GetString(EnvPrivateKeyPassphrase)
	cfg.SchemaRegistryURI = v.GetString(EnvSchemaRegistryURI)
	if v.IsSet(EnvSchemaRegistryTimeout) {
		cfg.SchemaRegistryTimeout = time.Duration(v.GetInt64(EnvSchemaRegistryTimeout)) * time.Millisecond
	}
	if sr := v.GetString(EnvStorageRoot); sr != "" {
		cfg.StorageRoot = sr
	}
	if v.IsSet(EnvFailFast) {
		cfg.FailFast = v.GetBool(EnvFailFast)
	}
	return cfg
}

// Validate enforces the mutual-dependency rules a contradictory
// configuration would otherwise only fail on at connection time
// (§7 error kind 1: configuration error).
func (c *ClusterConfig) Validate() error {
	if strings.TrimSpace(c.Brokers) == "" {
		return ConfigError("brokers must not be empty")
	}
	if c.ClientCertPath != "" && c.PrivateKeyPath == "" {
		return ConfigError("client_cert_path set without private_key_path")
	}
	if c.PrivateKeyPath != "" && c.ClientCertPath == "" {
		return ConfigError("private_key_path set without client_cert_path")
	}
	if c.SchemaRegistryURI != "" && c.SchemaRegistryTimeout <= 0 {
		return ConfigError("schema_registry_uri set with a non-positive schema_registry_timeout")
	}
	if strings.TrimSpace(c.StorageRoot) == "" {
		return ConfigError("storage_root must not be empty")
	}
	return nil
}

// Log writes a diagnostic dump of the resolved configuration, the Go
// analogue of cluster_config::log() in the C++ original.
func (c *ClusterConfig) Log(logger *zap.Logger) {
	logger.Info("cluster configuration",
		zap.String("brokers", c.Brokers),
		zap.Duration("consumer_buffering", c.ConsumerBufferingTime),
		zap.Duration("producer_buffering", c.ProducerBufferingTime),
		zap.Bool("tls", c.ClientCertPath != ""),
		zap.String("schema_registry_uri", c.SchemaRegistryURI),
		zap.String("storage_root", c.StorageRoot),
		zap.Bool("fail_fast", c.FailFast),
	)
}
