// Package kafka is the sarama-backed broker adapter: the production
// implementation of the abstract BrokerConsumer/BrokerProducer contracts
// the engine package defines, plus the client/config wiring kspp's
// cluster_config maps onto a real sarama.Config (§4.2/§4.4, component
// "kafka adapter").
package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"github.com/IBM/sarama"

	kspp "github.com/gitter-badger/kspp-go"
)

// ClientConfig builds the sarama.Config this adapter connects with from a
// ClusterConfig: producer buffering maps onto the producer flush
// frequency and consumer buffering onto the consumer max wait time, and a
// client certificate plus private key (and optional CA certificate) turn
// on TLS. PrivateKeyPassphrase is not applied: the private key file must
// be unencrypted.
func ClientConfig(cfg *kspp.ClusterConfig) (*sarama.Config, error) {
	sc := sarama.NewConfig()
	sc.Version = sarama.V2_8_0_0

	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.Flush.Frequency = cfg.ProducerBufferingTime

	sc.Consumer.Return.Errors = true
	sc.Consumer.MaxWaitTime = cfg.ConsumerBufferingTime

	if cfg.ClientCertPath != "" {
		tlsConfig, err := buildTLSConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("kafka: building tls config: %w", err)
		}
		sc.Net.TLS.Enable = true
		sc.Net.TLS.Config = tlsConfig
	}

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("kafka: invalid sarama config: %w", err)
	}
	return sc, nil
}

func buildTLSConfig(cfg *kspp.ClusterConfig) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.PrivateKeyPath)
	if err != nil {
		return nil, err
	}
	tlsConfig := &tls.Config{Certificates: []tls.Certificate{cert}}
	if cfg.CACertPath != "" {
		pem, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("kafka: no certificates parsed from %s", cfg.CACertPath)
		}
		tlsConfig.RootCAs = pool
	}
	return tlsConfig, nil
}

// NewClient dials the brokers named in cfg.Brokers (a comma-separated
// list, matching kspp's cluster_config::brokers format).
func NewClient(cfg *kspp.ClusterConfig) (sarama.Client, error) {
	sc, err := ClientConfig(cfg)
	if err != nil {
		return nil, err
	}
	brokers := strings.Split(cfg.Brokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}
	return sarama.NewClient(brokers, sc)
}

// NumPartitions discovers how many partitions topic has, the Go analogue
// of kspp::kafka::get_number_partitions, used to size a CreateSources
// call without the caller hardcoding a partition count.
func NumPartitions(client sarama.Client, topic string) (int32, error) {
	partitions, err := client.Partitions(topic)
	if err != nil {
		return 0, fmt.Errorf("kafka: discovering partitions for %s: %w", topic, err)
	}
	return int32(len(partitions)), nil
}
