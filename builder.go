package kspp

import "go.uber.org/zap"

// TopologyBuilder binds an application identity and a cluster
// configuration and mints fresh topologies on demand. A single builder
// is meant to be shared by every topology an application constructs;
// ClusterConfig is read-only after Validate and is safe to share across
// the driver threads of those topologies.
type TopologyBuilder struct {
	appInfo AppIdentity
	config  *ClusterConfig
}

// NewTopologyBuilder validates config and returns a builder bound to
// namespace/instanceID. Config must already have passed Validate, or
// this is itself is validated here and the error returned.
func NewTopologyBuilder(namespace, instanceID string, config *ClusterConfig) (*TopologyBuilder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &TopologyBuilder{
		appInfo: AppIdentity{Namespace: namespace, InstanceID: instanceID},
		config:  config,
	}, nil
}

// Config returns the cluster configuration this builder mints topologies
// with.
func (b *TopologyBuilder) Config() *ClusterConfig { return b.config }

// AppIdentity returns the application identity this builder binds every
// topology to.
func (b *TopologyBuilder) AppIdentity() AppIdentity { return b.appInfo }

// CreateTopology mints a fresh, empty Topology identified by topologyID
// within this builder's application identity and storage root.
func (b *TopologyBuilder) CreateTopology(topologyID string) *Topology {
	t := newTopology(b.appInfo, topologyID, b.config.StorageRoot)
	Logger.Info("topology created", zap.String("topology", t.Name()))
	return t
}
