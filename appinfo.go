package kspp

// AppIdentity names the application instance a topology belongs to: the
// namespace groups related topologies (consumer group prefix, storage
// root segment), instanceID distinguishes replicas of the same app.
type AppIdentity struct {
	Namespace  string
	InstanceID string
}

// Identity renders the identity used in storage paths and log lines,
// e.g. "kspp-examples.worker-0".
func (a AppIdentity) Identity() string {
	if a.InstanceID == "" {
		return a.Namespace
	}
	return a.Namespace + "." + a.InstanceID
}

// GroupID is the broker consumer-group id derived from this identity.
func (a AppIdentity) GroupID() string {
	return a.Identity()
}
