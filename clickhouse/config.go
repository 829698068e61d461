package clickhouse

import "time"

// ClientConfig configs to create a ClickHouse Connection
type ClientConfig struct {
	// Host of the ClickHouse HTTP interface, with or without the http(s):// scheme
	Host string
	// Port of the HTTP interface, defaults to 8123
	Port int
	// EndpointList of host:port entries, one of them is picked when the connection is created
	EndpointList []string
	// KeeperConfig resolves the endpoint from ZooKeeper / ClickHouse Keeper
	KeeperConfig *KeeperConfig
	// Username and Password are sent with every request via basic auth
	Username string
	Password string
	// Database sets the default database of every query
	Database string
	// Cluster used by ClearTable for the ON CLUSTER clause, defaults to "ba".
	// Set DisableCluster to truncate on the local server only.
	Cluster        string
	DisableCluster bool
	// Compression codec used by QueryCompressed and InsertCompressed, defaults to gzip
	Compression Compression
	// Settings are passed as extra URL parameters on every request
	Settings map[string]string
	// Additional HTTP headers to include in every request
	ExtraHTTPHeader map[string]string
	// HTTP request timeout
	HTTPTimeout time.Duration
}

// KeeperConfig describes how to resolve the HTTP endpoint through ZooKeeper.
// Every child znode of Path must be named host:port.
type KeeperConfig struct {
	Servers           []string
	Path              string
	SessionTimeoutSec int
}
