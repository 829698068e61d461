package clickhouse

import (
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

// NewFromEndpoint create a new ClickHouse connection to host:port with the default
// placeholder credentials. A zero port means 8123.
func NewFromEndpoint(host string, port int) (*Connection, error) {
	return NewWithConfig(&ClientConfig{
		Host: host,
		Port: port,
	})
}

// NewFromEndpointList create a new ClickHouse connection to one endpoint of a pre configured list.
func NewFromEndpointList(endpointList []string) (*Connection, error) {
	return NewWithConfig(&ClientConfig{
		EndpointList: endpointList,
	})
}

// NewFromKeeper create a new ClickHouse connection whose endpoint is read from ZooKeeper.
func NewFromKeeper(servers []string, path string) (*Connection, error) {
	return NewWithConfig(&ClientConfig{
		KeeperConfig: &KeeperConfig{
			Servers:           servers,
			Path:              "/" + strings.Trim(path, "/"),
			SessionTimeoutSec: defaultKeeperSessionTimeoutSec,
		},
	})
}

// NewWithConfig create a new ClickHouse connection owning its own http.Client.
func NewWithConfig(config *ClientConfig) (*Connection, error) {
	return NewWithConfigAndClient(config, &http.Client{})
}

// NewWithConfigAndClient create a new ClickHouse connection using the given http.Client.
func NewWithConfigAndClient(config *ClientConfig, httpClient *http.Client) (*Connection, error) {
	if config.HTTPTimeout != 0 {
		httpClient.Timeout = config.HTTPTimeout
	}
	transport := &httpClientTransport{
		client:   httpClient,
		username: config.Username,
		password: config.Password,
		database: config.Database,
		settings: config.Settings,
		header:   config.ExtraHTTPHeader,
	}
	if transport.username == "" && transport.password == "" {
		transport.username, transport.password = defaultUsername, defaultPassword
	}
	return newConnection(config, transport)
}

func newConnection(config *ClientConfig, transport *httpClientTransport) (*Connection, error) {
	resolver, err := newEndpointResolver(config)
	if err != nil {
		return nil, err
	}
	endpoint, err := resolver.resolve()
	if err != nil {
		log.Errorf("Unable to resolve a ClickHouse endpoint, Error: %v", err)
		return nil, err
	}
	transport.baseURL = strings.TrimSuffix(endpoint, "/")

	compression, err := ParseCompression(string(config.Compression))
	if err != nil {
		return nil, err
	}
	if compression == CompressionNone {
		compression = defaultCompression
	}
	cluster := config.Cluster
	if cluster == "" {
		cluster = defaultCluster
	}
	if config.DisableCluster {
		cluster = ""
	}
	return &Connection{
		transport:   transport,
		endpoint:    transport.baseURL,
		cluster:     cluster,
		compression: compression,
	}, nil
}

func newEndpointResolver(config *ClientConfig) (endpointResolver, error) {
	if config.KeeperConfig != nil {
		return &keeperEndpointResolver{config: config.KeeperConfig}, nil
	}
	if len(config.EndpointList) > 0 {
		return &simpleEndpointSelector{endpointList: config.EndpointList}, nil
	}
	if config.Host != "" {
		return &staticEndpointResolver{host: config.Host, port: config.Port}, nil
	}
	return nil, fmt.Errorf(
		"please specify at least one of Host, EndpointList or KeeperConfig to connect",
	)
}
