// Package clickhouse provides a client for the HTTP interface of ClickHouse, a
// column-oriented OLAP database.
package clickhouse

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const defaultPort = 8123

type endpointResolver interface {
	// Returns the endpoint address in the form http(s)://host:port
	resolve() (string, error)
}

type staticEndpointResolver struct {
	host string
	port int
}

func (s *staticEndpointResolver) resolve() (string, error) {
	if s.host == "" {
		return "", fmt.Errorf("no host set in staticEndpointResolver")
	}
	port := s.port
	if port == 0 {
		port = defaultPort
	}
	return withScheme(strings.TrimSuffix(s.host, "/") + ":" + strconv.Itoa(port)), nil
}

func withScheme(address string) string {
	if strings.HasPrefix(address, "http://") || strings.HasPrefix(address, "https://") {
		return address
	}
	return "http://" + address
}

func validateEndpoint(endpoint string) error {
	address := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	host, port, err := net.SplitHostPort(strings.TrimSuffix(address, "/"))
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %v", endpoint, err)
	}
	if host == "" {
		return fmt.Errorf("invalid endpoint %q: empty host", endpoint)
	}
	if _, err := strconv.Atoi(port); err != nil {
		return fmt.Errorf("invalid endpoint %q: port %q is not a number", endpoint, port)
	}
	return nil
}
