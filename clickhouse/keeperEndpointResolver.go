package clickhouse

import (
	"fmt"
	"math/rand"
	"time"

	zk "github.com/go-zookeeper/zk"

	log "github.com/sirupsen/logrus"
)

const defaultKeeperSessionTimeoutSec = 60

type listZNodeChildren func(path string) ([]string, error)

// keeperEndpointResolver reads the endpoint registry once: every child of the
// configured path is a host:port entry.
type keeperEndpointResolver struct {
	config       *KeeperConfig
	listChildren listZNodeChildren
}

func (s *keeperEndpointResolver) resolve() (string, error) {
	if s.listChildren == nil {
		conn, err := s.connect()
		if err != nil {
			return "", err
		}
		defer conn.Close()
		s.listChildren = func(path string) ([]string, error) {
			children, _, err := conn.Children(path)
			return children, err
		}
	}
	children, err := s.listChildren(s.config.Path)
	if err != nil {
		log.Errorf("Failed to list endpoints at keeper path: %s, Error: %v", s.config.Path, err)
		return "", err
	}
	endpoints := make([]string, 0, len(children))
	for _, child := range children {
		if err := validateEndpoint(child); err != nil {
			log.Errorf("Skipping keeper entry %s: %v", child, err)
			continue
		}
		endpoints = append(endpoints, child)
	}
	if len(endpoints) == 0 {
		return "", fmt.Errorf("no endpoint registered at keeper path: %s", s.config.Path)
	}
	// #nosec G404
	return withScheme(endpoints[rand.Intn(len(endpoints))]), nil
}

func (s *keeperEndpointResolver) connect() (*zk.Conn, error) {
	timeoutSec := s.config.SessionTimeoutSec
	if timeoutSec == 0 {
		timeoutSec = defaultKeeperSessionTimeoutSec
	}
	conn, _, err := zk.Connect(
		s.config.Servers,
		time.Duration(timeoutSec)*time.Second,
		zk.WithLogger(log.StandardLogger()),
	)
	if err != nil {
		log.Errorf("Failed to connect to keeper: %v", s.config.Servers)
		return nil, err
	}
	return conn, nil
}
