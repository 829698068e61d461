package clickhouse

import (
	"fmt"
	"math/rand"
	"strings"
)

type simpleEndpointSelector struct {
	endpointList []string
}

func (s *simpleEndpointSelector) resolve() (string, error) {
	if len(s.endpointList) == 0 {
		return "", fmt.Errorf("no pre-configured endpoint list set in simpleEndpointSelector")
	}
	// #nosec G404
	endpoint := s.endpointList[rand.Intn(len(s.endpointList))]
	if err := validateEndpoint(endpoint); err != nil {
		return "", err
	}
	return withScheme(strings.TrimSuffix(endpoint, "/")), nil
}
