package clickhouse

import "time"

// Request is one HTTP round trip against the ClickHouse endpoint.
type Request struct {
	method string
	query  string
	params map[string]string
	header map[string]string
	body   []byte
}

// Response holds the decoded body of a ClickHouse HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Elapsed    time.Duration
}
