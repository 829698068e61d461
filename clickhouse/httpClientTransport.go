package clickhouse

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	defaultHTTPHeader = map[string]string{
		"Content-Type": "text/plain; charset=utf-8",
	}
)

// HTTPClient is an interface for http.Client
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// httpClientTransport is the impl of clientTransport
type httpClientTransport struct {
	client   HTTPClient
	baseURL  string
	username string
	password string
	database string
	settings map[string]string
	header   map[string]string
}

func (t *httpClientTransport) execute(ctx context.Context, request *Request) (*Response, error) {
	req, err := t.createHTTPRequest(ctx, request)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		log.Error("Got exceptions during sending request. ", err)
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Error("Unable to close response body. ", err)
		}
	}()
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Unable to read ClickHouse response. ", err)
		return nil, err
	}
	elapsed := time.Since(start)
	if !resp.Uncompressed {
		bodyBytes, err = decompressPayload(bodyBytes, resp.Header.Get("Content-Encoding"))
		if err != nil {
			log.Error("Unable to decompress ClickHouse response. ", err)
			return nil, err
		}
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
		Elapsed:    elapsed,
	}, nil
}

func (t *httpClientTransport) close() {
	if c, ok := t.client.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}

func (t *httpClientTransport) createHTTPRequest(ctx context.Context, request *Request) (*http.Request, error) {
	method := request.method
	if method == "" {
		method = http.MethodPost
	}
	var body io.Reader
	if request.body != nil {
		body = bytes.NewReader(request.body)
	}
	r, err := http.NewRequestWithContext(ctx, method, t.requestURL(request), body)
	if err != nil {
		log.Error("Invalid HTTP Request", err)
		return nil, err
	}
	r.SetBasicAuth(t.username, t.password)
	for k, v := range defaultHTTPHeader {
		r.Header.Set(k, v)
	}
	for k, v := range t.header {
		r.Header.Set(k, v)
	}
	for k, v := range request.header {
		r.Header.Set(k, v)
	}
	return r, nil
}

func (t *httpClientTransport) requestURL(request *Request) string {
	values := url.Values{}
	for k, v := range t.settings {
		values.Set(k, v)
	}
	if t.database != "" {
		values.Set("database", t.database)
	}
	for k, v := range request.params {
		values.Set(k, v)
	}
	values.Set("query", request.query)
	return t.baseURL + "/?" + values.Encode()
}
