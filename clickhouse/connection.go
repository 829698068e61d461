package clickhouse

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	enableHTTPCompressionParam = "enable_http_compression"
	defaultCluster             = "ba"
	defaultUsername            = "user"
	defaultPassword            = "pass"
)

// Connection to ClickHouse, normally created through calls to the factory functions
// in connectionFactory.go. A Connection may be shared between goroutines.
type Connection struct {
	transport   clientTransport
	endpoint    string
	cluster     string
	compression Compression
}

// Endpoint returns the base URL every request is sent to.
func (c *Connection) Endpoint() string {
	return c.endpoint
}

// Close releases the idle connections held by the underlying HTTP client.
func (c *Connection) Close() error {
	c.transport.close()
	return nil
}

// Ping issues SELECT 1 and returns the round-trip latency.
func (c *Connection) Ping() (time.Duration, error) {
	return c.PingContext(context.Background())
}

// PingContext is Ping with a caller supplied context.
func (c *Connection) PingContext(ctx context.Context) (time.Duration, error) {
	resp, err := c.do(ctx, &Request{method: http.MethodGet, query: "SELECT 1"})
	if err != nil {
		return 0, err
	}
	log.Infof("Pinging %s: %v", c.endpoint, resp.Elapsed)
	return resp.Elapsed, nil
}

// ShowDatabases returns the raw response of SHOW DATABASES.
func (c *Connection) ShowDatabases() (string, error) {
	resp, err := c.do(context.Background(), &Request{method: http.MethodGet, query: "SHOW DATABASES"})
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

// ShowTables returns the raw response of SHOW TABLES FROM database.
func (c *Connection) ShowTables(database string) (string, error) {
	resp, err := c.do(context.Background(), &Request{query: "SHOW TABLES FROM " + database})
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

// Query runs query with " format <format>" appended. The response is parsed into
// a Table when the query is row-producing and WithRaw is not set, otherwise the
// raw bytes are returned.
func (c *Connection) Query(query string, opts ...Option) (*QueryResult, error) {
	return c.QueryContext(context.Background(), query, opts...)
}

// QueryContext is Query with a caller supplied context.
func (c *Connection) QueryContext(ctx context.Context, query string, opts ...Option) (*QueryResult, error) {
	o, err := buildOptions(defaultQueryFormat, opts)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, &Request{query: formattedQuery(query, o.format)})
	if err != nil {
		return nil, err
	}
	return toResult(query, resp.Body, o)
}

// Select runs query and always parses the response into a Table.
func (c *Connection) Select(query string, opts ...Option) (*Table, error) {
	return c.SelectContext(context.Background(), query, opts...)
}

// SelectContext is Select with a caller supplied context.
func (c *Connection) SelectContext(ctx context.Context, query string, opts ...Option) (*Table, error) {
	o, err := buildOptions(defaultQueryFormat, opts)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, &Request{query: formattedQuery(query, o.format)})
	if err != nil {
		return nil, err
	}
	return decodeTable(o.format, resp.Body)
}

// QueryCompressed is Query with a compressed response body.
func (c *Connection) QueryCompressed(query string, opts ...Option) (*QueryResult, error) {
	return c.QueryCompressedContext(context.Background(), query, opts...)
}

// QueryCompressedContext is QueryCompressed with a caller supplied context.
func (c *Connection) QueryCompressedContext(ctx context.Context, query string, opts ...Option) (*QueryResult, error) {
	o, err := buildOptions(defaultQueryFormat, opts)
	if err != nil {
		return nil, err
	}
	compression, err := c.compressionFor(o)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, &Request{
		query:  formattedQuery(query, o.format),
		params: map[string]string{enableHTTPCompressionParam: "1"},
		header: map[string]string{"Accept-Encoding": string(compression)},
	})
	if err != nil {
		return nil, err
	}
	return toResult(query, resp.Body, o)
}

// Insert sends data to table, serialized in the given format (CSV by default)
// without header row or row index.
func (c *Connection) Insert(table string, data *Table, opts ...Option) error {
	return c.InsertContext(context.Background(), table, data, opts...)
}

// InsertContext is Insert with a caller supplied context.
func (c *Connection) InsertContext(ctx context.Context, table string, data *Table, opts ...Option) error {
	o, err := buildOptions(defaultInsertFormat, opts)
	if err != nil {
		return err
	}
	payload, err := encodeTable(o.format, data)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, &Request{
		query: insertQuery(table, o.format),
		body:  payload,
	})
	return err
}

// InsertCompressed is Insert with a compressed request body.
func (c *Connection) InsertCompressed(table string, data *Table, opts ...Option) error {
	return c.InsertCompressedContext(context.Background(), table, data, opts...)
}

// InsertCompressedContext is InsertCompressed with a caller supplied context.
func (c *Connection) InsertCompressedContext(ctx context.Context, table string, data *Table, opts ...Option) error {
	o, err := buildOptions(defaultInsertFormat, opts)
	if err != nil {
		return err
	}
	compression, err := c.compressionFor(o)
	if err != nil {
		return err
	}
	payload, err := encodeTable(o.format, data)
	if err != nil {
		return err
	}
	compressed, err := compressPayload(payload, compression)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, &Request{
		query:  insertQuery(table, o.format),
		params: map[string]string{enableHTTPCompressionParam: "1"},
		header: map[string]string{"Content-Encoding": string(compression)},
		body:   compressed,
	})
	return err
}

// ClearTable truncates table on the configured cluster.
func (c *Connection) ClearTable(table string) error {
	return c.Exec(truncateQuery(table, c.cluster))
}

// Exec runs a statement and discards the response body.
func (c *Connection) Exec(query string) error {
	return c.ExecContext(context.Background(), query)
}

// ExecContext is Exec with a caller supplied context.
func (c *Connection) ExecContext(ctx context.Context, query string) error {
	_, err := c.do(ctx, &Request{query: query})
	return err
}

func (c *Connection) do(ctx context.Context, request *Request) (*Response, error) {
	resp, err := c.transport.execute(ctx, request)
	if err != nil {
		log.Errorf("Caught exception to execute query %s, Error: %v", request.query, err)
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		log.Errorf("Query %s failed, Error: %v", request.query, err)
		return nil, err
	}
	return resp, nil
}

func (c *Connection) compressionFor(o *requestOptions) (Compression, error) {
	compression := c.compression
	if o.compression != nil {
		compression = *o.compression
	}
	compression, err := ParseCompression(string(compression))
	if err != nil {
		return "", err
	}
	if compression == CompressionNone {
		return "", fmt.Errorf("%w: a compressed request needs a codec", ErrUnsupportedCompression)
	}
	return compression, nil
}

func checkStatus(resp *Response) error {
	if resp.StatusCode != http.StatusOK {
		return &RequestError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	return nil
}

func toResult(query string, body []byte, o *requestOptions) (*QueryResult, error) {
	if o.rowProducing(query) && !o.raw {
		table, err := decodeTable(o.format, body)
		if err != nil {
			return nil, err
		}
		return &QueryResult{Table: table}, nil
	}
	return &QueryResult{Raw: body}, nil
}

func formattedQuery(query string, format Format) string {
	return query + " format " + string(format)
}

func insertQuery(table string, format Format) string {
	return fmt.Sprintf("INSERT INTO %s FORMAT %s", table, format)
}

func truncateQuery(table string, cluster string) string {
	if cluster == "" {
		return "TRUNCATE TABLE " + table
	}
	return fmt.Sprintf("TRUNCATE TABLE %s ON CLUSTER %s", table, cluster)
}
