package clickhouse

import "context"

type clientTransport interface {
	execute(ctx context.Context, request *Request) (*Response, error)
	close()
}
