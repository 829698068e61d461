package gormclickhouse

import (
	"context"
	"database/sql/driver"
	"errors"
	"reflect"

	"github.com/chconnect/clickhouse-client-go/clickhouse"
)

var errNoTransactions = errors.New("clickhouse does not support transactions")

type connector struct {
	conn *clickhouse.Connection
}

func newConnector(conn *clickhouse.Connection) *connector {
	return &connector{conn: conn}
}

func (c *connector) Connect(context.Context) (driver.Conn, error) {
	return &clickhouseConn{conn: c.conn}, nil
}

func (c *connector) Driver() driver.Driver {
	return clickhouseDriver{}
}

type clickhouseDriver struct{}

func (clickhouseDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("clickhouse driver requires a Connector")
}

type clickhouseConn struct {
	conn *clickhouse.Connection
}

func (c *clickhouseConn) Prepare(query string) (driver.Stmt, error) {
	return &clickhouseStmt{conn: c, query: query}, nil
}

func (c *clickhouseConn) Close() error {
	return nil
}

func (c *clickhouseConn) Begin() (driver.Tx, error) {
	return nil, errNoTransactions
}

func (c *clickhouseConn) PrepareContext(_ context.Context, query string) (driver.Stmt, error) {
	return c.Prepare(query)
}

// CheckNamedValue passes slices through untouched so they bind as ClickHouse
// arrays. Everything else goes through the default conversion.
func (c *clickhouseConn) CheckNamedValue(nv *driver.NamedValue) error {
	if _, ok := nv.Value.(driver.Valuer); ok {
		return driver.ErrSkip
	}
	if _, ok := nv.Value.([]byte); ok {
		return driver.ErrSkip
	}
	switch reflect.ValueOf(nv.Value).Kind() {
	case reflect.Slice, reflect.Array:
		return nil
	default:
		return driver.ErrSkip
	}
}

func (c *clickhouseConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	bound, err := clickhouse.BindParams(query, namedValuesToInterfaces(args)...)
	if err != nil {
		return nil, err
	}
	if isReadQuery(bound) {
		_, err = c.conn.QueryContext(ctx, bound, clickhouse.WithFormat(clickhouse.FormatTabSeparatedWithNamesAndTypes), clickhouse.WithRaw())
	} else {
		err = c.conn.ExecContext(ctx, bound)
	}
	if err != nil {
		return nil, err
	}
	return clickhouseResult{}, nil
}

func (c *clickhouseConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	bound, err := clickhouse.BindParams(query, namedValuesToInterfaces(args)...)
	if err != nil {
		return nil, err
	}
	if !isReadQuery(bound) {
		if err := c.conn.ExecContext(ctx, bound); err != nil {
			return nil, err
		}
		return &resultRows{}, nil
	}
	result, err := c.conn.QueryContext(ctx, bound,
		clickhouse.WithFormat(clickhouse.FormatTabSeparatedWithNamesAndTypes),
		clickhouse.WithKind(clickhouse.KindRead),
	)
	if err != nil {
		return nil, err
	}
	if !result.IsTable() {
		return nil, errors.New("clickhouse response did not include a result set")
	}
	return newTableRows(result.Table), nil
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

type clickhouseStmt struct {
	conn  *clickhouseConn
	query string
}

func (s *clickhouseStmt) Close() error {
	return nil
}

func (s *clickhouseStmt) NumInput() int {
	return -1
}

func (s *clickhouseStmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), valuesToNamed(args))
}

func (s *clickhouseStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	return s.conn.ExecContext(ctx, s.query, args)
}

func (s *clickhouseStmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), valuesToNamed(args))
}

func (s *clickhouseStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	return s.conn.QueryContext(ctx, s.query, args)
}

// clickhouseResult reports no ids: ClickHouse has no auto increment columns.
type clickhouseResult struct {
	rowsAffected int64
}

func (r clickhouseResult) LastInsertId() (int64, error) {
	return 0, nil
}

func (r clickhouseResult) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}

func namedValuesToInterfaces(args []driver.NamedValue) []interface{} {
	if len(args) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(args))
	for _, arg := range args {
		values = append(values, arg.Value)
	}
	return values
}

func valuesToNamed(args []driver.Value) []driver.NamedValue {
	if len(args) == 0 {
		return nil
	}
	named := make([]driver.NamedValue, 0, len(args))
	for i, arg := range args {
		named = append(named, driver.NamedValue{Ordinal: i + 1, Value: arg})
	}
	return named
}

func isReadQuery(query string) bool {
	return clickhouse.ClassifyStatement(query) == clickhouse.KindRead
}
