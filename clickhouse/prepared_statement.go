package clickhouse

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// PreparedStatement represents a prepared statement with bind variables that can be executed multiple times
// with different parameter values. Parameters are bound on the client side.
type PreparedStatement interface {
	// SetString sets the parameter at the given index to the given string value
	SetString(parameterIndex int, value string) error

	// SetInt sets the parameter at the given index to the given int value
	SetInt(parameterIndex int, value int) error

	// SetInt64 sets the parameter at the given index to the given int64 value
	SetInt64(parameterIndex int, value int64) error

	// SetFloat64 sets the parameter at the given index to the given float64 value
	SetFloat64(parameterIndex int, value float64) error

	// SetBool sets the parameter at the given index to the given bool value
	SetBool(parameterIndex int, value bool) error

	// SetTime sets the parameter at the given index to the given time value
	SetTime(parameterIndex int, value time.Time) error

	// Set sets the parameter at the given index to the given value (any supported type)
	Set(parameterIndex int, value interface{}) error

	// Execute executes the prepared statement with the currently set parameters
	Execute() (*QueryResult, error)

	// ExecuteWithParams executes the prepared statement with the given parameters
	ExecuteWithParams(params ...interface{}) (*QueryResult, error)

	// GetQuery returns the original query template
	GetQuery() string

	// GetParameterCount returns the number of parameters in the prepared statement
	GetParameterCount() int

	// ClearParameters clears all currently set parameters
	ClearParameters() error

	// Close closes the prepared statement and releases any associated resources
	Close() error
}

type preparedStatement struct {
	connection    *Connection
	queryTemplate string
	queryParts    []string
	options       []Option
	parameters    []interface{}
	set           []bool
	mutex         sync.RWMutex
	closed        bool
}

// Prepare creates a new PreparedStatement for the given query template.
// The query template should use '?' as placeholders for parameters, e.g.
// "SELECT * FROM events WHERE id = ? AND name = ?". The options apply to every execution.
func (c *Connection) Prepare(queryTemplate string, opts ...Option) (PreparedStatement, error) {
	if queryTemplate == "" {
		return nil, fmt.Errorf("query template cannot be empty")
	}
	parts := splitPlaceholders(queryTemplate)
	paramCount := len(parts) - 1
	if paramCount == 0 {
		return nil, fmt.Errorf("query template must contain at least one parameter placeholder (?)")
	}
	return &preparedStatement{
		connection:    c,
		queryTemplate: queryTemplate,
		queryParts:    parts,
		options:       opts,
		parameters:    make([]interface{}, paramCount),
		set:           make([]bool, paramCount),
	}, nil
}

func (ps *preparedStatement) SetString(parameterIndex int, value string) error {
	return ps.Set(parameterIndex, value)
}

func (ps *preparedStatement) SetInt(parameterIndex int, value int) error {
	return ps.Set(parameterIndex, value)
}

func (ps *preparedStatement) SetInt64(parameterIndex int, value int64) error {
	return ps.Set(parameterIndex, value)
}

func (ps *preparedStatement) SetFloat64(parameterIndex int, value float64) error {
	return ps.Set(parameterIndex, value)
}

func (ps *preparedStatement) SetBool(parameterIndex int, value bool) error {
	return ps.Set(parameterIndex, value)
}

func (ps *preparedStatement) SetTime(parameterIndex int, value time.Time) error {
	return ps.Set(parameterIndex, value)
}

func (ps *preparedStatement) Set(parameterIndex int, value interface{}) error {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	if ps.closed {
		return fmt.Errorf("prepared statement is closed")
	}
	if parameterIndex < 1 || parameterIndex > len(ps.parameters) {
		return fmt.Errorf("parameter index %d is out of range [1, %d]", parameterIndex, len(ps.parameters))
	}
	ps.parameters[parameterIndex-1] = value
	ps.set[parameterIndex-1] = true
	return nil
}

func (ps *preparedStatement) Execute() (*QueryResult, error) {
	ps.mutex.RLock()
	if ps.closed {
		ps.mutex.RUnlock()
		return nil, fmt.Errorf("prepared statement is closed")
	}
	for i, isSet := range ps.set {
		if !isSet {
			ps.mutex.RUnlock()
			return nil, fmt.Errorf("parameter at index %d is not set", i+1)
		}
	}
	query, err := joinPlaceholders(ps.queryParts, ps.parameters)
	ps.mutex.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return ps.connection.QueryContext(context.Background(), query, ps.options...)
}

func (ps *preparedStatement) ExecuteWithParams(params ...interface{}) (*QueryResult, error) {
	ps.mutex.RLock()
	if ps.closed {
		ps.mutex.RUnlock()
		return nil, fmt.Errorf("prepared statement is closed")
	}
	query, err := joinPlaceholders(ps.queryParts, params)
	ps.mutex.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return ps.connection.QueryContext(context.Background(), query, ps.options...)
}

func (ps *preparedStatement) GetQuery() string {
	return ps.queryTemplate
}

func (ps *preparedStatement) GetParameterCount() int {
	return len(ps.queryParts) - 1
}

func (ps *preparedStatement) ClearParameters() error {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	if ps.closed {
		return fmt.Errorf("prepared statement is closed")
	}
	for i := range ps.parameters {
		ps.parameters[i] = nil
		ps.set[i] = false
	}
	return nil
}

func (ps *preparedStatement) Close() error {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	ps.closed = true
	ps.parameters = nil
	ps.set = nil
	return nil
}

// BindParams replaces every '?' placeholder outside quotes with the SQL literal
// of the matching parameter.
func BindParams(query string, params ...interface{}) (string, error) {
	return joinPlaceholders(splitPlaceholders(query), params)
}

// splitPlaceholders splits query on '?' characters that are not inside a
// quoted string or identifier.
func splitPlaceholders(query string) []string {
	var parts []string
	var quote byte
	start := 0
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case quote != 0 && ch == '\\':
			i++
		case quote != 0 && ch == quote:
			quote = 0
		case quote != 0:
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
		case ch == '?':
			parts = append(parts, query[start:i])
			start = i + 1
		}
	}
	return append(parts, query[start:])
}

func joinPlaceholders(parts []string, params []interface{}) (string, error) {
	if len(params) != len(parts)-1 {
		return "", fmt.Errorf("expected %d parameters, got %d", len(parts)-1, len(params))
	}
	var query strings.Builder
	for i, part := range parts[:len(parts)-1] {
		query.WriteString(part)
		formattedParam, err := formatArg(params[i])
		if err != nil {
			return "", fmt.Errorf("failed to format parameter at index %d: %w", i+1, err)
		}
		query.WriteString(formattedParam)
	}
	query.WriteString(parts[len(parts)-1])
	return query.String(), nil
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quoteString(s string) string {
	return "'" + literalEscaper.Replace(s) + "'"
}

// formatArg renders a Go value as a ClickHouse SQL literal.
func formatArg(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "NULL", nil
	case string:
		return quoteString(v), nil
	case []byte:
		return quoteString(string(v)), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return formatFloat(float64(v), 32), nil
	case float64:
		return formatFloat(v, 64), nil
	case time.Time:
		return quoteString(formatTime(v)), nil
	case *time.Time:
		if v == nil {
			return "NULL", nil
		}
		return quoteString(formatTime(*v)), nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := formatArg(rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			items[i] = item
		}
		return "[" + strings.Join(items, ", ") + "]", nil
	case reflect.Ptr:
		if rv.IsNil() {
			return "NULL", nil
		}
		return formatArg(rv.Elem().Interface())
	default:
		return "", fmt.Errorf("unsupported parameter type %T", value)
	}
}
