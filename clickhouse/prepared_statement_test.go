package clickhouse

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnection_Prepare(t *testing.T) {
	connection := &Connection{}

	tests := []struct {
		name        string
		query       string
		paramCount  int
		expectError bool
		errorMsg    string
	}{
		{
			name:       "Valid query with single parameter",
			query:      "SELECT * FROM events WHERE id = ?",
			paramCount: 1,
		},
		{
			name:       "Valid query with multiple parameters",
			query:      "SELECT * FROM events WHERE id = ? AND name = ? AND age > ?",
			paramCount: 3,
		},
		{
			name:       "Question marks inside literals are not placeholders",
			query:      "SELECT * FROM events WHERE note = 'why?' AND `odd?col` = ? AND id = ?",
			paramCount: 2,
		},
		{
			name:        "Empty query",
			query:       "",
			expectError: true,
			errorMsg:    "query template cannot be empty",
		},
		{
			name:        "Query without parameters",
			query:       "SELECT * FROM events",
			expectError: true,
			errorMsg:    "query template must contain at least one parameter placeholder (?)",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			stmt, err := connection.Prepare(test.query)

			if test.expectError {
				assert.Error(t, err)
				assert.Nil(t, stmt)
				if test.errorMsg != "" {
					assert.Contains(t, err.Error(), test.errorMsg)
				}
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, stmt)
				assert.Equal(t, test.query, stmt.GetQuery())
				assert.Equal(t, test.paramCount, stmt.GetParameterCount())
			}
		})
	}
}

func TestPreparedStatement_SetParameters(t *testing.T) {
	connection := &Connection{}
	stmt, err := connection.Prepare("SELECT * FROM events WHERE id = ? AND name = ?")
	assert.NoError(t, err)

	assert.NoError(t, stmt.SetInt(1, 123))
	assert.NoError(t, stmt.SetString(2, "testName"))

	err = stmt.SetInt(0, 123)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parameter index 0 is out of range")

	err = stmt.SetInt(3, 123)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parameter index 3 is out of range")

	assert.NoError(t, stmt.ClearParameters())
	_, err = stmt.Execute()
	assert.EqualError(t, err, "parameter at index 1 is not set")

	assert.NoError(t, stmt.Close())
	assert.EqualError(t, stmt.SetInt(1, 1), "prepared statement is closed")
	_, err = stmt.Execute()
	assert.EqualError(t, err, "prepared statement is closed")
	_, err = stmt.ExecuteWithParams(1, "x")
	assert.EqualError(t, err, "prepared statement is closed")
	assert.EqualError(t, stmt.ClearParameters(), "prepared statement is closed")
}

func TestPreparedStatement_Execute(t *testing.T) {
	var queries []string
	conn := newMockConnection(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("query"))
		fmt.Fprint(w, "id\tname\n1\to'brien\n")
	})
	stmt, err := conn.Prepare("SELECT id, name FROM events WHERE id = ? AND name = ? AND ts > ?")
	require.NoError(t, err)

	require.NoError(t, stmt.SetInt64(1, 1))
	require.NoError(t, stmt.SetString(2, "o'brien"))
	require.NoError(t, stmt.SetTime(3, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	result, err := stmt.Execute()
	require.NoError(t, err)
	assert.Equal(t, "o'brien", result.Table.Get(0, 1))

	_, err = stmt.ExecuteWithParams(2, "x", "2024-01-01")
	require.NoError(t, err)

	_, err = stmt.ExecuteWithParams(2)
	assert.EqualError(t, err, "failed to build query: expected 3 parameters, got 1")

	assert.Equal(t, []string{
		"SELECT id, name FROM events WHERE id = 1 AND name = 'o\\'brien' AND ts > '2024-01-02 03:04:05' format TabSeparatedWithNames",
		"SELECT id, name FROM events WHERE id = 2 AND name = 'x' AND ts > '2024-01-01' format TabSeparatedWithNames",
	}, queries)
}

func TestPreparedStatementWithOptions(t *testing.T) {
	conn := newMockConnection(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Query().Get("query"), "format CSVWithNames"))
		fmt.Fprint(w, "id\n1\n")
	})
	stmt, err := conn.Prepare("SELECT id FROM events WHERE id = ?", WithFormat(FormatCSVWithNames), WithRaw())
	require.NoError(t, err)
	result, err := stmt.ExecuteWithParams(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("id\n1\n"), result.Raw)
}

func TestBindParams(t *testing.T) {
	query, err := BindParams("SELECT * FROM t WHERE a = ? AND b IN ? AND c = ? AND d = ? AND e = ?",
		nil, []string{"x", "y"}, true, 1.5, uint8(3))
	assert.Nil(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = NULL AND b IN ['x', 'y'] AND c = true AND d = 1.5 AND e = 3", query)

	name := "n"
	var missing *string
	query, err = BindParams("SELECT ?, ?", &name, missing)
	assert.Nil(t, err)
	assert.Equal(t, "SELECT 'n', NULL", query)

	query, err = BindParams("SELECT 'a\\'?' AS s, ?", `back\slash`)
	assert.Nil(t, err)
	assert.Equal(t, "SELECT 'a\\'?' AS s, 'back\\\\slash'", query)

	query, err = BindParams("SELECT 1")
	assert.Nil(t, err)
	assert.Equal(t, "SELECT 1", query)

	_, err = BindParams("SELECT ?", struct{}{})
	assert.EqualError(t, err, "failed to format parameter at index 1: unsupported parameter type struct {}")

	_, err = BindParams("SELECT ?, ?", 1)
	assert.EqualError(t, err, "expected 2 parameters, got 1")
}
