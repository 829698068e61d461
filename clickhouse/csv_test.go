package clickhouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCSVWithNames(t *testing.T) {
	table, err := decodeCSVWithNames([]byte("\"id\",\"name\",\"score\"\n1,\"a, b\",0.5\n2,\\N,1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "score"}, table.ColumnNames())
	assert.Equal(t, []interface{}{int64(1), "a, b", 0.5}, table.Row(0))
	assert.Equal(t, []interface{}{int64(2), nil, 1.0}, table.Row(1))
}

func TestDecodeCSVWithNamesAndTypes(t *testing.T) {
	table, err := decodeCSVWithNamesAndTypes([]byte("id,name\nUInt8,String\n7,007\n"))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(7), "007"}, table.Row(0))
	assert.Equal(t, "UInt8", table.GetColumnType(0))
}

func TestDecodeCSVErrors(t *testing.T) {
	_, err := decodeCSVWithNames(nil)
	assert.EqualError(t, err, "no header line in response")
	_, err = decodeCSVWithNames([]byte("a,b\n1\n"))
	assert.NotNil(t, err)
	_, err = decodeCSVWithNamesAndTypes([]byte("a,b\n"))
	assert.NotNil(t, err)
}

func TestEncodeCSV(t *testing.T) {
	table := NewTable("id", "name", "ts", "flag", "missing")
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, table.AppendRow(int64(1), "plain", ts, true, nil))
	require.NoError(t, table.AppendRow(uint64(2), "with \"quotes\"", ts.Add(500*time.Millisecond), false, nil))
	payload, err := encodeCSV(table)
	require.NoError(t, err)
	assert.Equal(t,
		"1,plain,2024-03-01 12:30:00,true,\\N\n"+
			"2,\"with \"\"quotes\"\"\",2024-03-01 12:30:00.5,false,\\N\n",
		string(payload))
}

func TestEncodeCSVNullLiteralString(t *testing.T) {
	table := NewTable("text")
	require.NoError(t, table.AppendRow(`\N`))
	require.NoError(t, table.AppendRow(nil))
	payload, err := encodeCSV(table)
	require.NoError(t, err)
	assert.Equal(t, "\\N\n\\N\n", string(payload))

	tsv, err := encodeTabSeparated(table)
	require.NoError(t, err)
	assert.NotEqual(t, payload, tsv)
}

func TestEncodeCSVEmptyTable(t *testing.T) {
	payload, err := encodeCSV(NewTable("id"))
	require.NoError(t, err)
	assert.Empty(t, payload)
}
