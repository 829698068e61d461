package clickhouse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONCompactEachRowWithNames(t *testing.T) {
	body := "[\"id\",\"name\",\"score\",\"ok\"]\n[1,\"a\",0.5,true]\n[2,null,1.5,false]\n"
	table, err := decodeJSONCompactEachRowWithNames([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "score", "ok"}, table.ColumnNames())
	assert.Equal(t, []string{"Int64", "String", "Float64", "Bool"}, []string{
		table.GetColumnType(0), table.GetColumnType(1), table.GetColumnType(2), table.GetColumnType(3),
	})
	assert.Equal(t, []interface{}{int64(1), "a", 0.5, true}, table.Row(0))
	assert.Equal(t, []interface{}{int64(2), nil, 1.5, false}, table.Row(1))
}

func TestDecodeJSONCompactEachRowWithNamesAndTypes(t *testing.T) {
	body := "[\"id\",\"big\",\"name\"]\n[\"UInt32\",\"UInt64\",\"String\"]\n[1,\"18446744073709551615\",\"x\"]\n"
	table, err := decodeJSONCompactEachRowWithNamesAndTypes([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(1), uint64(18446744073709551615), "x"}, table.Row(0))
	assert.Equal(t, "UInt64", table.GetColumnType(1))
}

func TestDecodeJSONCompactEachRowErrors(t *testing.T) {
	_, err := decodeJSONCompactEachRowWithNames(nil)
	assert.EqualError(t, err, "no header row in response")

	_, err = decodeJSONCompactEachRowWithNames([]byte("[1,2]\n"))
	assert.EqualError(t, err, "header entry 1 is json.Number, expected string")

	_, err = decodeJSONCompactEachRowWithNames([]byte("[\"a\"]\n[1,2]\n"))
	assert.EqualError(t, err, "row 1 has 2 fields, expected 1")

	_, err = decodeJSONCompactEachRowWithNames([]byte("[\"a\"]\n[1"))
	assert.NotNil(t, err)

	_, err = decodeJSONCompactEachRowWithNamesAndTypes([]byte("[\"a\"]\n"))
	assert.NotNil(t, err)
}

func TestEncodeJSONEachRow(t *testing.T) {
	table := NewTable("id", "big", "name", "ts", "raw", "missing")
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, table.AppendRow(1, uint64(18446744073709551615), "quote \"me\"", ts, []byte("bytes"), nil))
	payload, err := encodeJSONEachRow(table)
	require.NoError(t, err)
	assert.Equal(t,
		"{\"id\":1,\"big\":18446744073709551615,\"name\":\"quote \\\"me\\\"\",\"ts\":\"2024-03-01 12:30:00\",\"raw\":\"bytes\",\"missing\":null}\n",
		string(payload))
}

func TestDecodeJSONWithNumber(t *testing.T) {
	var out map[string]interface{}
	assert.Nil(t, decodeJSONWithNumber([]byte(`{"n": 9007199254740993}`), &out))
	assert.Equal(t, json.Number("9007199254740993"), out["n"])
}
