package clickhouse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

func decodeJSONCompactEachRowWithNames(body []byte) (*Table, error) {
	rows, err := readJSONCompactRows(body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no header row in response")
	}
	names, err := jsonHeader(rows[0])
	if err != nil {
		return nil, err
	}
	return buildJSONTable(names, nil, rows[1:])
}

func decodeJSONCompactEachRowWithNamesAndTypes(body []byte) (*Table, error) {
	rows, err := readJSONCompactRows(body)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("missing header rows in response, expected names and types")
	}
	names, err := jsonHeader(rows[0])
	if err != nil {
		return nil, err
	}
	types, err := jsonHeader(rows[1])
	if err != nil {
		return nil, err
	}
	return buildJSONTable(names, types, rows[2:])
}

func readJSONCompactRows(body []byte) ([][]interface{}, error) {
	var rows [][]interface{}
	err := decodeJSONStream(body, func() interface{} {
		rows = append(rows, nil)
		return &rows[len(rows)-1]
	})
	if err != nil {
		return nil, err
	}
	// the last slot was allocated for the terminating EOF
	return rows[:len(rows)-1], nil
}

func jsonHeader(row []interface{}) ([]string, error) {
	header := make([]string, len(row))
	for i, v := range row {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("header entry %d is %T, expected string", i+1, v)
		}
		header[i] = s
	}
	return header, nil
}

func buildJSONTable(names []string, types []string, rows [][]interface{}) (*Table, error) {
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("row %d has %d fields, expected %d", i+1, len(row), len(names))
		}
	}
	table := NewTable(names...)
	for c := range table.Columns {
		if types != nil {
			table.Columns[c].Type = types[c]
		}
		values := make([]interface{}, len(rows))
		for r, row := range rows {
			v, err := convertJSONValue(row[c], table.Columns[c].Type)
			if err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", names[c], r+1, err)
			}
			values[r] = v
		}
		table.Columns[c].Values = values
		if types == nil {
			table.Columns[c].Type = inferValueType(values)
		}
	}
	return table, nil
}

// convertJSONValue maps decoded JSON onto the Go value of the column type.
// 64-bit integers arrive quoted by default, so strings go through convertText.
func convertJSONValue(v interface{}, chType string) (interface{}, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		if chType == "" {
			if n, err := val.Int64(); err == nil {
				return n, nil
			}
			return val.Float64()
		}
		return convertText(field{text: val.String()}, chType)
	case string:
		if chType == "" {
			return val, nil
		}
		return convertText(field{text: val}, chType)
	default:
		return val, nil
	}
}

// encodeJSONEachRow writes one JSON object per row, keys in column order.
func encodeJSONEachRow(data *Table) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	keys := make([][]byte, data.GetColumnCount())
	for i, name := range data.ColumnNames() {
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}
	var buf bytes.Buffer
	for r := 0; r < data.GetRowCount(); r++ {
		buf.WriteByte('{')
		for c := range data.Columns {
			if c > 0 {
				buf.WriteByte(',')
			}
			buf.Write(keys[c])
			buf.WriteByte(':')
			value, err := marshalJSONValue(data.Columns[c].Values[r])
			if err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", data.Columns[c].Name, r+1, err)
			}
			buf.Write(value)
		}
		buf.WriteString("}\n")
	}
	return buf.Bytes(), nil
}

func marshalJSONValue(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case time.Time:
		return json.Marshal(formatTime(val))
	case []byte:
		return json.Marshal(string(val))
	case uint64:
		return []byte(strconv.FormatUint(val, 10)), nil
	default:
		return json.Marshal(v)
	}
}
