package clickhouse

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

func decodeCSVWithNames(body []byte) (*Table, error) {
	records, err := readCSV(body)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no header line in response")
	}
	return buildTable(fieldTexts(records[0]), nil, records[1:])
}

func decodeCSVWithNamesAndTypes(body []byte) (*Table, error) {
	records, err := readCSV(body)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("missing header lines in response, expected names and types")
	}
	return buildTable(fieldTexts(records[0]), fieldTexts(records[1]), records[2:])
}

func readCSV(body []byte) ([][]field, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	var records [][]field
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		record := make([]field, len(cells))
		for i, cell := range cells {
			if cell == nullText {
				record[i] = field{null: true}
			} else {
				record[i] = field{text: cell}
			}
		}
		records = append(records, record)
	}
}

// encodeCSV writes rows only: no header row and no row index.
// nil is written as \N. A string that is exactly \N is written the same way
// and ClickHouse stores NULL for it; TabSeparated keeps such strings.
func encodeCSV(data *Table) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	record := make([]string, data.GetColumnCount())
	for r := 0; r < data.GetRowCount(); r++ {
		for c := range data.Columns {
			v := data.Columns[c].Values[r]
			if v == nil {
				record[c] = nullText
				continue
			}
			record[c] = formatText(v)
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
