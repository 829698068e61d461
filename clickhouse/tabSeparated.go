package clickhouse

import (
	"bytes"
	"fmt"
	"strings"
)

var tabSeparatedEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\t", `\t`,
	"\n", `\n`,
	"\r", `\r`,
	"\x00", `\0`,
	"\b", `\b`,
	"\f", `\f`,
)

func decodeTabSeparatedWithNames(body []byte) (*Table, error) {
	records, err := readTabSeparated(body)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no header line in response")
	}
	return buildTable(fieldTexts(records[0]), nil, records[1:])
}

func decodeTabSeparatedWithNamesAndTypes(body []byte) (*Table, error) {
	records, err := readTabSeparated(body)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("missing header lines in response, expected names and types")
	}
	return buildTable(fieldTexts(records[0]), fieldTexts(records[1]), records[2:])
}

func readTabSeparated(body []byte) ([][]field, error) {
	body = bytes.TrimSuffix(body, []byte("\n"))
	if len(body) == 0 {
		return nil, nil
	}
	lines := bytes.Split(body, []byte("\n"))
	records := make([][]field, len(lines))
	for i, line := range lines {
		cells := bytes.Split(line, []byte("\t"))
		record := make([]field, len(cells))
		for j, cell := range cells {
			f, err := unescapeTabSeparated(string(cell))
			if err != nil {
				return nil, fmt.Errorf("line %d field %d: %w", i+1, j+1, err)
			}
			record[j] = f
		}
		records[i] = record
	}
	return records, nil
}

func unescapeTabSeparated(cell string) (field, error) {
	if cell == nullText {
		return field{null: true}, nil
	}
	if !strings.Contains(cell, `\`) {
		return field{text: cell}, nil
	}
	var sb strings.Builder
	for i := 0; i < len(cell); i++ {
		ch := cell[i]
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}
		i++
		if i == len(cell) {
			return field{}, fmt.Errorf("dangling escape in %q", cell)
		}
		switch cell[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'a':
			sb.WriteByte('\a')
		case 'v':
			sb.WriteByte('\v')
		default:
			sb.WriteByte(cell[i])
		}
	}
	return field{text: sb.String()}, nil
}

func fieldTexts(record []field) []string {
	texts := make([]string, len(record))
	for i, f := range record {
		texts[i] = f.text
	}
	return texts
}

func encodeTabSeparated(data *Table) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for r := 0; r < data.GetRowCount(); r++ {
		for c := range data.Columns {
			if c > 0 {
				buf.WriteByte('\t')
			}
			v := data.Columns[c].Values[r]
			if v == nil {
				buf.WriteString(nullText)
				continue
			}
			buf.WriteString(tabSeparatedEscaper.Replace(formatText(v)))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
