package clickhouse

import (
	"fmt"
	"strings"
)

// Format is a ClickHouse input/output format name.
type Format string

// Formats understood by this client.
const (
	FormatTabSeparated                        Format = "TabSeparated"
	FormatTabSeparatedRaw                     Format = "TabSeparatedRaw"
	FormatTabSeparatedWithNames               Format = "TabSeparatedWithNames"
	FormatTabSeparatedWithNamesAndTypes       Format = "TabSeparatedWithNamesAndTypes"
	FormatCSV                                 Format = "CSV"
	FormatCSVWithNames                        Format = "CSVWithNames"
	FormatCSVWithNamesAndTypes                Format = "CSVWithNamesAndTypes"
	FormatJSON                                Format = "JSON"
	FormatJSONCompact                         Format = "JSONCompact"
	FormatJSONEachRow                         Format = "JSONEachRow"
	FormatJSONCompactEachRowWithNames         Format = "JSONCompactEachRowWithNames"
	FormatJSONCompactEachRowWithNamesAndTypes Format = "JSONCompactEachRowWithNamesAndTypes"
	FormatArrowStream                         Format = "ArrowStream"
	FormatPretty                              Format = "Pretty"
	FormatPrettyCompact                       Format = "PrettyCompact"
	FormatVertical                            Format = "Vertical"
	FormatMarkdown                            Format = "Markdown"
	FormatValues                              Format = "Values"
	FormatRowBinary                           Format = "RowBinary"
	FormatNative                              Format = "Native"
	FormatParquet                             Format = "Parquet"

	defaultQueryFormat  = FormatTabSeparatedWithNames
	defaultInsertFormat = FormatCSV
)

type tableDecoder func(body []byte) (*Table, error)

type tableEncoder func(data *Table) ([]byte, error)

type formatSpec struct {
	decode tableDecoder
	encode tableEncoder
}

var knownFormats = map[Format]formatSpec{
	FormatTabSeparated:                        {encode: encodeTabSeparated},
	FormatTabSeparatedRaw:                     {},
	FormatTabSeparatedWithNames:               {decode: decodeTabSeparatedWithNames},
	FormatTabSeparatedWithNamesAndTypes:       {decode: decodeTabSeparatedWithNamesAndTypes},
	FormatCSV:                                 {encode: encodeCSV},
	FormatCSVWithNames:                        {decode: decodeCSVWithNames},
	FormatCSVWithNamesAndTypes:                {decode: decodeCSVWithNamesAndTypes},
	FormatJSON:                                {},
	FormatJSONCompact:                         {},
	FormatJSONEachRow:                         {encode: encodeJSONEachRow},
	FormatJSONCompactEachRowWithNames:         {decode: decodeJSONCompactEachRowWithNames},
	FormatJSONCompactEachRowWithNamesAndTypes: {decode: decodeJSONCompactEachRowWithNamesAndTypes},
	FormatArrowStream:                         {decode: decodeArrowStream, encode: encodeArrowStream},
	FormatPretty:                              {},
	FormatPrettyCompact:                       {},
	FormatVertical:                            {},
	FormatMarkdown:                            {},
	FormatValues:                              {},
	FormatRowBinary:                           {},
	FormatNative:                              {},
	FormatParquet:                             {},
}

// ParseFormat returns the canonical Format for name, matched case-insensitively.
func ParseFormat(name string) (Format, error) {
	for f := range knownFormats {
		if strings.EqualFold(string(f), name) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// CanDecode reports whether responses in f can be converted to a Table.
func (f Format) CanDecode() bool {
	return knownFormats[f].decode != nil
}

// CanEncode reports whether a Table can be sent to the server in f.
func (f Format) CanEncode() bool {
	return knownFormats[f].encode != nil
}

func (f Format) String() string {
	return string(f)
}

func decodeTable(format Format, body []byte) (*Table, error) {
	spec, ok := knownFormats[format]
	if !ok || spec.decode == nil {
		return nil, &FormatError{
			Format: format,
			Err:    fmt.Errorf("%w: cannot convert %s output to a table", ErrUnsupportedFormat, format),
		}
	}
	table, err := spec.decode(body)
	if err != nil {
		return nil, formatError(format, err)
	}
	return table, nil
}

func encodeTable(format Format, data *Table) ([]byte, error) {
	spec, ok := knownFormats[format]
	if !ok || spec.encode == nil {
		return nil, &FormatError{
			Format: format,
			Err:    fmt.Errorf("%w: cannot insert a table as %s", ErrUnsupportedFormat, format),
		}
	}
	if data == nil {
		data = &Table{}
	}
	payload, err := spec.encode(data)
	if err != nil {
		return nil, formatError(format, err)
	}
	return payload, nil
}
