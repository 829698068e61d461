package clickhouse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"TabSeparatedWithNames", "tabseparatedwithnames", "TABSEPARATEDWITHNAMES"} {
		format, err := ParseFormat(name)
		assert.Nil(t, err)
		assert.Equal(t, FormatTabSeparatedWithNames, format)
	}
	format, err := ParseFormat("arrowstream")
	assert.Nil(t, err)
	assert.Equal(t, FormatArrowStream, format)

	_, err = ParseFormat("Excel")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = ParseFormat("")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatCapabilities(t *testing.T) {
	decodable := []Format{
		FormatTabSeparatedWithNames, FormatTabSeparatedWithNamesAndTypes,
		FormatCSVWithNames, FormatCSVWithNamesAndTypes,
		FormatJSONCompactEachRowWithNames, FormatJSONCompactEachRowWithNamesAndTypes,
		FormatArrowStream,
	}
	for _, f := range decodable {
		assert.True(t, f.CanDecode(), f.String())
	}
	encodable := []Format{FormatCSV, FormatTabSeparated, FormatJSONEachRow, FormatArrowStream}
	for _, f := range encodable {
		assert.True(t, f.CanEncode(), f.String())
	}
	for _, f := range []Format{FormatPretty, FormatParquet, FormatNative, FormatJSON} {
		assert.False(t, f.CanDecode(), f.String())
		assert.False(t, f.CanEncode(), f.String())
	}
	assert.False(t, Format("Excel").CanDecode())
}

func TestDecodeTableUnsupported(t *testing.T) {
	_, err := decodeTable(FormatVertical, []byte("Row 1:\nid: 1\n"))
	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, FormatVertical, formatErr.Format)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, "format Vertical: unsupported format: cannot convert Vertical output to a table", err.Error())
}

func TestEncodeTableUnsupported(t *testing.T) {
	_, err := encodeTable(FormatParquet, NewTable("id"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, "format Parquet: unsupported format: cannot insert a table as Parquet", err.Error())
}

func TestEncodeNilTable(t *testing.T) {
	for _, f := range []Format{FormatCSV, FormatTabSeparated, FormatJSONEachRow} {
		payload, err := encodeTable(f, nil)
		assert.Nil(t, err)
		assert.Empty(t, payload)
	}
}

func TestEncodeRaggedTable(t *testing.T) {
	table := &Table{Columns: []Column{
		{Name: "a", Values: []interface{}{1, 2}},
		{Name: "b", Values: []interface{}{"x"}},
	}}
	_, err := encodeTable(FormatCSV, table)
	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, FormatCSV, formatErr.Format)
	assert.Contains(t, err.Error(), "column b has 1 values, expected 2")
}
