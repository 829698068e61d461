package clickhouse

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"
	"github.com/apache/arrow/go/v15/arrow/ipc"
	"github.com/apache/arrow/go/v15/arrow/memory"
)

func decodeArrowStream(body []byte) (*Table, error) {
	reader, err := ipc.NewReader(bytes.NewReader(body), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("failed to read arrow payload: %w", err)
	}
	defer reader.Release()

	fields := reader.Schema().Fields()
	table := &Table{Columns: make([]Column, len(fields))}
	for i, f := range fields {
		table.Columns[i] = Column{Name: f.Name, Type: clickHouseTypeOf(f.Type, f.Nullable)}
	}
	for reader.Next() {
		record := reader.Record()
		for c := 0; c < int(record.NumCols()); c++ {
			column := record.Column(c)
			for r := 0; r < column.Len(); r++ {
				v, err := readArrowValue(column, r)
				if err != nil {
					return nil, fmt.Errorf("failed to read arrow value: %w", err)
				}
				table.Columns[c].Values = append(table.Columns[c].Values, v)
			}
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read arrow payload: %w", err)
	}
	for i := range table.Columns {
		if table.Columns[i].Values == nil {
			table.Columns[i].Values = []interface{}{}
		}
	}
	return table, nil
}

func readArrowValue(column arrow.Array, rowIdx int) (interface{}, error) {
	if column.IsNull(rowIdx) {
		return nil, nil
	}
	switch col := column.(type) {
	case *array.Int8:
		return int64(col.Value(rowIdx)), nil
	case *array.Int16:
		return int64(col.Value(rowIdx)), nil
	case *array.Int32:
		return int64(col.Value(rowIdx)), nil
	case *array.Int64:
		return col.Value(rowIdx), nil
	case *array.Uint8:
		return int64(col.Value(rowIdx)), nil
	case *array.Uint16:
		return int64(col.Value(rowIdx)), nil
	case *array.Uint32:
		return int64(col.Value(rowIdx)), nil
	case *array.Uint64:
		return col.Value(rowIdx), nil
	case *array.Float32:
		return float64(col.Value(rowIdx)), nil
	case *array.Float64:
		return col.Value(rowIdx), nil
	case *array.Boolean:
		return col.Value(rowIdx), nil
	case *array.String:
		return col.Value(rowIdx), nil
	case *array.LargeString:
		return col.Value(rowIdx), nil
	case *array.Binary:
		return string(col.Value(rowIdx)), nil
	case *array.LargeBinary:
		return string(col.Value(rowIdx)), nil
	case *array.FixedSizeBinary:
		return string(col.Value(rowIdx)), nil
	case *array.Dictionary:
		return readArrowValue(col.Dictionary(), col.GetValueIndex(rowIdx))
	default:
		return column.ValueStr(rowIdx), nil
	}
}

func clickHouseTypeOf(dt arrow.DataType, nullable bool) string {
	var name string
	switch dt.ID() {
	case arrow.INT8:
		name = "Int8"
	case arrow.INT16:
		name = "Int16"
	case arrow.INT32:
		name = "Int32"
	case arrow.INT64:
		name = typeInt64
	case arrow.UINT8:
		name = "UInt8"
	case arrow.UINT16:
		name = "UInt16"
	case arrow.UINT32:
		name = "UInt32"
	case arrow.UINT64:
		name = typeUInt64
	case arrow.FLOAT32:
		name = "Float32"
	case arrow.FLOAT64:
		name = typeFloat64
	case arrow.BOOL:
		name = typeBool
	case arrow.STRING, arrow.LARGE_STRING, arrow.BINARY, arrow.LARGE_BINARY:
		name = typeString
	case arrow.FIXED_SIZE_BINARY:
		name = fmt.Sprintf("FixedString(%d)", dt.(*arrow.FixedSizeBinaryType).ByteWidth)
	case arrow.DATE32:
		name = "Date32"
	case arrow.TIMESTAMP:
		name = "DateTime64"
	case arrow.DICTIONARY:
		name = fmt.Sprintf("LowCardinality(%s)", clickHouseTypeOf(dt.(*arrow.DictionaryType).ValueType, false))
	default:
		name = dt.Name()
	}
	if nullable {
		return "Nullable(" + name + ")"
	}
	return name
}

func arrowTypeOf(column Column) (arrow.DataType, bool) {
	chType := column.Type
	if chType == "" {
		chType = inferValueType(column.Values)
	}
	base, nullable := baseType(chType)
	for _, v := range column.Values {
		if v == nil {
			nullable = true
			break
		}
	}
	switch base {
	case "Int8", "Int16", "Int32", "Int64", "UInt8", "UInt16", "UInt32":
		return arrow.PrimitiveTypes.Int64, nullable
	case "UInt64":
		return arrow.PrimitiveTypes.Uint64, nullable
	case "Float32", "Float64":
		return arrow.PrimitiveTypes.Float64, nullable
	case "Bool":
		return arrow.FixedWidthTypes.Boolean, nullable
	default:
		return arrow.BinaryTypes.String, nullable
	}
}

func encodeArrowStream(data *Table) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	mem := memory.NewGoAllocator()
	fields := make([]arrow.Field, len(data.Columns))
	for i, column := range data.Columns {
		dt, nullable := arrowTypeOf(column)
		fields[i] = arrow.Field{Name: column.Name, Type: dt, Nullable: nullable}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()
	for i, column := range data.Columns {
		for r, v := range column.Values {
			if err := appendArrowValue(builder.Field(i), v); err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", column.Name, r+1, err)
			}
		}
	}
	record := builder.NewRecord()
	defer record.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := writer.Write(record); err != nil {
		return nil, fmt.Errorf("failed to write arrow record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close arrow stream: %w", err)
	}
	return buf.Bytes(), nil
}

func appendArrowValue(b array.Builder, v interface{}) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch builder := b.(type) {
	case *array.Int64Builder:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		builder.Append(n)
	case *array.Uint64Builder:
		switch n := v.(type) {
		case uint64:
			builder.Append(n)
		default:
			signed, err := toInt64(v)
			if err != nil {
				return err
			}
			if signed < 0 {
				return fmt.Errorf("negative value %d for UInt64", signed)
			}
			builder.Append(uint64(signed))
		}
	case *array.Float64Builder:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		builder.Append(f)
	case *array.BooleanBuilder:
		flag, ok := v.(bool)
		if !ok {
			return fmt.Errorf("cannot convert %T to bool", v)
		}
		builder.Append(flag)
	case *array.StringBuilder:
		builder.Append(formatText(v))
	default:
		return fmt.Errorf("unsupported arrow builder %T", b)
	}
	return nil
}
