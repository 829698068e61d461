package clickhouse

// QueryResult is either a parsed Table or the unmodified response bytes.
type QueryResult struct {
	Table *Table
	Raw   []byte
}

// IsTable reports whether the response was converted to a Table.
func (r *QueryResult) IsTable() bool {
	return r.Table != nil
}
