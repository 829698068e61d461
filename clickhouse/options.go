package clickhouse

// Option customizes a single query or insert call.
type Option func(*requestOptions)

type requestOptions struct {
	raw         bool
	format      Format
	kind        QueryKind
	compression *Compression
}

// WithRaw returns the response bytes without converting them to a Table.
func WithRaw() Option {
	return func(o *requestOptions) {
		o.raw = true
	}
}

// WithFormat sets the output format of a query or the input format of an insert.
func WithFormat(format Format) Option {
	return func(o *requestOptions) {
		o.format = format
	}
}

// WithKind states the intent of a statement explicitly instead of relying on
// IsSelectQuery.
func WithKind(kind QueryKind) Option {
	return func(o *requestOptions) {
		o.kind = kind
	}
}

// WithCompression overrides the connection codec for a compressed call.
func WithCompression(compression Compression) Option {
	return func(o *requestOptions) {
		o.compression = &compression
	}
}

func buildOptions(defaultFormat Format, opts []Option) (*requestOptions, error) {
	o := &requestOptions{format: defaultFormat}
	for _, opt := range opts {
		opt(o)
	}
	format, err := ParseFormat(string(o.format))
	if err != nil {
		return nil, err
	}
	o.format = format
	return o, nil
}

func (o *requestOptions) rowProducing(query string) bool {
	if o.kind != 0 {
		return o.kind == KindRead
	}
	return IsSelectQuery(query)
}
