package gormclickhouse

import (
	"database/sql"
	"errors"

	"github.com/chconnect/clickhouse-client-go/clickhouse"
	"gorm.io/gorm"
	"gorm.io/gorm/callbacks"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Config configures the ClickHouse GORM dialector.
type Config struct {
	Conn *clickhouse.Connection
}

// Dialector is the GORM dialector for ClickHouse.
type Dialector struct {
	config Config
}

// Open returns a GORM dialector configured for ClickHouse.
func Open(config Config) gorm.Dialector {
	return Dialector{config: config}
}

// Name returns the dialector name.
func (Dialector) Name() string {
	return "clickhouse"
}

// Initialize wires the dialector into the GORM DB instance.
func (d Dialector) Initialize(db *gorm.DB) error {
	if d.config.Conn == nil {
		return errors.New("clickhouse connection is required")
	}
	db.Config.DisableAutomaticPing = true
	db.Config.SkipDefaultTransaction = true

	connector := newConnector(d.config.Conn)
	db.ConnPool = sql.OpenDB(connector)

	callbacks.RegisterDefaultCallbacks(db, &callbacks.Config{
		CreateClauses: []string{"INSERT", "VALUES"},
		UpdateClauses: []string{"UPDATE", "SET", "WHERE"},
		DeleteClauses: []string{"DELETE", "FROM", "WHERE"},
	})
	return nil
}

// Migrator returns a migrator limited to table level operations.
func (Dialector) Migrator(db *gorm.DB) gorm.Migrator {
	return tableMigrator{db: db}
}

// DataTypeOf maps a GORM field onto a ClickHouse column type.
func (Dialector) DataTypeOf(field *schema.Field) string {
	if field == nil {
		return ""
	}
	switch field.DataType {
	case schema.Bool:
		return "Bool"
	case schema.Int:
		return "Int64"
	case schema.Uint:
		return "UInt64"
	case schema.Float:
		return "Float64"
	case schema.String, schema.Bytes:
		return "String"
	case schema.Time:
		return "DateTime64(3)"
	default:
		return string(field.DataType)
	}
}

// DefaultValueOf returns DEFAULT for compatibility.
func (Dialector) DefaultValueOf(*schema.Field) clause.Expression {
	return clause.Expr{SQL: "DEFAULT"}
}

// BindVarTo writes a placeholder.
func (Dialector) BindVarTo(writer clause.Writer, _ *gorm.Statement, _ interface{}) {
	writer.WriteByte('?')
}

// QuoteTo quotes identifiers with backticks.
func (Dialector) QuoteTo(writer clause.Writer, str string) {
	var (
		underQuoted, selfQuoted bool
		continuousBacktick      int8
		shiftDelimiter          int8
	)

	for _, v := range []byte(str) {
		switch v {
		case '`':
			continuousBacktick++
			if continuousBacktick == 2 {
				writer.WriteString("``")
				continuousBacktick = 0
			}
		case '.':
			if continuousBacktick > 0 || !selfQuoted {
				shiftDelimiter = 0
				underQuoted = false
				continuousBacktick = 0
				writer.WriteByte('`')
			}
			writer.WriteByte(v)
			continue
		default:
			if shiftDelimiter-continuousBacktick <= 0 && !underQuoted {
				writer.WriteByte('`')
				underQuoted = true
				if selfQuoted = continuousBacktick > 0; selfQuoted {
					continuousBacktick -= 1
				}
			}

			for ; continuousBacktick > 0; continuousBacktick -= 1 {
				writer.WriteString("``")
			}

			writer.WriteByte(v)
		}
		shiftDelimiter++
	}

	if continuousBacktick > 0 && !selfQuoted {
		writer.WriteString("``")
	}
	writer.WriteByte('`')
}

// Explain returns SQL with rendered parameters for logging.
func (Dialector) Explain(sql string, vars ...interface{}) string {
	return logger.ExplainSQL(sql, nil, "'", vars...)
}
