// Package gormclickhouse provides a GORM dialector that executes ClickHouse SQL over HTTP.
//
// Limitations:
//   - Transactions are not supported: ClickHouse has no multi-statement transactions
//     over the HTTP interface, so GORM's default transaction is disabled.
//   - Parameters are bound on the client side before the statement is sent.
//   - The migrator only knows about tables: CurrentDatabase, HasTable, GetTables and
//     DropTable work, everything else returns an error.
package gormclickhouse
