package gormclickhouse

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

var errUnsupportedMigration = errors.New("clickhouse migrator only supports table lookups and drops")

// tableMigrator answers table level questions with ClickHouse statements and
// rejects everything that would need a ClickHouse specific DDL generator.
type tableMigrator struct {
	db *gorm.DB
}

func (m tableMigrator) tableName(value interface{}) (string, error) {
	if name, ok := value.(string); ok {
		return name, nil
	}
	stmt := &gorm.Statement{DB: m.db}
	if err := stmt.Parse(value); err != nil {
		return "", err
	}
	return stmt.Table, nil
}

func (m tableMigrator) AutoMigrate(_ ...interface{}) error {
	return errUnsupportedMigration
}

func (m tableMigrator) CurrentDatabase() string {
	var name string
	if err := m.db.Raw("SELECT currentDatabase()").Row().Scan(&name); err != nil {
		log.Errorf("Unable to read the current database, Error: %v", err)
	}
	return name
}

func (m tableMigrator) FullDataTypeOf(*schema.Field) clause.Expr {
	return clause.Expr{}
}

func (m tableMigrator) GetTypeAliases(string) []string {
	return nil
}

func (m tableMigrator) CreateTable(_ ...interface{}) error {
	return errUnsupportedMigration
}

func (m tableMigrator) DropTable(values ...interface{}) error {
	for _, value := range values {
		table, err := m.tableName(value)
		if err != nil {
			return err
		}
		if err := m.db.Exec("DROP TABLE IF EXISTS ?", clause.Table{Name: table}).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}

func (m tableMigrator) HasTable(value interface{}) bool {
	table, err := m.tableName(value)
	if err != nil {
		return false
	}
	var exists int
	if err := m.db.Raw("EXISTS TABLE ?", clause.Table{Name: table}).Row().Scan(&exists); err != nil {
		return false
	}
	return exists == 1
}

func (m tableMigrator) RenameTable(_, _ interface{}) error {
	return errUnsupportedMigration
}

func (m tableMigrator) GetTables() ([]string, error) {
	var tables []string
	err := m.db.Raw("SHOW TABLES").Scan(&tables).Error
	return tables, err
}

func (m tableMigrator) TableType(_ interface{}) (gorm.TableType, error) {
	return nil, errUnsupportedMigration
}

func (m tableMigrator) AddColumn(_ interface{}, _ string) error {
	return errUnsupportedMigration
}

func (m tableMigrator) DropColumn(_ interface{}, _ string) error {
	return errUnsupportedMigration
}

func (m tableMigrator) AlterColumn(_ interface{}, _ string) error {
	return errUnsupportedMigration
}

func (m tableMigrator) MigrateColumn(_ interface{}, _ *schema.Field, _ gorm.ColumnType) error {
	return errUnsupportedMigration
}

func (m tableMigrator) MigrateColumnUnique(_ interface{}, _ *schema.Field, _ gorm.ColumnType) error {
	return errUnsupportedMigration
}

func (m tableMigrator) HasColumn(_ interface{}, _ string) bool {
	return false
}

func (m tableMigrator) RenameColumn(_ interface{}, _ string, _ string) error {
	return errUnsupportedMigration
}

func (m tableMigrator) ColumnTypes(_ interface{}) ([]gorm.ColumnType, error) {
	return nil, errUnsupportedMigration
}

func (m tableMigrator) CreateView(_ string, _ gorm.ViewOption) error {
	return errUnsupportedMigration
}

func (m tableMigrator) DropView(_ string) error {
	return errUnsupportedMigration
}

func (m tableMigrator) CreateConstraint(_ interface{}, _ string) error {
	return errUnsupportedMigration
}

func (m tableMigrator) DropConstraint(_ interface{}, _ string) error {
	return errUnsupportedMigration
}

func (m tableMigrator) HasConstraint(_ interface{}, _ string) bool {
	return false
}

func (m tableMigrator) CreateIndex(_ interface{}, _ string) error {
	return errUnsupportedMigration
}

func (m tableMigrator) DropIndex(_ interface{}, _ string) error {
	return errUnsupportedMigration
}

func (m tableMigrator) HasIndex(_ interface{}, _ string) bool {
	return false
}

func (m tableMigrator) RenameIndex(_ interface{}, _ string, _ string) error {
	return errUnsupportedMigration
}

func (m tableMigrator) GetIndexes(_ interface{}) ([]gorm.Index, error) {
	return nil, errUnsupportedMigration
}
