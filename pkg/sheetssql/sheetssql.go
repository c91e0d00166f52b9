// Package sheetssql stores tables of tagged structs in the tabs of a Google
// spreadsheet. Row 1 of each tab holds the column names, row 2 the column
// types and every following row is a record.
package sheetssql

import (
	"fmt"
)

// headerRows is the number of rows above the first record of a table
const headerRows = 2

// SheetsClient defines the sheets operations the store needs
type SheetsClient interface {
	GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error)
	AppendRows(spreadsheetID, sheetRange string, values [][]interface{}) error
	UpdateValues(spreadsheetID, sheetRange string, values [][]interface{}) error
	CreateSheet(spreadsheetID, sheetTitle string) (int64, error)
	SheetTitles(spreadsheetID string) ([]string, error)
}

// Column defines a column with name and type
type Column struct {
	Name string
	Type string // e.g., "text", "int", "uint", "float", "bool", "uuid", "timestamp"
}

// TableSchema defines the structure of a table
type TableSchema struct {
	Name    string
	Columns []Column
}

// ColumnIndex returns the position of the named column, or -1
func (t TableSchema) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Schema defines the database schema
type Schema struct {
	Tables []TableSchema
}

// Table returns the schema of the named table
func (s *Schema) Table(name string) (TableSchema, bool) {
	for _, table := range s.Tables {
		if table.Name == name {
			return table, true
		}
	}
	return TableSchema{}, false
}

// DB represents a spreadsheet used as a database
type DB struct {
	client        SheetsClient
	spreadsheetID string
	schema        *Schema
}

// NewDB connects to the spreadsheet, creating missing tables and checking existing ones match the schema
func NewDB(client SheetsClient, spreadsheetID string, schema *Schema) (*DB, error) {
	db := &DB{
		client:        client,
		spreadsheetID: spreadsheetID,
		schema:        schema,
	}

	if err := db.ensureSchema(); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}

// SpreadsheetID returns the database spreadsheet ID
func (db *DB) SpreadsheetID() string {
	return db.spreadsheetID
}

// InsertRows appends rows to the specified table
func (db *DB) InsertRows(tableName string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	if err := db.client.AppendRows(db.spreadsheetID, tableName, rows); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", tableName, err)
	}
	return nil
}

// UpdateWhere sets column to value on every record whose keyColumn equals key.
// It returns the number of records changed.
func (db *DB) UpdateWhere(tableName, keyColumn, key, column string, value interface{}) (int, error) {
	table, ok := db.schema.Table(tableName)
	if !ok {
		return 0, fmt.Errorf("unknown table %s", tableName)
	}

	keyIdx := table.ColumnIndex(keyColumn)
	if keyIdx < 0 {
		return 0, fmt.Errorf("table %s has no column %s", tableName, keyColumn)
	}
	colIdx := table.ColumnIndex(column)
	if colIdx < 0 {
		return 0, fmt.Errorf("table %s has no column %s", tableName, column)
	}

	keyRange := fmt.Sprintf("%s!%s%d:%s", tableName, columnLetter(keyIdx), headerRows+1, columnLetter(keyIdx))
	keys, err := db.client.GetValues(db.spreadsheetID, keyRange)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s keys: %w", tableName, err)
	}

	updated := 0
	for i, row := range keys {
		if len(row) == 0 || fmt.Sprint(row[0]) != key {
			continue
		}

		cell := fmt.Sprintf("%s!%s%d", tableName, columnLetter(colIdx), headerRows+1+i)
		if err := db.client.UpdateValues(db.spreadsheetID, cell, [][]interface{}{{value}}); err != nil {
			return updated, fmt.Errorf("failed to update %s: %w", tableName, err)
		}
		updated++
	}

	return updated, nil
}

// columnLetter converts a zero based column index to its A1 letters, e.g. 0 -> A, 27 -> AB
func columnLetter(idx int) string {
	letters := ""
	for idx >= 0 {
		letters = string(rune('A'+idx%26)) + letters
		idx = idx/26 - 1
	}
	return letters
}
