package sheetssql

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// TableName returns the table that stores structs of type T
func TableName[T any]() string {
	var model T
	return toSnakeCase(reflect.TypeOf(model).Name())
}

// Select reads every record of T's table.
// Columns are matched to fields by header, so column order in the sheet does not matter.
func Select[T any](db *DB) ([]T, error) {
	tableName := TableName[T]()

	values, err := db.client.GetValues(db.spreadsheetID, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get table %s: %w", tableName, err)
	}

	if len(values) <= headerRows {
		return []T{}, nil
	}

	var model T
	t := reflect.TypeOf(model)

	fieldByColumn := make(map[string]int)
	for i := 0; i < t.NumField(); i++ {
		if header := t.Field(i).Tag.Get("ssql_header"); header != "" {
			fieldByColumn[header] = i
		}
	}

	columnFields := make(map[int]int)
	for colIdx, header := range values[0] {
		if fieldIdx, ok := fieldByColumn[fmt.Sprint(header)]; ok {
			columnFields[colIdx] = fieldIdx
		}
	}

	results := make([]T, 0, len(values)-headerRows)
	for rowIdx, row := range values[headerRows:] {
		result := reflect.New(t).Elem()

		for colIdx, fieldIdx := range columnFields {
			if colIdx >= len(row) || row[colIdx] == nil {
				continue
			}

			if err := setFieldValue(result.Field(fieldIdx), row[colIdx]); err != nil {
				return nil, fmt.Errorf("table %s row %d, column %v: %w", tableName, rowIdx+headerRows+1, values[0][colIdx], err)
			}
		}

		results = append(results, result.Interface().(T))
	}

	return results, nil
}

// Insert appends models as records of T's table
func Insert[T any](db *DB, models []T) error {
	if len(models) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(models))
	for _, model := range models {
		v := reflect.ValueOf(model)
		t := v.Type()

		row := make([]interface{}, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).Tag.Get("ssql_header") == "" {
				continue
			}
			row = append(row, FormatValue(v.Field(i)))
		}
		rows = append(rows, row)
	}

	return db.InsertRows(TableName[T](), rows)
}

// FormatValue renders a field as the text stored in its cell.
// Numbers are written as text so that 64-bit values survive the round trip.
func FormatValue(v reflect.Value) string {
	if v.Type() == timeType {
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339Nano)
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprint(v.Interface())
	}
}

// setFieldValue parses a cell into the field. Empty cells leave the zero value.
func setFieldValue(field reflect.Value, cellValue interface{}) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	cellStr, ok := cellValue.(string)
	if !ok {
		cellStr = fmt.Sprint(cellValue)
	}
	if cellStr == "" {
		return nil
	}

	if field.Type() == timeType {
		t, err := time.Parse(time.RFC3339Nano, cellStr)
		if err != nil {
			return fmt.Errorf("failed to parse timestamp: %w", err)
		}
		field.Set(reflect.ValueOf(t))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(cellStr)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intVal, err := strconv.ParseInt(cellStr, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse int: %w", err)
		}
		field.SetInt(intVal)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		uintVal, err := strconv.ParseUint(cellStr, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse uint: %w", err)
		}
		field.SetUint(uintVal)

	case reflect.Float32, reflect.Float64:
		floatVal, err := strconv.ParseFloat(cellStr, 64)
		if err != nil {
			return fmt.Errorf("failed to parse float: %w", err)
		}
		field.SetFloat(floatVal)

	case reflect.Bool:
		boolVal, err := strconv.ParseBool(cellStr)
		if err != nil {
			return fmt.Errorf("failed to parse bool: %w", err)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
