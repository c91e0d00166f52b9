// Package sheetssqltest provides an in-memory spreadsheet for testing code built on sheetssql.
package sheetssqltest

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Spreadsheet is an in-memory sheetssql.SheetsClient holding a single spreadsheet.
// It understands whole-tab ranges and A1 ranges such as "tab!A1:ZZ2", "tab!B3:B" and "tab!C5".
type Spreadsheet struct {
	mu     sync.Mutex
	titles []string
	tabs   map[string][][]interface{}

	// Err, when set, is returned by every call
	Err error
}

// NewSpreadsheet creates an empty spreadsheet
func NewSpreadsheet() *Spreadsheet {
	return &Spreadsheet{tabs: make(map[string][][]interface{})}
}

// Rows returns a copy of every row of a tab
func (s *Spreadsheet) Rows(title string) [][]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tabs[title])
}

// SetRows replaces the contents of a tab, creating it if needed
func (s *Spreadsheet) SetRows(title string, rows [][]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tabs[title]; !ok {
		s.titles = append(s.titles, title)
	}
	s.tabs[title] = rows
}

func (s *Spreadsheet) SheetTitles(spreadsheetID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return slices.Clone(s.titles), nil
}

func (s *Spreadsheet) CreateSheet(spreadsheetID, sheetTitle string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	if _, ok := s.tabs[sheetTitle]; ok {
		return 0, fmt.Errorf("sheet %s already exists", sheetTitle)
	}
	s.titles = append(s.titles, sheetTitle)
	s.tabs[sheetTitle] = nil
	return int64(len(s.titles)), nil
}

func (s *Spreadsheet) AppendRows(spreadsheetID, sheetRange string, values [][]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	r, err := parseRange(sheetRange)
	if err != nil {
		return err
	}
	rows, ok := s.tabs[r.tab]
	if !ok {
		return fmt.Errorf("unable to parse range: %s", sheetRange)
	}
	for _, row := range values {
		rows = append(rows, slices.Clone(row))
	}
	s.tabs[r.tab] = rows
	return nil
}

func (s *Spreadsheet) UpdateValues(spreadsheetID, sheetRange string, values [][]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	r, err := parseRange(sheetRange)
	if err != nil {
		return err
	}
	rows, ok := s.tabs[r.tab]
	if !ok {
		return fmt.Errorf("unable to parse range: %s", sheetRange)
	}

	for i, row := range values {
		rowIdx := r.fromRow + i
		for len(rows) <= rowIdx {
			rows = append(rows, nil)
		}
		for j, value := range row {
			colIdx := r.fromCol + j
			for len(rows[rowIdx]) <= colIdx {
				rows[rowIdx] = append(rows[rowIdx], "")
			}
			rows[rowIdx][colIdx] = value
		}
	}
	s.tabs[r.tab] = rows
	return nil
}

func (s *Spreadsheet) GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	r, err := parseRange(sheetRange)
	if err != nil {
		return nil, err
	}
	rows, ok := s.tabs[r.tab]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: %s", sheetRange)
	}

	var out [][]interface{}
	for i := r.fromRow; i < len(rows) && i <= r.toRow; i++ {
		row := rows[i]
		var cells []interface{}
		for j := r.fromCol; j < len(row) && j <= r.toCol; j++ {
			cells = append(cells, row[j])
		}
		out = append(out, cells)
	}
	return out, nil
}

type a1Range struct {
	tab            string
	fromRow, toRow int
	fromCol, toCol int
}

// parseRange resolves an A1 range to zero based, inclusive bounds
func parseRange(sheetRange string) (a1Range, error) {
	tab, cells, found := strings.Cut(sheetRange, "!")
	r := a1Range{tab: tab, toRow: int(^uint(0) >> 1), toCol: int(^uint(0) >> 1)}
	if !found {
		return r, nil
	}

	from, to, isSpan := strings.Cut(cells, ":")
	fromCol, fromRow, err := parseCell(from)
	if err != nil {
		return r, fmt.Errorf("unable to parse range: %s", sheetRange)
	}
	r.fromCol = fromCol
	if fromRow >= 0 {
		r.fromRow = fromRow
	}

	if !isSpan {
		r.toCol = fromCol
		if fromRow >= 0 {
			r.toRow = fromRow
		}
		return r, nil
	}

	toCol, toRow, err := parseCell(to)
	if err != nil {
		return r, fmt.Errorf("unable to parse range: %s", sheetRange)
	}
	r.toCol = toCol
	if toRow >= 0 {
		r.toRow = toRow
	}
	return r, nil
}

// parseCell splits "AB12" into column 27 and row 11; row is -1 when omitted
func parseCell(cell string) (col, row int, err error) {
	i := 0
	col = 0
	for i < len(cell) && cell[i] >= 'A' && cell[i] <= 'Z' {
		col = col*26 + int(cell[i]-'A'+1)
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("missing column in %q", cell)
	}
	if i == len(cell) {
		return col - 1, -1, nil
	}
	n, err := strconv.Atoi(cell[i:])
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("bad row in %q", cell)
	}
	return col - 1, n - 1, nil
}
