// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package records

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrSchema        = errors.New("schema error")
	ErrInputNotFound = errors.New("input file not found")
)

// ColumnKind specifies how values of a column are stored
type ColumnKind int

const (
	KindNumeric ColumnKind = iota
	KindText
)

func (k ColumnKind) String() string {
	if k == KindText {
		return "text"
	}
	return "numeric"
}

// Column is a single named column of a Table. Depending on its kind,
// either Num or Str contains the values. The Categorical flag marks
// columns which are to be understood as a set of discrete labels
// no matter how the values are stored.
type Column struct {
	Name        string
	Kind        ColumnKind
	Categorical bool
	Num         []float64
	Str         []string
}

// NewNumericColumn creates a numeric column with provided values
func NewNumericColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: KindNumeric, Num: values}
}

// NewTextColumn creates a text column with provided values
func NewTextColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: KindText, Str: values}
}

func (c *Column) Len() int {
	if c.Kind == KindText {
		return len(c.Str)
	}
	return len(c.Num)
}

// Key returns a canonical string representation of the i-th value.
// Numeric values are formatted in their shortest form so e.g. "0",
// "0.0" and "0e0" in an input file produce the same key.
func (c *Column) Key(i int) string {
	if c.Kind == KindText {
		return c.Str[i]
	}
	return FormatNumber(c.Num[i])
}

// Float returns the i-th value as a number. For text columns,
// the value is parsed and ok is false in case it is not a number.
func (c *Column) Float(i int) (v float64, ok bool) {
	if c.Kind == KindNumeric {
		v = c.Num[i]
		return v, !math.IsNaN(v)
	}
	v, err := strconv.ParseFloat(c.Str[i], 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// FormatNumber is the canonical number-to-string conversion used
// for categorical keys.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ---------------------------

// Table is a columnar representation of loaded connection records.
// The order of rows is never changed by any of the Table methods.
type Table struct {
	columns []*Column
	index   map[string]int
	numRows int
}

// NewTable creates a table from provided columns. All the columns
// must have the same length and unique names.
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int),
		numRows: -1,
	}
	for _, c := range columns {
		if _, ok := t.index[c.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate column %s", ErrSchema, c.Name)
		}
		if err := t.SetColumn(c); err != nil {
			return nil, err
		}
	}
	if t.numRows < 0 {
		t.numRows = 0
	}
	return t, nil
}

func (t *Table) NumRows() int {
	return t.numRows
}

func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Names returns column names in their order within the table
func (t *Table) Names() []string {
	ans := make([]string, len(t.columns))
	for i, c := range t.columns {
		ans[i] = c.Name
	}
	return ans
}

// Column returns a column by its name
func (t *Table) Column(name string) (*Column, bool) {
	idx, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[idx], true
}

// MustColumn is like Column but it returns ErrSchema
// in case the column is missing.
func (t *Table) MustColumn(name string) (*Column, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: missing column %s", ErrSchema, name)
	}
	return c, nil
}

// SetColumn adds a new column or replaces an existing one
// with the same name. The column length must match the table.
func (t *Table) SetColumn(c *Column) error {
	if t.numRows >= 0 && len(t.columns) > 0 && c.Len() != t.numRows {
		return fmt.Errorf(
			"%w: column %s has %d values, table has %d rows", ErrSchema, c.Name, c.Len(), t.numRows)
	}
	if idx, ok := t.index[c.Name]; ok {
		t.columns[idx] = c
		return nil
	}
	t.index[c.Name] = len(t.columns)
	t.columns = append(t.columns, c)
	t.numRows = c.Len()
	return nil
}

// Project creates a new table containing only the specified columns
// in the specified order. Column data are shared with the original table.
func (t *Table) Project(names []string) (*Table, error) {
	cols := make([]*Column, len(names))
	for i, name := range names {
		c, err := t.MustColumn(name)
		if err != nil {
			return nil, fmt.Errorf("failed to project table: %w", err)
		}
		cols[i] = c
	}
	ans, err := NewTable(cols...)
	if err != nil {
		return nil, fmt.Errorf("failed to project table: %w", err)
	}
	if len(cols) == 0 {
		ans.numRows = t.numRows
	}
	return ans, nil
}
