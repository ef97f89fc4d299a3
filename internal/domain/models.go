package domain

import "strconv"

// CellKind tags the type held by a CellValue.
type CellKind int

const (
	CellInt CellKind = iota
	CellString
	CellDate
)

// CellValue is a single generated cell. Dates are carried as ISO-8601 strings.
type CellValue struct {
	Kind CellKind
	Int  int
	Str  string
}

// IntCell creates an integer cell.
func IntCell(v int) CellValue {
	return CellValue{Kind: CellInt, Int: v}
}

// StringCell creates a string cell.
func StringCell(v string) CellValue {
	return CellValue{Kind: CellString, Str: v}
}

// DateCell creates an ISO-8601 date-string cell.
func DateCell(v string) CellValue {
	return CellValue{Kind: CellDate, Str: v}
}

// Interface returns the value in the form the workbook writer accepts.
func (v CellValue) Interface() interface{} {
	if v.Kind == CellInt {
		return v.Int
	}
	return v.Str
}

// String returns the textual form of the cell.
func (v CellValue) String() string {
	if v.Kind == CellInt {
		return strconv.Itoa(v.Int)
	}
	return v.Str
}

// Row is an ordered sequence of cells following the schema column order.
type Row []CellValue

// Values converts the row into writer values.
func (r Row) Values() []interface{} {
	values := make([]interface{}, len(r))
	for i, c := range r {
		values[i] = c.Interface()
	}
	return values
}

// SheetRange assigns the inclusive global row range [Start, End] to a sheet.
type SheetRange struct {
	SheetName string
	Start     int
	End       int
}

// Len returns the number of rows in the range.
func (r SheetRange) Len() int {
	return r.End - r.Start + 1
}
