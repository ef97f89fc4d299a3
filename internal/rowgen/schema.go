package rowgen

import (
	"fmt"
	"strconv"

	"github.com/locvowork/export_generator/apigateway/internal/domain"
)

// DateLayout is the ISO-8601 calendar date layout used for the StartDate columns.
const DateLayout = "2006-01-02"

// Names is the read-only lookup the PokemonName column cycles through.
type Names interface {
	Name(rowIndex int) string
}

// RowContext carries the inputs every column rule is computed from.
type RowContext struct {
	Index int
	Date  string
	Names Names
}

// ColumnRule computes a single cell from the row context. Rules must be pure.
type ColumnRule func(ctx RowContext) domain.CellValue

// ColumnSpec describes a column of the generated sheet.
type ColumnSpec struct {
	Name  string
	Width float64
	Rule  ColumnRule
}

// Schema is the ordered list of columns.
type Schema []ColumnSpec

// Headers returns the column names in order.
func (s Schema) Headers() []string {
	headers := make([]string, len(s))
	for i, col := range s {
		headers[i] = col.Name
	}
	return headers
}

// DefaultSchema returns the fixed 30-column layout:
// ID, Name, Value, StartDate_A..J, PokemonName, Email_1..4,
// Country, City, State, Zipcode, Misc_1..8.
func DefaultSchema() Schema {
	schema := make(Schema, 0, 30)

	schema = append(schema,
		ColumnSpec{Name: "ID", Width: 10, Rule: func(ctx RowContext) domain.CellValue {
			return domain.IntCell(ctx.Index)
		}},
		labelColumn("Name", 15),
		labelColumn("Value", 15),
	)

	for i := 0; i < 10; i++ {
		schema = append(schema, ColumnSpec{
			Name:  "StartDate_" + string(rune('A'+i)),
			Width: 12,
			Rule: func(ctx RowContext) domain.CellValue {
				return domain.DateCell(ctx.Date)
			},
		})
	}

	schema = append(schema, ColumnSpec{Name: "PokemonName", Width: 15, Rule: func(ctx RowContext) domain.CellValue {
		return domain.StringCell(ctx.Names.Name(ctx.Index))
	}})

	for j := 1; j <= 4; j++ {
		j := j
		schema = append(schema, ColumnSpec{
			Name:  "Email_" + strconv.Itoa(j),
			Width: 28,
			Rule: func(ctx RowContext) domain.CellValue {
				return domain.StringCell(fmt.Sprintf("email%d_%d@example.com", ctx.Index, j))
			},
		})
	}

	schema = append(schema,
		labelColumn("Country", 15),
		labelColumn("City", 15),
		labelColumn("State", 15),
		labelColumn("Zipcode", 15),
	)

	for j := 1; j <= 8; j++ {
		j := j
		schema = append(schema, ColumnSpec{
			Name:  "Misc_" + strconv.Itoa(j),
			Width: 15,
			Rule: func(ctx RowContext) domain.CellValue {
				return domain.StringCell(fmt.Sprintf("Misc %d_%d", ctx.Index, j))
			},
		})
	}

	return schema
}

// labelColumn builds a column whose value is "<label> <rowIndex>".
func labelColumn(label string, width float64) ColumnSpec {
	return ColumnSpec{
		Name:  label,
		Width: width,
		Rule: func(ctx RowContext) domain.CellValue {
			return domain.StringCell(label + " " + strconv.Itoa(ctx.Index))
		},
	}
}
