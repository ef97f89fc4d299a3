package rowgen

import (
	"errors"
	"time"

	"github.com/locvowork/export_generator/apigateway/internal/domain"
)

var errRowIndex = errors.New("row index must be >= 1")

// Generator computes rows as pure functions of their global index.
// It holds no mutable state and may be called from many goroutines.
type Generator struct {
	schema Schema
	names  Names
}

// NewGenerator creates a Generator for the given schema and reference names.
func NewGenerator(schema Schema, names Names) *Generator {
	return &Generator{schema: schema, names: names}
}

// Schema returns the generator's column layout.
func (g *Generator) Schema() Schema {
	return g.schema
}

// Generate returns the cells for rowIndex. The date is formatted once, so every
// date column of a row holds the same text.
func (g *Generator) Generate(rowIndex int, sheetTimestamp time.Time) (domain.Row, error) {
	if rowIndex < 1 {
		return nil, domain.NewGenerationError(rowIndex, errRowIndex)
	}

	ctx := RowContext{
		Index: rowIndex,
		Date:  sheetTimestamp.UTC().Format(DateLayout),
		Names: g.names,
	}

	row := make(domain.Row, len(g.schema))
	for i, col := range g.schema {
		row[i] = col.Rule(ctx)
	}
	return row, nil
}
