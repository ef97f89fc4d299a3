package rowgen

import (
	"fmt"
	"strings"

	"github.com/locvowork/export_generator/apigateway/internal/domain"
)

// MaxRowsPerSheet is the xlsx row limit minus the header row.
const MaxRowsPerSheet = 1_048_575

// SheetNamePrefix prefixes the generated sheet names: Data_Sheet1, Data_Sheet2, ...
const SheetNamePrefix = "Data_Sheet"

// RemainderPolicy decides what happens to the rows left over when totalRows is
// not a multiple of sheetCount.
type RemainderPolicy string

const (
	// RemainderToLastSheet appends the leftover rows to the final sheet.
	RemainderToLastSheet RemainderPolicy = "last_sheet"
	// RemainderReject refuses configurations that do not divide evenly.
	RemainderReject RemainderPolicy = "reject"
)

// ParseRemainderPolicy converts a configuration string to a RemainderPolicy.
func ParseRemainderPolicy(s string) (RemainderPolicy, error) {
	switch RemainderPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case RemainderToLastSheet, "":
		return RemainderToLastSheet, nil
	case RemainderReject:
		return RemainderReject, nil
	}
	return "", fmt.Errorf("unknown remainder policy %q", s)
}

// Partition splits rows 1..totalRows into sheetCount contiguous ranges.
// Sheet n covers [1+n*rowsPerSheet, (n+1)*rowsPerSheet] with
// rowsPerSheet = totalRows / sheetCount; the remainder is handled by policy.
func Partition(totalRows, sheetCount int, policy RemainderPolicy) ([]domain.SheetRange, error) {
	if sheetCount < 1 {
		return nil, domain.NewConfigurationError("sheet count must be at least 1, got %d", sheetCount)
	}
	if totalRows < sheetCount {
		return nil, domain.NewConfigurationError("total rows (%d) must be at least the sheet count (%d)", totalRows, sheetCount)
	}

	rowsPerSheet := totalRows / sheetCount
	remainder := totalRows % sheetCount

	if remainder != 0 && policy == RemainderReject {
		return nil, domain.NewConfigurationError("total rows (%d) is not divisible by sheet count (%d)", totalRows, sheetCount)
	}

	ranges := make([]domain.SheetRange, sheetCount)
	for n := 0; n < sheetCount; n++ {
		ranges[n] = domain.SheetRange{
			SheetName: fmt.Sprintf("%s%d", SheetNamePrefix, n+1),
			Start:     1 + n*rowsPerSheet,
			End:       (n + 1) * rowsPerSheet,
		}
	}
	ranges[sheetCount-1].End = totalRows

	for _, r := range ranges {
		if r.Len() > MaxRowsPerSheet {
			return nil, domain.NewConfigurationError("sheet %s would hold %d rows, above the limit of %d", r.SheetName, r.Len(), MaxRowsPerSheet)
		}
	}

	return ranges, nil
}
