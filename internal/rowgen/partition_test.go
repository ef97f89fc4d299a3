package rowgen

import (
	"errors"
	"testing"

	"github.com/locvowork/export_generator/apigateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertCovers checks that ranges cover 1..totalRows contiguously.
func assertCovers(t *testing.T, ranges []domain.SheetRange, totalRows int) {
	t.Helper()
	next := 1
	for _, r := range ranges {
		assert.Equal(t, next, r.Start, "sheet %s starts at the wrong row", r.SheetName)
		assert.GreaterOrEqual(t, r.End, r.Start)
		next = r.End + 1
	}
	assert.Equal(t, totalRows+1, next)
}

func TestPartitionEven(t *testing.T) {
	ranges, err := Partition(100000, 5, RemainderToLastSheet)
	require.NoError(t, err)
	require.Len(t, ranges, 5)

	for n, r := range ranges {
		assert.Equal(t, 20000, r.Len())
		assert.Equal(t, 1+n*20000, r.Start)
		assert.Equal(t, (n+1)*20000, r.End)
	}
	assert.Equal(t, "Data_Sheet1", ranges[0].SheetName)
	assert.Equal(t, "Data_Sheet5", ranges[4].SheetName)
	assertCovers(t, ranges, 100000)
}

func TestPartitionSingleSheet(t *testing.T) {
	ranges, err := Partition(10, 1, RemainderReject)
	require.NoError(t, err)
	assert.Equal(t, []domain.SheetRange{{SheetName: "Data_Sheet1", Start: 1, End: 10}}, ranges)
}

func TestPartitionRemainder(t *testing.T) {
	t.Run("LastSheet", func(t *testing.T) {
		ranges, err := Partition(100001, 5, RemainderToLastSheet)
		require.NoError(t, err)
		require.Len(t, ranges, 5)
		assert.Equal(t, 20000, ranges[0].Len())
		assert.Equal(t, 20001, ranges[4].Len())
		assertCovers(t, ranges, 100001)
	})

	t.Run("Reject", func(t *testing.T) {
		_, err := Partition(100001, 5, RemainderReject)
		var cfgErr *domain.ConfigurationError
		assert.True(t, errors.As(err, &cfgErr))
	})
}

func TestPartitionInvalid(t *testing.T) {
	tests := []struct {
		name       string
		totalRows  int
		sheetCount int
	}{
		{"Zero sheets", 100, 0},
		{"Negative sheets", 100, -2},
		{"Fewer rows than sheets", 3, 5},
		{"Zero rows", 0, 1},
		{"Sheet over row limit", MaxRowsPerSheet + 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Partition(tt.totalRows, tt.sheetCount, RemainderToLastSheet)
			var cfgErr *domain.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr), "got %v", err)
		})
	}
}

func TestParseRemainderPolicy(t *testing.T) {
	tests := []struct {
		input    string
		expected RemainderPolicy
		wantErr  bool
	}{
		{"", RemainderToLastSheet, false},
		{"last_sheet", RemainderToLastSheet, false},
		{" REJECT ", RemainderReject, false},
		{"drop", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRemainderPolicy(tt.input)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}
}
