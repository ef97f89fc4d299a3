// Package refdata loads the reference name list used to populate the
// PokemonName column. A Dataset is immutable once built and is shared by
// reference across concurrent exports without locking.
package refdata

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/locvowork/export_generator/apigateway/internal/domain"
)

// BundledSource is the name of the reference list compiled into the binary.
const BundledSource = "data/pokemon_names.json"

//go:embed data/pokemon_names.json
var bundled embed.FS

// Dataset is an ordered, read-only list of names.
type Dataset struct {
	names []string
}

// New builds a Dataset from names. The slice is copied so later changes by the
// caller are not observed.
func New(names []string) (*Dataset, error) {
	if len(names) == 0 {
		return nil, domain.ErrEmptyDataset
	}
	cp := make([]string, len(names))
	copy(cp, names)
	return &Dataset{names: cp}, nil
}

// Load decodes a JSON array of strings from r.
func Load(r io.Reader, source string) (*Dataset, error) {
	if r == nil {
		return nil, domain.NewResourceLoadError(source, errors.New("resource is missing"))
	}

	var names []string
	dec := json.NewDecoder(r)
	if err := dec.Decode(&names); err != nil {
		return nil, domain.NewResourceLoadError(source, fmt.Errorf("malformed name list: %w", err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.NewResourceLoadError(source, errors.New("malformed name list: trailing data after array"))
	}

	ds, err := New(names)
	if err != nil {
		return nil, domain.NewResourceLoadError(source, err)
	}
	return ds, nil
}

// LoadFile loads a Dataset from a JSON file on disk.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewResourceLoadError(path, err)
	}
	defer f.Close()
	return Load(f, path)
}

// LoadBundled loads the reference list shipped with the binary.
func LoadBundled() (*Dataset, error) {
	f, err := bundled.Open(BundledSource)
	if err != nil {
		return nil, domain.NewResourceLoadError(BundledSource, err)
	}
	defer f.Close()
	return Load(f, BundledSource)
}

// Len returns the number of names. It is never zero.
func (d *Dataset) Len() int {
	return len(d.names)
}

// At returns the name at zero-based position i.
func (d *Dataset) At(i int) string {
	return d.names[i]
}

// Name returns the name for a one-based row index, cycling through the list:
// names[(rowIndex-1) mod Len()].
func (d *Dataset) Name(rowIndex int) string {
	i := (rowIndex - 1) % len(d.names)
	if i < 0 {
		i += len(d.names)
	}
	return d.names[i]
}
