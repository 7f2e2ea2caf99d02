package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// LoadTable reads a CSV file into a Table. The first record is the header.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadTable(f)
}

// ReadTable reads CSV data into a Table. The first record is the header.
func ReadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, err
	}

	t := NewTable(header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		t.AppendRow(row)
	}

	return t, nil
}

// LoadColumn reads a single named column from a CSV file.
func LoadColumn(path, name string) ([]string, error) {
	t, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	return t.Column(name)
}

// LoadCurationMap reads a two-column curation mapping from a CSV file,
// keyed by keyCol with values from valCol. Rows with an empty key are
// skipped; later rows win on duplicate keys.
func LoadCurationMap(path, keyCol, valCol string) (map[string]string, error) {
	t, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	keys, err := t.Column(keyCol)
	if err != nil {
		return nil, fmt.Errorf("curation map: %w", err)
	}
	vals, err := t.Column(valCol)
	if err != nil {
		return nil, fmt.Errorf("curation map: %w", err)
	}

	m := make(map[string]string, len(keys))
	for i, k := range keys {
		if k == "" {
			continue
		}
		m[k] = vals[i]
	}
	return m, nil
}
