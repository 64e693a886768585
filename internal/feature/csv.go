package feature

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Load reads a pre-aggregated feature table. The first column is the user
// identity regardless of its header name; logon_count/http_count/device_count
// are matched by name anywhere in the header. All missing required columns
// are reported at once, and nothing is loaded on a partial schema.
func Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &SchemaError{Missing: RequiredColumns}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	t := NewTable()
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line++
		if len(rec) == 0 {
			continue
		}
		user := strings.TrimSpace(rec[0])
		if user == "" {
			continue
		}
		row := Row{User: user}
		if row.LogonCount, err = parseCount(rec, cols[ColLogonCount], ColLogonCount, line); err != nil {
			return nil, err
		}
		if row.HTTPCount, err = parseCount(rec, cols[ColHTTPCount], ColHTTPCount, line); err != nil {
			return nil, err
		}
		if row.DeviceCount, err = parseCount(rec, cols[ColDeviceCount], ColDeviceCount, line); err != nil {
			return nil, err
		}
		t.put(row)
	}
	return t, nil
}

func parseCount(rec []string, idx int, col string, line int) (int, error) {
	if idx >= len(rec) {
		return 0, fmt.Errorf("line %d: %s value missing", line, col)
	}
	n, err := strconv.Atoi(strings.TrimSpace(rec[idx]))
	if err != nil {
		return 0, fmt.Errorf("line %d: %s is not an integer: %q", line, col, rec[idx])
	}
	if n < 0 {
		return 0, fmt.Errorf("line %d: %s is negative: %d", line, col, n)
	}
	return n, nil
}

// LoadFile loads a feature table from disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingSource, path)
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Save writes the table as CSV. Loading the output yields identical counts.
func (t *Table) Save(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColUser, ColLogonCount, ColHTTPCount, ColDeviceCount}); err != nil {
		return err
	}
	for _, r := range t.rows {
		rec := []string{
			r.User,
			strconv.Itoa(r.LogonCount),
			strconv.Itoa(r.HTTPCount),
			strconv.Itoa(r.DeviceCount),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveFile persists the table to the given path, creating parent
// directories as needed.
func (t *Table) SaveFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
