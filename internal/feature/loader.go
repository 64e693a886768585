package feature

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// httpUserField is the positional index of the user column in the headerless
// http export (id, date, user, pc, url).
const httpUserField = 2

// CountLogon counts logon events per user. The source is a header CSV with
// a `user` column; column order does not matter.
func CountLogon(r io.Reader) (map[string]int, error) {
	return countNamed(r)
}

// CountDevice counts device-connect events per user, same shape as logon.
func CountDevice(r io.Reader) (map[string]int, error) {
	return countNamed(r)
}

// countNamed counts rows per user using the header's `user` column.
// Rows with an empty user field are skipped, not fatal.
func countNamed(r io.Reader) (map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &SchemaError{Missing: []string{ColUser}}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	userIdx := -1
	for i, col := range header {
		if strings.TrimSpace(col) == ColUser {
			userIdx = i
			break
		}
	}
	if userIdx < 0 {
		return nil, &SchemaError{Missing: []string{ColUser}}
	}

	counts := make(map[string]int)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if userIdx >= len(rec) {
			continue
		}
		user := strings.TrimSpace(rec[userIdx])
		if user == "" {
			continue
		}
		counts[user]++
	}
	return counts, nil
}

// CountHTTP counts web requests per user. The source has no header row;
// the user is the third positional field.
func CountHTTP(r io.Reader) (map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	counts := make(map[string]int)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if httpUserField >= len(rec) {
			continue
		}
		user := strings.TrimSpace(rec[httpUserField])
		if user == "" {
			continue
		}
		counts[user]++
	}
	return counts, nil
}

// Engineer builds the feature table from the three raw log exports. All
// three files must be supplied together; a missing file fails the whole
// run rather than producing a partial table.
func Engineer(logonPath, httpPath, devicePath string) (*Table, error) {
	logon, err := countFile(logonPath, countNamed)
	if err != nil {
		return nil, err
	}
	http, err := countFile(httpPath, CountHTTP)
	if err != nil {
		return nil, err
	}
	device, err := countFile(devicePath, countNamed)
	if err != nil {
		return nil, err
	}
	return Aggregate(logon, http, device), nil
}

func countFile(path string, count func(io.Reader) (map[string]int, error)) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingSource, path)
	}
	defer f.Close()

	counts, err := count(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return counts, nil
}
