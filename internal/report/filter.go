package report

import "github.com/markany/safepc-insider/internal/detector"

// Unbounded disables the max side of a count range.
const Unbounded = -1

// Filter mirrors the dashboard controls: one inclusive range per count
// column plus a status multiselect. Zero-valued mins and Unbounded maxes
// pass everything; an empty Statuses slice passes both labels.
type Filter struct {
	MinLogon, MaxLogon   int
	MinHTTP, MaxHTTP     int
	MinDevice, MaxDevice int
	Statuses             []detector.Status
}

// NewFilter returns a filter that passes every row.
func NewFilter() Filter {
	return Filter{MaxLogon: Unbounded, MaxHTTP: Unbounded, MaxDevice: Unbounded}
}

func (f Filter) match(r detector.ScoredRow) bool {
	if r.LogonCount < f.MinLogon || (f.MaxLogon != Unbounded && r.LogonCount > f.MaxLogon) {
		return false
	}
	if r.HTTPCount < f.MinHTTP || (f.MaxHTTP != Unbounded && r.HTTPCount > f.MaxHTTP) {
		return false
	}
	if r.DeviceCount < f.MinDevice || (f.MaxDevice != Unbounded && r.DeviceCount > f.MaxDevice) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if r.Status == s {
			return true
		}
	}
	return false
}

// Apply returns the rows passing the filter, preserving input order.
func Apply(rows []detector.ScoredRow, f Filter) []detector.ScoredRow {
	out := make([]detector.ScoredRow, 0, len(rows))
	for _, r := range rows {
		if f.match(r) {
			out = append(out, r)
		}
	}
	return out
}
