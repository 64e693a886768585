package report

import "github.com/markany/safepc-insider/internal/detector"

// Summary feeds the dashboard charts: per-source totals for the bar chart
// and the label distribution for the pie chart.
type Summary struct {
	Users       int            `json:"users"`
	LogonTotal  int            `json:"logon_total"`
	HTTPTotal   int            `json:"http_total"`
	DeviceTotal int            `json:"device_total"`
	Statuses    map[string]int `json:"statuses"`
}

func Summarize(rows []detector.ScoredRow) Summary {
	s := Summary{
		Users:    len(rows),
		Statuses: map[string]int{string(detector.StatusNormal): 0, string(detector.StatusSuspicious): 0},
	}
	for _, r := range rows {
		s.LogonTotal += r.LogonCount
		s.HTTPTotal += r.HTTPCount
		s.DeviceTotal += r.DeviceCount
		s.Statuses[string(r.Status)]++
	}
	return s
}
