package feature

import "sort"

// Aggregate merges per-source event counts into one row per user: a full
// outer join on user identity with absent counts filled as 0. A nil source
// yields a uniformly zero column. Rows come out sorted by user so repeated
// runs over the same inputs persist identically.
func Aggregate(logon, http, device map[string]int) *Table {
	users := make(map[string]struct{})
	for u := range logon {
		users[u] = struct{}{}
	}
	for u := range http {
		users[u] = struct{}{}
	}
	for u := range device {
		users[u] = struct{}{}
	}

	ordered := make([]string, 0, len(users))
	for u := range users {
		ordered = append(ordered, u)
	}
	sort.Strings(ordered)

	t := NewTable()
	for _, u := range ordered {
		t.put(Row{
			User:        u,
			LogonCount:  logon[u],
			HTTPCount:   http[u],
			DeviceCount: device[u],
		})
	}
	return t
}
