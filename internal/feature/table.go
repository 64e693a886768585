package feature

// Persisted feature table column names. The first CSV column carries the
// user identity and may be named anything; the three count columns are
// matched by name.
const (
	ColUser        = "user"
	ColLogonCount  = "logon_count"
	ColHTTPCount   = "http_count"
	ColDeviceCount = "device_count"
)

// RequiredColumns are the count columns a pre-aggregated table must carry.
var RequiredColumns = []string{ColLogonCount, ColHTTPCount, ColDeviceCount}

// Row is one user's aggregated activity counts.
type Row struct {
	User        string `json:"user"`
	LogonCount  int    `json:"logon_count"`
	HTTPCount   int    `json:"http_count"`
	DeviceCount int    `json:"device_count"`
}

// Table maps user identity to a feature row. A physical row order exists
// for stable persistence, but callers must not attach meaning to it.
type Table struct {
	rows  []Row
	index map[string]int
}

func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

func (t *Table) Len() int { return len(t.rows) }

// Rows returns the rows in physical order.
func (t *Table) Rows() []Row { return t.rows }

func (t *Table) Get(user string) (Row, bool) {
	i, ok := t.index[user]
	if !ok {
		return Row{}, false
	}
	return t.rows[i], true
}

// put inserts or replaces the row for r.User.
func (t *Table) put(r Row) {
	if i, ok := t.index[r.User]; ok {
		t.rows[i] = r
		return
	}
	t.index[r.User] = len(t.rows)
	t.rows = append(t.rows, r)
}
