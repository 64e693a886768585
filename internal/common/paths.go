package common

import (
	"log"
	"path/filepath"
	"time"
)

var loc = time.UTC

// InitTimezone sets the global timezone used by Now().
func InitTimezone(tz string) {
	l, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("[common] timezone load failed (%s), using KST: %v", tz, err)
		l = time.FixedZone("KST", 9*60*60)
	}
	loc = l
	log.Printf("[common] timezone: %s", loc)
}

// Now returns current time in the configured timezone.
func Now() time.Time { return time.Now().In(loc) }

// Raw log exports live under the data directory with fixed names.
// The http export is headerless with positional columns (id,date,user,pc,url).

func LogonPath(dir string) string {
	return filepath.Join(dir, "logon.csv")
}

func HTTPPath(dir string) string {
	return filepath.Join(dir, "http.csv")
}

func DevicePath(dir string) string {
	return filepath.Join(dir, "device.csv")
}
