package services

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/markany/safepc-insider/config"
	"github.com/markany/safepc-insider/internal/common"
	"github.com/markany/safepc-insider/internal/detector"
	"github.com/markany/safepc-insider/internal/feature"
)

// Source of the current feature table.
const (
	SourceNone       = "none"
	SourceDefault    = "default"
	SourceUpload     = "upload"
	SourceEngineered = "engineered"
)

var (
	featuresPath  string
	modelPath     string
	reportMaxRows int

	tableMu     sync.RWMutex
	tableCache  *feature.Table
	tableSource = SourceNone
	tableLoaded time.Time
)

// Init wires the configured paths and preloads the default feature table
// when one exists; absence is not an error, the dashboard starts empty and
// waits for an upload.
func Init(cfg *config.Config) {
	featuresPath = cfg.Data.FeaturesPath
	modelPath = cfg.Data.ModelPath
	reportMaxRows = cfg.Report.MaxRows
	if reportMaxRows <= 0 {
		reportMaxRows = 50
	}

	tbl, err := feature.LoadFile(featuresPath)
	if err != nil {
		log.Printf("[INIT] no default feature table (%v), waiting for upload", err)
		return
	}
	setTable(tbl, SourceDefault)
	log.Printf("[INIT] default feature table loaded: %d users (%s)", tbl.Len(), featuresPath)
}

// Reset drops the loaded table. Test helper.
func Reset() {
	tableMu.Lock()
	tableCache = nil
	tableSource = SourceNone
	tableLoaded = time.Time{}
	tableMu.Unlock()
}

func setTable(t *feature.Table, source string) {
	tableMu.Lock()
	tableCache = t
	tableSource = source
	tableLoaded = common.Now()
	tableMu.Unlock()
}

// Table returns the current feature table, failing when none is loaded yet.
func Table() (*feature.Table, error) {
	tableMu.RLock()
	defer tableMu.RUnlock()
	if tableCache == nil {
		return nil, fmt.Errorf("no feature table loaded: upload features.csv or the three raw logs")
	}
	return tableCache, nil
}

// LoadFeatures replaces the current table with an uploaded pre-aggregated
// CSV. Schema violations reject the upload with every missing column named.
func LoadFeatures(r io.Reader) (*feature.Table, error) {
	tbl, err := feature.Load(r)
	if err != nil {
		return nil, err
	}
	setTable(tbl, SourceUpload)
	log.Printf("[FEATURE] feature table uploaded: %d users", tbl.Len())
	return tbl, nil
}

// EngineerFeatures aggregates the three uploaded raw logs into a fresh
// table. All three must arrive together; mixing with a pre-aggregated
// upload is a usage error handled at the controller.
func EngineerFeatures(logon, http, device io.Reader) (*feature.Table, error) {
	logonCounts, err := feature.CountLogon(logon)
	if err != nil {
		return nil, fmt.Errorf("logon: %w", err)
	}
	httpCounts, err := feature.CountHTTP(http)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	deviceCounts, err := feature.CountDevice(device)
	if err != nil {
		return nil, fmt.Errorf("device: %w", err)
	}

	tbl := feature.Aggregate(logonCounts, httpCounts, deviceCounts)
	setTable(tbl, SourceEngineered)
	log.Printf("[FEATURE] raw logs aggregated: %d users", tbl.Len())
	return tbl, nil
}

// ScoreAll scores the current table with the cached model. Scoring is
// recomputed per interaction; only the model handle is shared across calls.
func ScoreAll() ([]detector.ScoredRow, error) {
	tbl, err := Table()
	if err != nil {
		return nil, err
	}
	model, err := detector.Cached(modelPath)
	if err != nil {
		return nil, err
	}
	return detector.Score(tbl, model)
}

// ReportMaxRows caps the PDF export body.
func ReportMaxRows() int { return reportMaxRows }

// GetStats reports the table state for /api/status.
func GetStats() (users int, source string, loadedAt time.Time) {
	tableMu.RLock()
	defer tableMu.RUnlock()
	if tableCache != nil {
		users = tableCache.Len()
	}
	return users, tableSource, tableLoaded
}
