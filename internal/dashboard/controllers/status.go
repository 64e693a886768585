package controllers

import (
	"math"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/markany/safepc-insider/config"
	"github.com/markany/safepc-insider/internal/dashboard/services"
)

type StatusController struct {
	StartTime time.Time
	Cfg       *config.Config
}

func NewStatusController(cfg *config.Config) *StatusController {
	return &StatusController{StartTime: time.Now(), Cfg: cfg}
}

func (c *StatusController) Health(ctx echo.Context) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	users, source, _ := services.GetStats()

	allocMB := float64(m.Alloc) / 1024 / 1024
	sysMB := float64(m.Sys) / 1024 / 1024

	level := "healthy"
	var warnings []string
	if allocMB > c.Cfg.Health.CritMB {
		level = "critical"
		warnings = append(warnings, "memory critical")
	} else if allocMB > c.Cfg.Health.WarnMB {
		level = "warning"
		warnings = append(warnings, "memory warning")
	}
	if users == 0 {
		level = "warning"
		warnings = append(warnings, "no feature table")
	}

	return ctx.JSON(200, map[string]interface{}{
		"status":   level,
		"warnings": warnings,
		"uptime":   time.Since(c.StartTime).String(),
		"memory": map[string]interface{}{
			"alloc_mb":   math.Round(allocMB*100) / 100,
			"sys_mb":     math.Round(sysMB*100) / 100,
			"gc_count":   m.NumGC,
			"goroutines": runtime.NumGoroutine(),
		},
		"data": map[string]interface{}{
			"users":  users,
			"source": source,
		},
	})
}

func (c *StatusController) Status(ctx echo.Context) error {
	users, source, loadedAt := services.GetStats()
	resp := map[string]interface{}{
		"service": "insider-dashboard",
		"mode":    "in-memory",
		"users":   users,
		"source":  source,
	}
	if !loadedAt.IsZero() {
		resp["loadedAt"] = loadedAt.Format(time.RFC3339)
	}
	return ctx.JSON(200, resp)
}

func (c *StatusController) Config(ctx echo.Context) error {
	return ctx.JSON(200, map[string]interface{}{
		"featuresPath":  c.Cfg.Data.FeaturesPath,
		"modelPath":     c.Cfg.Data.ModelPath,
		"reportMaxRows": c.Cfg.Report.MaxRows,
	})
}
