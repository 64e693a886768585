package controllers

import (
	"github.com/labstack/echo/v4"

	"github.com/markany/safepc-insider/internal/dashboard/services"
	"github.com/markany/safepc-insider/internal/report"
)

type ReportController struct{}

func NewReportController() *ReportController {
	return &ReportController{}
}

// Download - PDF report of the filtered scored table
func (c *ReportController) Download(ctx echo.Context) error {
	scored, err := services.ScoreAll()
	if err != nil {
		return ctx.JSON(errStatus(err), map[string]string{"error": err.Error()})
	}
	filtered := report.Apply(scored, parseFilter(ctx))
	if len(filtered) == 0 {
		return ctx.JSON(404, map[string]string{"error": "no rows match the current filter"})
	}

	data, err := report.PDF(filtered, services.ReportMaxRows())
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}
	ctx.Response().Header().Set("Content-Disposition", `attachment; filename="insider_threat_report.pdf"`)
	return ctx.Blob(200, "application/pdf", data)
}
