package controllers

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/markany/safepc-insider/internal/dashboard/services"
	"github.com/markany/safepc-insider/internal/detector"
	"github.com/markany/safepc-insider/internal/report"
)

type UserController struct{}

func NewUserController() *UserController {
	return &UserController{}
}

// List - scored users with the dashboard filters applied
func (c *UserController) List(ctx echo.Context) error {
	scored, err := services.ScoreAll()
	if err != nil {
		return ctx.JSON(errStatus(err), map[string]string{"error": err.Error()})
	}
	filtered := report.Apply(scored, parseFilter(ctx))
	return ctx.JSON(200, map[string]interface{}{"users": filtered, "total": len(filtered)})
}

// Get - one scored user
func (c *UserController) Get(ctx echo.Context) error {
	scored, err := services.ScoreAll()
	if err != nil {
		return ctx.JSON(errStatus(err), map[string]string{"error": err.Error()})
	}
	id := ctx.Param("id")
	for _, row := range scored {
		if row.User == id {
			return ctx.JSON(200, row)
		}
	}
	return ctx.JSON(404, map[string]string{"error": "user not found"})
}

// Summary - bar/pie chart data for the current filter
func (c *UserController) Summary(ctx echo.Context) error {
	scored, err := services.ScoreAll()
	if err != nil {
		return ctx.JSON(errStatus(err), map[string]string{"error": err.Error()})
	}
	filtered := report.Apply(scored, parseFilter(ctx))
	return ctx.JSON(200, report.Summarize(filtered))
}

func parseFilter(ctx echo.Context) report.Filter {
	f := report.NewFilter()
	f.MinLogon = queryInt(ctx, "min_logon", 0)
	f.MaxLogon = queryInt(ctx, "max_logon", report.Unbounded)
	f.MinHTTP = queryInt(ctx, "min_http", 0)
	f.MaxHTTP = queryInt(ctx, "max_http", report.Unbounded)
	f.MinDevice = queryInt(ctx, "min_device", 0)
	f.MaxDevice = queryInt(ctx, "max_device", report.Unbounded)

	if status := ctx.QueryParam("status"); status != "" {
		for _, s := range strings.Split(status, ",") {
			f.Statuses = append(f.Statuses, detector.Status(strings.TrimSpace(s)))
		}
	}
	return f
}

func queryInt(ctx echo.Context, name string, def int) int {
	v := ctx.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
