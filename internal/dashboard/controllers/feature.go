package controllers

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/markany/safepc-insider/internal/dashboard/services"
	"github.com/markany/safepc-insider/internal/detector"
)

// Raw log upload filenames, matched case-insensitively.
const (
	logonFile  = "logon.csv"
	httpFile   = "http.csv"
	deviceFile = "device.csv"
)

type FeatureController struct{}

func NewFeatureController() *FeatureController {
	return &FeatureController{}
}

// Upload - pre-aggregated feature CSV (form file "features")
func (c *FeatureController) Upload(ctx echo.Context) error {
	fh, err := ctx.FormFile("features")
	if err != nil {
		return ctx.JSON(400, map[string]string{"error": "features file required"})
	}
	f, err := fh.Open()
	if err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	defer f.Close()

	tbl, err := services.LoadFeatures(f)
	if err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	return ctx.JSON(200, map[string]interface{}{"status": "ok", "users": tbl.Len()})
}

// UploadRaw - the three raw logs in one multipart request, matched by
// filename. A partial set is rejected; features are never engineered from
// a subset.
func (c *FeatureController) UploadRaw(ctx echo.Context) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return ctx.JSON(400, map[string]string{"error": "multipart form required"})
	}

	files := make(map[string]*multipart.FileHeader)
	for _, headers := range form.File {
		for _, fh := range headers {
			files[strings.ToLower(fh.Filename)] = fh
		}
	}

	var missing []string
	for _, name := range []string{logonFile, httpFile, deviceFile} {
		if files[name] == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return ctx.JSON(400, map[string]string{
			"error": "raw upload requires all three logs, missing: " + strings.Join(missing, ", "),
		})
	}

	logon, err := files[logonFile].Open()
	if err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	defer logon.Close()
	http, err := files[httpFile].Open()
	if err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	defer http.Close()
	device, err := files[deviceFile].Open()
	if err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	defer device.Close()

	tbl, err := services.EngineerFeatures(logon, http, device)
	if err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	return ctx.JSON(200, map[string]interface{}{"status": "ok", "users": tbl.Len()})
}

// Get - current feature table
func (c *FeatureController) Get(ctx echo.Context) error {
	tbl, err := services.Table()
	if err != nil {
		return ctx.JSON(404, map[string]string{"error": err.Error()})
	}
	return ctx.JSON(200, map[string]interface{}{"users": tbl.Rows(), "total": tbl.Len()})
}

// errStatus maps pipeline errors onto HTTP codes: a missing model is a
// service-side failure, everything else is a bad or premature request.
func errStatus(err error) int {
	if errors.Is(err, detector.ErrModelUnavailable) {
		return 503
	}
	return 400
}
