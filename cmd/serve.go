package cmd

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/markany/safepc-insider/config"
	"github.com/markany/safepc-insider/internal/common"
	"github.com/markany/safepc-insider/internal/dashboard/controllers"
	"github.com/markany/safepc-insider/internal/dashboard/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the detection dashboard API",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadFromEnv("serve")

		log.Println("dashboard API starting...")
		log.Printf("  Port: %s", cfg.Server.Port)
		log.Printf("  Features: %s", cfg.Data.FeaturesPath)
		log.Printf("  Model: %s", cfg.Data.ModelPath)

		common.InitTimezone(cfg.Timezone)
		services.Init(cfg)

		featureCtrl := controllers.NewFeatureController()
		userCtrl := controllers.NewUserController()
		reportCtrl := controllers.NewReportController()
		statusCtrl := controllers.NewStatusController(cfg)

		e := echo.New()
		e.HideBanner = true
		e.Use(middleware.Logger())
		e.Use(middleware.Recover())

		// feature table API
		e.POST("/api/features", featureCtrl.Upload)
		e.POST("/api/features/raw", featureCtrl.UploadRaw)
		e.GET("/api/features", featureCtrl.Get)

		// scored user API
		e.GET("/api/users", userCtrl.List)
		e.GET("/api/users/:id", userCtrl.Get)
		e.GET("/api/summary", userCtrl.Summary)

		// report API
		e.GET("/api/report", reportCtrl.Download)

		// status API
		e.GET("/api/health", statusCtrl.Health)
		e.GET("/api/status", statusCtrl.Status)
		e.GET("/api/config", statusCtrl.Config)

		e.Logger.Fatal(e.Start(cfg.Server.Port))
	},
}
