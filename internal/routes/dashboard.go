package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
)

func runDashboardRouter(secureGroup *echo.Group, dashboardCtrl *controllers.DashboardController) {
	secureGroup.GET("/dashboard", dashboardCtrl.GetDashboardStats)
}
