package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
	"gearguard/pkg/constants"
	"gearguard/pkg/middleware"
)

func runMaintenanceRouter(secureGroup *echo.Group, requestCtrl *controllers.MaintenanceRequestController, authMW *middleware.AuthMiddleware) {
	group := secureGroup.Group("/maintenance")

	// Роли здесь только отсекают заведомо лишних; остальное решает authz в сервисе.
	canUpdate := authMW.Authorize(constants.RoleTechnician, constants.RoleManager, constants.RoleAdmin)
	canDelete := authMW.Authorize(constants.RoleManager, constants.RoleAdmin)
	canPick := authMW.Authorize(constants.RoleTechnician)

	group.GET("", requestCtrl.GetRequests)
	group.POST("", requestCtrl.CreateRequest)
	group.GET("/export", requestCtrl.ExportRequests)
	group.GET("/:id", requestCtrl.FindRequest)
	group.GET("/:id/history", requestCtrl.GetHistory)
	group.PUT("/:id", requestCtrl.UpdateRequest, canUpdate)
	group.DELETE("/:id", requestCtrl.DeleteRequest, canDelete)
	group.POST("/:id/pick", requestCtrl.PickRequest, canPick)
}
