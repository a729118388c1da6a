package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
	"gearguard/pkg/constants"
	"gearguard/pkg/middleware"
)

func runEquipmentRouter(secureGroup *echo.Group, equipmentCtrl *controllers.EquipmentController, authMW *middleware.AuthMiddleware) {
	canManage := authMW.Authorize(constants.RoleManager, constants.RoleAdmin)

	secureGroup.GET("/equipment", equipmentCtrl.GetEquipment)
	secureGroup.GET("/equipment/:id", equipmentCtrl.FindEquipment)
	secureGroup.POST("/equipment", equipmentCtrl.CreateEquipment, canManage)
	secureGroup.POST("/equipment/import", equipmentCtrl.ImportEquipment, canManage)
	secureGroup.PUT("/equipment/:id", equipmentCtrl.UpdateEquipment, canManage)
	secureGroup.DELETE("/equipment/:id", equipmentCtrl.DeleteEquipment, canManage)
}
