package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
	"gearguard/pkg/constants"
	"gearguard/pkg/middleware"
)

func runTeamRouter(secureGroup *echo.Group, teamCtrl *controllers.TeamController, authMW *middleware.AuthMiddleware) {
	canManage := authMW.Authorize(constants.RoleManager, constants.RoleAdmin)

	secureGroup.GET("/teams", teamCtrl.GetTeams)
	secureGroup.GET("/teams/:id", teamCtrl.FindTeam)
	secureGroup.POST("/teams", teamCtrl.CreateTeam, canManage)
	secureGroup.PUT("/teams/:id", teamCtrl.UpdateTeam, canManage)
	secureGroup.DELETE("/teams/:id", teamCtrl.DeleteTeam, canManage)
}
