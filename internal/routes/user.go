package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
	"gearguard/pkg/constants"
	"gearguard/pkg/middleware"
)

func runUserRouter(secureGroup *echo.Group, userCtrl *controllers.UserController, authMW *middleware.AuthMiddleware) {
	users := secureGroup.Group("/users", authMW.Authorize(constants.RoleManager, constants.RoleAdmin))

	users.GET("", userCtrl.GetUsers)
	users.GET("/:id", userCtrl.FindUser)
	users.POST("", userCtrl.CreateUser)
	users.PUT("/:id", userCtrl.UpdateUser)
	users.DELETE("/:id", userCtrl.DeleteUser)
}
