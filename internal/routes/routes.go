package routes

import (
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gearguard/internal/authz"
	"gearguard/internal/controllers"
	"gearguard/internal/listeners"
	"gearguard/internal/repositories"
	"gearguard/internal/services"
	"gearguard/pkg/config"
	"gearguard/pkg/eventbus"
	"gearguard/pkg/filestorage"
	"gearguard/pkg/middleware"
	"gearguard/pkg/service"
)

type Loggers struct {
	Main    *zap.Logger
	Auth    *zap.Logger
	Request *zap.Logger
	User    *zap.Logger
}

// Controllers собирает все HTTP-обработчики API.
type Controllers struct {
	Auth      *controllers.AuthController
	Request   *controllers.MaintenanceRequestController
	Equipment *controllers.EquipmentController
	Team      *controllers.TeamController
	User      *controllers.UserController
	Dashboard *controllers.DashboardController
}

func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	bus *eventbus.Bus,
	jwtSvc service.JWTService,
	loggers *Loggers,
	cfg *config.Config,
) error {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	terminalLock, err := authz.ParseTerminalLock(cfg.Lifecycle.TerminalLock)
	if err != nil {
		return fmt.Errorf("настройка LIFECYCLE_TERMINAL_LOCK: %w", err)
	}
	policy := authz.LifecyclePolicy{
		AllowRepick:  cfg.Lifecycle.AllowRepick,
		TerminalLock: terminalLock,
	}

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("файловое хранилище: %w", err)
	}

	// --- 1. РЕПОЗИТОРИИ ---
	txManager := repositories.NewTxManager(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	userRepo := repositories.NewUserRepository(dbConn, loggers.User)
	teamRepo := repositories.NewTeamRepository(dbConn, loggers.Main)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn, loggers.Main)
	requestRepo := repositories.NewMaintenanceRequestRepository(dbConn, loggers.Request)
	historyRepo := repositories.NewRequestHistoryRepository(dbConn, loggers.Request)

	// --- 2. СЕРВИСЫ ---
	principalService := services.NewPrincipalService(userRepo, cacheRepo, loggers.Auth, cfg.Cache.PrincipalTTL)
	userService := services.NewUserService(userRepo, teamRepo, bus, loggers.User)
	authService := services.NewAuthService(userRepo, cacheRepo, userService, jwtSvc, cfg.Auth, loggers.Auth)
	teamService := services.NewTeamService(teamRepo, userRepo, loggers.Main)
	equipmentService := services.NewEquipmentService(equipmentRepo, teamRepo, requestRepo, loggers.Main)
	importService := services.NewEquipmentImportService(equipmentRepo, teamRepo, fileStorage, loggers.Main)
	requestService := services.NewMaintenanceRequestService(
		txManager, requestRepo, equipmentRepo, teamRepo, userRepo, historyRepo,
		bus, policy, loggers.Request,
	)
	reportService := services.NewReportService(requestService, loggers.Request)
	dashboardService := services.NewDashboardService(equipmentRepo, requestRepo, loggers.Main)

	// --- 3. СЛУШАТЕЛИ СОБЫТИЙ ---
	listeners.NewPrincipalCacheListener(principalService, loggers.Auth).Register(bus)
	listeners.NewRequestActivityListener(loggers.Request).Register(bus)

	// --- 4. КОНТРОЛЛЕРЫ ---
	ctrls := &Controllers{
		Auth:      controllers.NewAuthController(authService, loggers.Auth),
		Request:   controllers.NewMaintenanceRequestController(requestService, reportService, loggers.Request),
		Equipment: controllers.NewEquipmentController(equipmentService, importService, loggers.Main),
		Team:      controllers.NewTeamController(teamService, loggers.Main),
		User:      controllers.NewUserController(userService, loggers.User),
		Dashboard: controllers.NewDashboardController(dashboardService, loggers.Main),
	}

	authMW := middleware.NewAuthMiddleware(jwtSvc, principalService, loggers.Auth)
	MountRoutes(e, ctrls, authMW)

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
	return nil
}

// MountRoutes регистрирует маршруты /api на готовых контроллерах.
func MountRoutes(e *echo.Echo, ctrls *Controllers, authMW *middleware.AuthMiddleware) {
	api := e.Group("/api")
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, ctrls.Auth, authMW)
	runMaintenanceRouter(secureGroup, ctrls.Request, authMW)
	runEquipmentRouter(secureGroup, ctrls.Equipment, authMW)
	runTeamRouter(secureGroup, ctrls.Team, authMW)
	runUserRouter(secureGroup, ctrls.User, authMW)
	runDashboardRouter(secureGroup, ctrls.Dashboard)
}
