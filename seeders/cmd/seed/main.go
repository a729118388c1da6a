package main

import (
	"context"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"gearguard/internal/repositories"
	"gearguard/internal/services"
	"gearguard/pkg/config"
	"gearguard/pkg/database/migrations"
	"gearguard/pkg/database/postgresql"
	applogger "gearguard/pkg/logger"
	"gearguard/seeders"
)

func main() {
	runTeams := pflag.Bool("teams", false, "Создать команды обслуживания")
	runUsers := pflag.Bool("users", false, "Создать демо-пользователей (нужны команды)")
	runEquipment := pflag.Bool("equipment", false, "Создать демо-оборудование (нужны команды)")
	runAll := pflag.Bool("all", false, "Запустить все сидеры (эквивалентно --teams --users --equipment)")
	equipmentFile := pflag.String("equipment-file", "", "Импортировать оборудование из xlsx-файла")
	password := pflag.String("password", "gearguard", "Пароль демо-пользователей")
	pflag.Parse()

	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log)
	defer logger.Sync()

	if !*runTeams && !*runUsers && !*runEquipment && !*runAll && *equipmentFile == "" {
		logger.Warn("❌ Не выбран ни один сидер для запуска")
		pflag.PrintDefaults()
		return
	}

	ctx := context.Background()
	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()

	if err := migrations.Up(ctx, dbPool, logger); err != nil {
		logger.Fatal("ошибка миграций", zap.Error(err))
	}

	userRepo := repositories.NewUserRepository(dbPool, logger)
	teamRepo := repositories.NewTeamRepository(dbPool, logger)
	equipmentRepo := repositories.NewEquipmentRepository(dbPool, logger)
	requestRepo := repositories.NewMaintenanceRequestRepository(dbPool, logger)

	seeder := seeders.New(
		services.NewTeamService(teamRepo, userRepo, logger),
		services.NewUserService(userRepo, teamRepo, nil, logger),
		services.NewEquipmentService(equipmentRepo, teamRepo, requestRepo, logger),
		services.NewEquipmentImportService(equipmentRepo, teamRepo, nil, logger),
		logger,
	)

	teams, err := seeder.SeedTeams(ctx)
	if err != nil {
		logger.Fatal("❌ Ошибка наполнения команд", zap.Error(err))
	}

	if *runAll || *runUsers {
		if err := seeder.SeedUsers(ctx, teams, *password); err != nil {
			logger.Fatal("❌ Ошибка наполнения пользователей", zap.Error(err))
		}
	}
	if *runAll || *runEquipment {
		if err := seeder.SeedEquipment(ctx, teams); err != nil {
			logger.Fatal("❌ Ошибка наполнения оборудования", zap.Error(err))
		}
	}
	if *equipmentFile != "" {
		f, err := os.Open(*equipmentFile)
		if err != nil {
			logger.Fatal("не удалось открыть файл", zap.String("path", *equipmentFile), zap.Error(err))
		}
		defer f.Close()
		if err := seeder.ImportEquipment(ctx, f); err != nil {
			logger.Fatal("❌ Ошибка импорта оборудования", zap.Error(err))
		}
	}

	logger.Info("✅ Все указанные операции сидирования успешно завершены")
}
