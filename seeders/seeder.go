package seeders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/services"
	apperrors "gearguard/pkg/errors"
)

// Seeder наполняет БД демо-данными через сервисы, повторный запуск ничего не дублирует.
type Seeder struct {
	teams     services.TeamServiceInterface
	users     services.UserServiceInterface
	equipment services.EquipmentServiceInterface
	importer  services.EquipmentImportServiceInterface
	logger    *zap.Logger
}

func New(
	teams services.TeamServiceInterface,
	users services.UserServiceInterface,
	equipment services.EquipmentServiceInterface,
	importer services.EquipmentImportServiceInterface,
	logger *zap.Logger,
) *Seeder {
	return &Seeder{teams: teams, users: users, equipment: equipment, importer: importer, logger: logger}
}

// SeedTeams создаёт недостающие команды и возвращает их ID по названию в нижнем регистре.
func (s *Seeder) SeedTeams(ctx context.Context) (map[string]uint64, error) {
	s.logger.Info("▶️  Наполнение команд")

	existing, err := s.teams.GetTeams(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]uint64, len(existing))
	for _, t := range existing {
		ids[strings.ToLower(t.Name)] = t.ID
	}

	for _, t := range teamsData {
		if _, ok := ids[strings.ToLower(t.Name)]; ok {
			continue
		}
		created, err := s.teams.CreateTeam(ctx, dto.CreateTeamDTO{Name: t.Name, Description: null.StringFrom(t.Description)})
		if err != nil {
			return nil, fmt.Errorf("команда %q: %w", t.Name, err)
		}
		ids[strings.ToLower(created.Name)] = created.ID
		s.logger.Info("Команда создана", zap.String("name", created.Name), zap.Uint64("id", created.ID))
	}
	return ids, nil
}

func (s *Seeder) SeedUsers(ctx context.Context, teams map[string]uint64, password string) error {
	s.logger.Info("▶️  Наполнение пользователей")

	for _, u := range usersData {
		payload := dto.CreateUserDTO{Name: u.Name, Email: u.Email, Password: password, Role: u.Role}
		if u.Team != "" {
			teamID, ok := teams[strings.ToLower(u.Team)]
			if !ok {
				return fmt.Errorf("пользователь %s: команда %q не найдена", u.Email, u.Team)
			}
			payload.TeamID = &teamID
		}

		created, err := s.users.CreateUser(ctx, payload)
		if errors.Is(err, apperrors.ErrConflict) {
			s.logger.Debug("Пользователь уже существует", zap.String("email", u.Email))
			continue
		}
		if err != nil {
			return fmt.Errorf("пользователь %s: %w", u.Email, err)
		}
		s.logger.Info("Пользователь создан", zap.String("email", created.Email), zap.String("role", string(created.Role)))
	}
	return nil
}

func (s *Seeder) SeedEquipment(ctx context.Context, teams map[string]uint64) error {
	s.logger.Info("▶️  Наполнение оборудования")

	for _, e := range equipmentData {
		payload := dto.CreateEquipmentDTO{Name: e.Name, Code: e.Code, Location: null.StringFrom(e.Location)}
		if e.Team != "" {
			teamID, ok := teams[strings.ToLower(e.Team)]
			if !ok {
				return fmt.Errorf("оборудование %s: команда %q не найдена", e.Code, e.Team)
			}
			payload.TeamID = null.Uint64From(teamID)
		}

		created, err := s.equipment.CreateEquipment(ctx, payload)
		if errors.Is(err, apperrors.ErrConflict) {
			s.logger.Debug("Оборудование уже существует", zap.String("code", e.Code))
			continue
		}
		if err != nil {
			return fmt.Errorf("оборудование %s: %w", e.Code, err)
		}
		s.logger.Info("Оборудование создано", zap.String("code", created.Code), zap.Uint64("id", created.ID))
	}
	return nil
}

// ImportEquipment загружает реестр оборудования из xlsx.
func (s *Seeder) ImportEquipment(ctx context.Context, r io.Reader) error {
	s.logger.Info("▶️  Импорт оборудования из файла")

	res, err := s.importer.Import(ctx, r)
	if err != nil {
		return err
	}
	for _, msg := range res.Errors {
		s.logger.Warn("Импорт: строка пропущена", zap.String("reason", msg))
	}
	s.logger.Info("Импорт завершён", zap.Int("created", res.Created), zap.Int("skipped", res.Skipped))
	return nil
}
