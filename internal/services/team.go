package services

import (
	"context"
	"strings"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	"gearguard/pkg/utils"
)

type TeamServiceInterface interface {
	GetTeams(ctx context.Context) ([]dto.TeamDTO, error)
	FindTeam(ctx context.Context, id uint64) (*dto.TeamDTO, error)
	CreateTeam(ctx context.Context, payload dto.CreateTeamDTO) (*dto.TeamDTO, error)
	UpdateTeam(ctx context.Context, id uint64, payload dto.UpdateTeamDTO) (*dto.TeamDTO, error)
	DeleteTeam(ctx context.Context, id uint64) error
}

type TeamService struct {
	teamRepo repositories.TeamRepositoryInterface
	userRepo repositories.UserRepositoryInterface
	logger   *zap.Logger
}

func NewTeamService(teamRepo repositories.TeamRepositoryInterface, userRepo repositories.UserRepositoryInterface, logger *zap.Logger) TeamServiceInterface {
	return &TeamService{teamRepo: teamRepo, userRepo: userRepo, logger: logger}
}

func (s *TeamService) GetTeams(ctx context.Context) ([]dto.TeamDTO, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	members := make(map[uint64][]dto.ShortUserDTO)
	for _, u := range users {
		if u.TeamID.Valid {
			members[u.TeamID.Uint64] = append(members[u.TeamID.Uint64], *toShortUser(u))
		}
	}

	out := make([]dto.TeamDTO, 0, len(teams))
	for _, t := range teams {
		out = append(out, toTeamDTO(t, members[t.ID]))
	}
	return out, nil
}

func (s *TeamService) FindTeam(ctx context.Context, id uint64) (*dto.TeamDTO, error) {
	team, err := s.teamRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withMembers(ctx, team)
}

func (s *TeamService) CreateTeam(ctx context.Context, payload dto.CreateTeamDTO) (*dto.TeamDTO, error) {
	created, err := s.teamRepo.Create(ctx, &entities.Team{
		Name:        strings.TrimSpace(payload.Name),
		Description: payload.Description,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Команда создана", zap.Uint64("teamID", created.ID))
	out := toTeamDTO(*created, nil)
	return &out, nil
}

func (s *TeamService) UpdateTeam(ctx context.Context, id uint64, payload dto.UpdateTeamDTO) (*dto.TeamDTO, error) {
	team, err := s.teamRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload.Name != nil {
		team.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Description != nil {
		team.Description = null.StringFrom(*payload.Description)
	}
	updated, err := s.teamRepo.Update(ctx, team)
	if err != nil {
		return nil, err
	}
	return s.withMembers(ctx, updated)
}

func (s *TeamService) DeleteTeam(ctx context.Context, id uint64) error {
	return s.teamRepo.Delete(ctx, id)
}

func (s *TeamService) withMembers(ctx context.Context, team *entities.Team) (*dto.TeamDTO, error) {
	users, err := s.userRepo.ListByTeam(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	members := make([]dto.ShortUserDTO, 0, len(users))
	for _, u := range users {
		members = append(members, *toShortUser(u))
	}
	out := toTeamDTO(*team, members)
	return &out, nil
}

func toTeamDTO(t entities.Team, members []dto.ShortUserDTO) dto.TeamDTO {
	if members == nil {
		members = []dto.ShortUserDTO{}
	}
	return dto.TeamDTO{
		ID:          t.ID,
		Name:        t.Name,
		Description: utils.NullStringPtr(t.Description),
		Members:     members,
	}
}
