package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"gearguard/internal/authz"
	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/events"
	"gearguard/pkg/constants"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/eventbus"
)

const (
	teamMechanics uint64 = 1
	teamIT        uint64 = 2

	userAdmin      uint64 = 10
	userManager    uint64 = 11
	userTech       uint64 = 12
	userTechMate   uint64 = 13
	userTechIT     uint64 = 14
	userRequester  uint64 = 15
	userEmployee   uint64 = 16
	userTechNoTeam uint64 = 17

	equipmentPress  uint64 = 20
	equipmentServer uint64 = 21
	equipmentChair  uint64 = 22
)

type MaintenanceRequestTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *memStore
	clock time.Time
}

func TestMaintenanceRequestSuite(t *testing.T) {
	suite.Run(t, new(MaintenanceRequestTestSuite))
}

func (s *MaintenanceRequestTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	m := newMemStore()
	m.teams[teamMechanics] = entities.Team{ID: teamMechanics, Name: "Механики"}
	m.teams[teamIT] = entities.Team{ID: teamIT, Name: "ИТ"}

	addUser := func(id uint64, name string, role constants.Role, team *uint64) {
		m.users[id] = entities.User{ID: id, Name: name, Email: name + "@gearguard.local", Role: role, TeamID: null.Uint64FromPtr(team)}
	}
	mech, it := teamMechanics, teamIT
	addUser(userAdmin, "admin", constants.RoleAdmin, nil)
	addUser(userManager, "manager", constants.RoleManager, nil)
	addUser(userTech, "tech", constants.RoleTechnician, &mech)
	addUser(userTechMate, "techmate", constants.RoleTechnician, &mech)
	addUser(userTechIT, "techit", constants.RoleTechnician, &it)
	addUser(userRequester, "requester", constants.RoleUser, nil)
	addUser(userEmployee, "employee", constants.RoleEmployee, nil)
	addUser(userTechNoTeam, "drifter", constants.RoleTechnician, nil)

	m.equipment[equipmentPress] = entities.Equipment{ID: equipmentPress, Name: "Пресс", Code: "PR-1", TeamID: null.Uint64From(teamMechanics)}
	m.equipment[equipmentServer] = entities.Equipment{ID: equipmentServer, Name: "Сервер", Code: "SRV-1", TeamID: null.Uint64From(teamIT)}
	m.equipment[equipmentChair] = entities.Equipment{ID: equipmentChair, Name: "Кресло", Code: "CH-1"}

	m.seq = 100
	s.store = m
}

func (s *MaintenanceRequestTestSuite) service(policy authz.LifecyclePolicy) *MaintenanceRequestService {
	return s.serviceWithBus(policy, nil)
}

func (s *MaintenanceRequestTestSuite) serviceWithBus(policy authz.LifecyclePolicy, bus *eventbus.Bus) *MaintenanceRequestService {
	svc := NewMaintenanceRequestService(
		fakeTxManager{},
		&fakeRequestRepo{m: s.store},
		&fakeEquipmentRepo{m: s.store},
		&fakeTeamRepo{m: s.store},
		&fakeUserRepo{m: s.store},
		&fakeHistoryRepo{m: s.store},
		bus,
		policy,
		zap.NewNop(),
	).(*MaintenanceRequestService)
	svc.now = func() time.Time { return s.clock }
	return svc
}

func (s *MaintenanceRequestTestSuite) principal(id uint64) authz.Principal {
	u := s.store.users[id]
	p := authz.Principal{ID: u.ID, Role: u.Role}
	if u.TeamID.Valid {
		team := u.TeamID.Uint64
		p.TeamID = &team
	}
	return p
}

// seedRequest кладёт заявку напрямую в хранилище, минуя сервис.
func (s *MaintenanceRequestTestSuite) seedRequest(equipmentID, createdBy uint64, mutate func(r *entities.MaintenanceRequest)) uint64 {
	e := s.store.equipment[equipmentID]
	r := entities.MaintenanceRequest{
		ID:          s.store.nextID(),
		Title:       "Заявка",
		EquipmentID: equipmentID,
		Type:        constants.TypeCorrective,
		Status:      constants.StatusNew,
		Priority:    constants.PriorityMedium,
		TeamID:      e.TeamID,
		CreatedBy:   createdBy,
		CreatedAt:   s.clock.Add(-time.Hour),
	}
	if mutate != nil {
		mutate(&r)
	}
	s.store.requests[r.ID] = r
	return r.ID
}

func (s *MaintenanceRequestTestSuite) historyOf(requestID uint64) []entities.RequestHistory {
	var out []entities.RequestHistory
	for _, h := range s.store.history {
		if h.RequestID == requestID {
			out = append(out, h)
		}
	}
	return out
}

func statusPtr(st constants.RequestStatus) *constants.RequestStatus { return &st }
func floatPtr(f float64) *float64                                   { return &f }
func strPtr(v string) *string                                       { return &v }

// --- создание ---

func (s *MaintenanceRequestTestSuite) TestCreateRequest_TeamComesFromEquipment() {
	svc := s.service(authz.DefaultLifecyclePolicy())
	foreignTeam := teamIT

	out, err := svc.CreateRequest(s.ctx, s.principal(userRequester), dto.CreateRequestDTO{
		Title:       "  Течь масла  ",
		EquipmentID: equipmentPress,
		TeamID:      &foreignTeam,
	})
	s.Require().NoError(err)

	s.Equal("Течь масла", out.Title)
	s.Equal(constants.StatusNew, out.Status)
	s.Equal(constants.TypeCorrective, out.Type)
	s.Equal(constants.PriorityMedium, out.Priority)
	s.Require().NotNil(out.Team)
	s.Equal(teamMechanics, out.Team.ID)
	s.Require().NotNil(out.Equipment)
	s.Equal(equipmentPress, out.Equipment.ID)
	s.Require().NotNil(out.CreatedBy)
	s.Equal(userRequester, out.CreatedBy.ID)
	s.Nil(out.AssignedTo)
	s.Nil(out.CompletedAt)

	history := s.historyOf(out.ID)
	s.Require().Len(history, 1)
	s.Equal(constants.HistoryEventCreate, history[0].EventType)
	s.Equal("new", history[0].NewValue.String)
}

func (s *MaintenanceRequestTestSuite) TestCreateRequest_EquipmentWithoutTeam() {
	svc := s.service(authz.DefaultLifecyclePolicy())

	out, err := svc.CreateRequest(s.ctx, s.principal(userEmployee), dto.CreateRequestDTO{
		Title:       "Скрипит",
		EquipmentID: equipmentChair,
		Type:        constants.TypePreventive,
		Priority:    constants.PriorityHigh,
	})
	s.Require().NoError(err)
	s.Nil(out.Team)
	s.Equal(constants.TypePreventive, out.Type)
	s.Equal(constants.PriorityHigh, out.Priority)
}

func (s *MaintenanceRequestTestSuite) TestCreateRequest_InvalidInput() {
	svc := s.service(authz.DefaultLifecyclePolicy())
	p := s.principal(userRequester)

	cases := map[string]dto.CreateRequestDTO{
		"unknown equipment": {Title: "x", EquipmentID: 999},
		"no equipment":      {Title: "x"},
		"blank title":       {Title: "   ", EquipmentID: equipmentPress},
		"unknown type":      {Title: "x", EquipmentID: equipmentPress, Type: "urgent"},
		"unknown priority":  {Title: "x", EquipmentID: equipmentPress, Priority: "critical"},
	}
	for name, payload := range cases {
		_, err := svc.CreateRequest(s.ctx, p, payload)
		s.ErrorIs(err, apperrors.ErrValidation, name)
	}
	s.Empty(s.store.requests)
}

// --- переходы статусов техником ---

func (s *MaintenanceRequestTestSuite) TestTechnicianCannotJumpFromNewToRepaired() {
	svc := s.service(authz.DefaultLifecyclePolicy())
	id := s.seedRequest(equipmentPress, userRequester, func(r *entities.MaintenanceRequest) {
		r.AssignedTo = null.Uint64From(userTech)
	})

	_, err := svc.UpdateRequest(s.ctx, s.principal(userTech), id, dto.UpdateRequestDTO{
		Status:   statusPtr(constants.StatusRepaired),
		Duration: floatPtr(1),
	})
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Equal(constants.StatusNew, s.store.requests[id].Status)
}

func (s *MaintenanceRequestTestSuite) TestTechnicianCannotScrap() {
	svc := s.service(authz.DefaultLifecyclePolicy())
	id := s.seedRequest(equipmentPress, userRequester, func(r *entities.MaintenanceRequest) {
		r.Status = constants.StatusInProgress
		r.AssignedTo = null.Uint64From(userTech)
	})

	_, err := svc.UpdateRequest(s.ctx, s.principal(userTech), id, dto.UpdateRequestDTO{Status: statusPtr(constants.StatusScrap)})
	s.ErrorIs(err, apperrors.ErrValidation)
	s.False(s.store.equipment[equipmentPress].IsScrapped)
}

func (s *MaintenanceRequestTestSuite) TestTechnicianFullCycle() {
	svc := s.service(authz.DefaultLifecyclePolicy())
	id := s.seedRequest(equipmentPress, userRequester, nil)
	tech := s.principal(userTech)

	_, err := svc.UpdateRequest(s.ctx, tech, id, dto.UpdateRequestDTO{Status: statusPtr(constants.StatusInProgress)})
	s.ErrorIs(err, apperrors.ErrForbidden, "в работу переводит только назначенный техник")

	picked, err := svc.PickRequest(s.ctx, tech, id)
	s.Require().NoError(err)
	s.Equal(constants.StatusInProgress, picked.Status)
	s.Require().NotNil(picked.AssignedTo)
	s.Equal(userTech, picked.AssignedTo.ID)

	_, err = svc.UpdateRequest(s.ctx, s.principal(userTechMate), id, dto.UpdateRequestDTO{
		Status:   statusPtr(constants.StatusRepaired),
		Duration: floatPtr(1),
	})
	s.ErrorIs(err, apperrors.ErrForbidden, "завершает только назначенный техник")

	_, err = svc.UpdateRequest(s.ctx, tech, id, dto.UpdateRequestDTO{Status: statusPtr(constants.StatusRepaired)})
	s.ErrorIs(err, apperrors.ErrValidation, "без длительности завершить нельзя")

	done, err := svc.UpdateRequest(s.ctx, tech, id, dto.UpdateRequestDTO{
		Status:   statusPtr(constants.StatusRepaired),
		Duration: floatPtr(1.5),
	})
	s.Require().NoError(err)
	s.Equal(constants.StatusRepaired, done.Status)
	s.Require().NotNil(done.CompletedAt)
	s.True(done.CompletedAt.Equal(s.clock))
	s.Require().NotNil(done.Duration)
	s.Equal(1.5, *done.Duration)

	e := s.store.equipment[equipmentPress]
	s.True(e.LastMaintenanceAt.Valid)
	s.True(e.LastMaintenanceAt.Time.Equal(s.clock))
}

func (s *MaintenanceRequestTestSuite) TestTechnicianOfOtherTeamIsForbidden() {
	svc := s.service(authz.DefaultLifecyclePolicy())
	id := s.seedRequest(equipmentPress, userRequester, nil)

	_, err := svc.UpdateRequest(s.ctx, s.principal(userTechIT), id, dto.UpdateRequestDTO{Title: strPtr("чужая")})
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = svc.UpdateRequest(s.ctx, s.principal(userTechNoTeam), id, dto.UpdateRequestDTO{Title: strPtr("ничья")})
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *MaintenanceRequestTestSuite) TestSameStatusIsNotATransition() {
	svc := s.service(authz.DefaultLifecyclePolicy())
	id := s.seedRequest(equipmentPress, userRequester, nil)

	out, err := svc.UpdateRequest(s.ctx, s.principal(userTech), id, dto.UpdateRequestDTO{
		Status: statusPtr(constants.StatusNew),
		Title:  strPtr("Уточнено"),
	})
	s.Require().NoError(err)
	s.Equal(constants.StatusNew, out.Status)
	s.Equal("Уточнено", out.Title)
}

func (s *MaintenanceRequestTestSuite) TestRequesterCannotUpdate() {
	svc := s.service(authz.DefaultLifecyclePolicy())
	id := s.seedRequest(equipmentPress, userRequester, nil)

	_, err := svc.UpdateRequest(s.ctx, s.principal(userRequester), id, dto.UpdateRequestDTO{Title: strPtr("моя")})
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.Equal("Заявка", s.store.requests[id].Title)
}

func (s *MaintenanceRequestTestSuite) TestUpdateUnknownRequest() {
	svc := s.service(authz.DefaultLifecyclePolicy())

	_, err := svc.UpdateRequest(s.ctx, s.principal(userManager), 999, dto.UpdateRequestDTO{Title: strPtr("x")})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *MaintenanceRequestTestSuite) TestUpdateRejectsBadValues() {
	svc := s.service(authz.DefaultLifecyclePolicy())
	id := s.seedRequest(equipmentPress, userRequester, nil)
	manager := s.principal(userManager)

	_, err := svc.UpdateRequest(s.ctx, manager, id, dto.UpdateRequestDTO{Status: statusPtr("done")})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = svc.UpdateRequest(s.ctx, manager, id, dto.UpdateRequestDTO{Duration: floatPtr(0)})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = svc.UpdateRequest(s.ctx, manager, id, dto.UpdateRequestDTO{Title: strPtr(" ")})
	s.ErrorIs(err, apperrors.ErrValidation)
}

// --- менеджер и побочные эффекты ---

func (s *MaintenanceRequestTestSuite) TestCompletedAtIsSetOnce() {
	svc := s.service(authz.LifecyclePolicy{TerminalLock: authz.TerminalLockNone})
	id := s.seedRequest(equipmentPress, userRequester, func(r *entities.MaintenanceRequest) {
		r.Status = constants.StatusInProgress
	})
	manager := s.principal(userManager)
	firstDone := s.clock

	_, err := svc.UpdateRequest(s.ctx, manager, id, dto.UpdateRequestDTO{
		Status:   statusPtr(constants.StatusRepaired),
		Duration: floatPtr(2),
	})
	s.Require().NoError(err)

	s.clock = s.clock.Add(48 * time.Hour)
	_, err = svc.UpdateRequest(s.ctx, manager, id, dto.UpdateRequestDTO{Status: statusPtr(constants.StatusInProgress)})
	s.Require().NoError(err)
	out, err := svc.UpdateRequest(s.ctx, manager, id, dto.UpdateRequestDTO{Status: statusPtr(constants.StatusRepaired)})
	s.Require().NoError(err)

	s.Require().NotNil(out.CompletedAt)
	s.True(out.CompletedAt.Equal(firstDone))
	s.True(s.store.equipment[equipmentPress].LastMaintenanceAt.Time.Equal(firstDone))
}

func (s *MaintenanceRequestTestSuite) TestScrapMarksEquipmentScrapped() {
	svc := s.service(authz.DefaultLifecyclePolicy())
	first := s.seedRequest(equipmentServer, userRequester, nil)
	second := s.seedRequest(equipmentServer, userEmployee, nil)
	manager := s.principal(userManager)

	out, err := svc.UpdateRequest(s.ctx, manager, first, dto.UpdateRequestDTO{Status: statusPtr(constants.StatusScrap)})
	s.Require().NoError(err)
	s.Equal(constants.StatusScrap, out.Status)
	s.True(s.store.equipment[equipmentServer].IsScrapped)
	s.Require().NotNil(out.Equipment)
	s.True(out.Equipment.IsScrapped)

	_, err = svc.UpdateRequest(s.ctx, manager, first, dto.UpdateRequestDTO{Status: statusPtr(constants.StatusScrap)})
	s.Require().NoError(err, "повторный scrap не является переходом")

	_, err = svc.UpdateRequest(s.ctx, s.principal(userAdmin), second, dto.UpdateRequestDTO{Status: statusPtr(constants.StatusScrap)})
	s.Require().NoError(err)
	s.True(s.store.equipment[equipmentServer].IsScrapped)
	s.False(s.store.equipment[equipmentPress].IsScrapped)
}

func (s *MaintenanceRequestTestSuite) TestUpdateIgnoresForeignFields() {
	svc := s.service(authz.DefaultLifecyclePolicy())
	id := s.seedRequest(equipmentPress, userRequester, nil)

	var payload dto.UpdateRequestDTO
	raw := `{"title":"Новое","assigned_to":14,"team_id":2,"completed_at":"2020-01-01T00:00:00Z","created_by":10}`
	s.Require().NoError(json.Unmarshal([]byte(raw), &payload))

	out, err := svc.UpdateRequest(s.ctx, s.principal(userManager), id, payload)
	s.Require().NoError(err)
	s.Equal("Новое", out.Title)
	s.Nil(out.AssignedTo)
	s.Nil(out.CompletedAt)
	s.Require().NotNil(out.Team)
	s.Equal(teamMechanics, out.Team.ID)
	s.Equal(userRequester, out.CreatedBy.ID)
}

func (s *MaintenanceRequestTestSuite) TestHistoryGroupsOneChangeUnderOneTx() {
	svc := s.service(authz.DefaultLifecyclePolicy())
	id := s.seedRequest(equipmentPress, userRequester, nil)
	manager := s.principal(userManager)

	_, err := svc.UpdateRequest(s.ctx, manager, id, dto.UpdateRequestDTO{
		Priority: func() *constants.Priority { p := constants.PriorityHigh; return &p }(),
		Title:    strPtr("Срочно"),
	})
	s.Require().NoError(err)

	items, err := svc.GetHistory(s.ctx, manager, id)
	s.Require().NoError(err)
	s.Require().Len(items, 2)

	byType := map[string]dto.RequestHistoryDTO{}
	for _, h := range items {
		byType[h.EventType] = h
		s.Require().NotNil(h.Actor)
		s.Equal(userManager, h.Actor.ID)
	}
	s.Equal(items[0].TxID, items[1].TxID)
	s.Require().Contains(byType, constants.HistoryEventPriorityChange)
	s.Equal("high", *byType[constants.HistoryEventPriorityChange].NewValue)
	s.Require().Contains(byType, constants.HistoryEventFieldChange)
	s.Equal("title: Срочно", *byType[constants.HistoryEventFieldChange].NewValue)
}

func (s *MaintenanceRequestTestSuite) TestStatusChangePublishesEvent() {
	bus := eventbus.New(zap.NewNop())
	received := make(chan events.RequestStatusChangedEvent, 1)
	bus.Subscribe(constants.EventRequestStatusChanged, func(ctx context.Context, event eventbus.Event) error {
		received <- event.(events.RequestStatusChangedEvent)
		return nil
	})
	svc := s.serviceWithBus(authz.DefaultLifecyclePolicy(), bus)
	id := s.seedRequest(equipmentPress, userRequester, nil)

	_, err := svc.UpdateRequest(s.ctx, s.principal(userManager), id, dto.UpdateRequestDTO{Status: statusPtr(constants.StatusInProgress)})
	s.Require().NoError(err)
	bus.Wait()

	select {
	case e := <-received:
		s.Equal(id, e.RequestID)
		s.Equal(constants.StatusNew, e.From)
		s.Equal(constants.StatusInProgress, e.To)
		s.Equal(userManager, e.ActorID)
	default:
		s.Fail("событие смены статуса не опубликовано")
	}
}

// --- финальные статусы ---

func (s *MaintenanceRequestTestSuite) seedRepaired() uint64 {
	return s.seedRequest(equipmentPress, userRequester, func(r *entities.MaintenanceRequest) {
		r.Status = constants.StatusRepaired
		r.AssignedTo = null.Uint64From(userTech)
		r.Duration = null.Float64From(1)
		r.CompletedAt = null.TimeFrom(s.clock.Add(-time.Minute))
	})
}

func (s *MaintenanceRequestTestSuite) TestTerminalLockStatus() {
	svc := s.service(authz.LifecyclePolicy{TerminalLock: authz.TerminalLockStatus})
	id := s.seedRepaired()
	manager := s.principal(userManager)

	_, err := svc.UpdateRequest(s.ctx, manager, id, dto.UpdateRequestDTO{Status: statusPtr(constants.StatusNew)})
	s.ErrorIs(err, apperrors.ErrValidation)

	out, err := svc.UpdateRequest(s.ctx, manager, id, dto.UpdateRequestDTO{Title: strPtr("Отчёт дополнен")})
	s.Require().NoError(err)
	s.Equal(constants.StatusRepaired, out.Status)

	_, err = svc.PickRequest(s.ctx, s.principal(userTechMate), id)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *MaintenanceRequestTestSuite) TestTerminalLockAll() {
	svc := s.service(authz.LifecyclePolicy{TerminalLock: authz.TerminalLockAll})
	id := s.seedRepaired()
	manager := s.principal(userManager)

	_, err := svc.UpdateRequest(s.ctx, manager, id, dto.UpdateRequestDTO{Title: strPtr("нельзя")})
	s.ErrorIs(err, apperrors.ErrValidation)

	out, err := svc.UpdateRequest(s.ctx, manager, id, dto.UpdateRequestDTO{})
	s.Require().NoError(err)
	s.Equal("Заявка", out.Title)
}

func (s *MaintenanceRequestTestSuite) TestTerminalLockNoneAllowsReopen() {
	svc := s.service(authz.LifecyclePolicy{TerminalLock: authz.TerminalLockNone})
	id := s.seedRepaired()

	out, err := svc.UpdateRequest(s.ctx, s.principal(userAdmin), id, dto.UpdateRequestDTO{Status: statusPtr(constants.StatusNew)})
	s.Require().NoError(err)
	s.Equal(constants.StatusNew, out.Status)
	s.NotNil(out.CompletedAt)
}

// --- pick ---

func (s *MaintenanceRequestTestSuite) TestPickRequest() {
	svc := s.service(authz.DefaultLifecyclePolicy())
	id := s.seedRequest(equipmentPress, userRequester, nil)

	for _, who := range []uint64{userTechIT, userTechNoTeam, userRequester, userManager} {
		_, err := svc.PickRequest(s.ctx, s.principal(who), id)
		s.ErrorIs(err, apperrors.ErrForbidden, "user %d", who)
	}

	out, err := svc.PickRequest(s.ctx, s.principal(userTech), id)
	s.Require().NoError(err)
	s.Equal(constants.StatusInProgress, out.Status)
	s.Equal(userTech, out.AssignedTo.ID)

	history := s.historyOf(id)
	s.Require().Len(history, 2)
	s.Equal(history[0].TxID, history[1].TxID)

	_, err = svc.PickRequest(s.ctx, s.principal(userTech), id)
	s.Require().NoError(err, "повторный pick своей заявки")
	s.Len(s.historyOf(id), 2)

	_, err = svc.PickRequest(s.ctx, s.principal(userTechMate), id)
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.Equal(userTech, s.store.requests[id].AssignedTo.Uint64)

	_, err = svc.PickRequest(s.ctx, s.principal(userTech), 999)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *MaintenanceRequestTestSuite) TestPickRequest_Repick() {
	svc := s.service(authz.LifecyclePolicy{AllowRepick: true, TerminalLock: authz.TerminalLockStatus})
	id := s.seedRequest(equipmentPress, userRequester, func(r *entities.MaintenanceRequest) {
		r.Status = constants.StatusInProgress
		r.AssignedTo = null.Uint64From(userTech)
	})

	out, err := svc.PickRequest(s.ctx, s.principal(userTechMate), id)
	s.Require().NoError(err)
	s.Equal(userTechMate, out.AssignedTo.ID)
	s.Equal(constants.StatusInProgress, out.Status)

	history := s.historyOf(id)
	s.Require().Len(history, 1)
	s.Equal(constants.HistoryEventAssign, history[0].EventType)
}

// --- видимость ---

func (s *MaintenanceRequestTestSuite) TestVisibility() {
	svc := s.service(authz.DefaultLifecyclePolicy())
	pressReq := s.seedRequest(equipmentPress, userRequester, nil)
	serverReq := s.seedRequest(equipmentServer, userEmployee, nil)
	chairReq := s.seedRequest(equipmentChair, userRequester, nil)

	ids := func(items []dto.MaintenanceRequestDTO) []uint64 {
		out := []uint64{}
		for _, i := range items {
			out = append(out, i.ID)
		}
		return out
	}
	list := func(who uint64, filter dto.RequestFilter) []uint64 {
		items, err := svc.ListRequests(s.ctx, s.principal(who), filter)
		s.Require().NoError(err)
		return ids(items)
	}

	s.Equal([]uint64{pressReq, serverReq, chairReq}, list(userManager, dto.RequestFilter{}))
	s.Equal([]uint64{pressReq, serverReq, chairReq}, list(userAdmin, dto.RequestFilter{}))
	s.Equal([]uint64{pressReq}, list(userTech, dto.RequestFilter{}))
	s.Equal([]uint64{serverReq}, list(userTechIT, dto.RequestFilter{}))
	s.Equal([]uint64{pressReq, chairReq}, list(userRequester, dto.RequestFilter{}))
	s.Equal([]uint64{serverReq}, list(userEmployee, dto.RequestFilter{}))
	s.Empty(list(userTechNoTeam, dto.RequestFilter{}))

	it := teamIT
	s.Equal([]uint64{serverReq}, list(userManager, dto.RequestFilter{TeamID: &it}))
	s.Empty(list(userTech, dto.RequestFilter{TeamID: &it}), "фильтр не расширяет область видимости")

	_, err := svc.ListRequests(s.ctx, s.principal(userManager), dto.RequestFilter{Status: "closed"})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = svc.GetVisibleRequest(s.ctx, s.principal(userEmployee), pressReq)
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = svc.GetHistory(s.ctx, s.principal(userEmployee), pressReq)
	s.ErrorIs(err, apperrors.ErrForbidden)

	visible, err := svc.GetVisibleRequest(s.ctx, s.principal(userTech), pressReq)
	s.Require().NoError(err)
	s.Equal(pressReq, visible.ID)

	raw, err := svc.GetRequest(s.ctx, pressReq)
	s.Require().NoError(err)
	s.Equal(pressReq, raw.ID)

	_, err = svc.GetRequest(s.ctx, 999)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *MaintenanceRequestTestSuite) TestDeleteRequest() {
	svc := s.service(authz.DefaultLifecyclePolicy())
	id := s.seedRequest(equipmentPress, userRequester, nil)

	s.Require().NoError(svc.DeleteRequest(s.ctx, id))
	s.NotContains(s.store.requests, id)

	err := svc.DeleteRequest(s.ctx, id)
	s.True(errors.Is(err, apperrors.ErrNotFound))
}
