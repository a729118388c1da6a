package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gearguard/internal/authz"
	"gearguard/internal/dto"
	"gearguard/internal/services"
	"gearguard/pkg/constants"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MaintenanceRequestController struct {
	requestService services.MaintenanceRequestServiceInterface
	reportService  services.ReportServiceInterface
	logger         *zap.Logger
}

func NewMaintenanceRequestController(
	requestService services.MaintenanceRequestServiceInterface,
	reportService services.ReportServiceInterface,
	logger *zap.Logger,
) *MaintenanceRequestController {
	return &MaintenanceRequestController{
		requestService: requestService,
		reportService:  reportService,
		logger:         logger,
	}
}

func (c *MaintenanceRequestController) GetRequests(ctx echo.Context) error {
	principal, err := authz.PrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter, err := parseRequestFilter(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.ListRequests(ctx.Request().Context(), principal, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список заявок успешно получен", http.StatusOK)
}

func (c *MaintenanceRequestController) FindRequest(ctx echo.Context) error {
	principal, err := authz.PrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.GetVisibleRequest(ctx.Request().Context(), principal, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявка успешно найдена", http.StatusOK)
}

func (c *MaintenanceRequestController) CreateRequest(ctx echo.Context) error {
	principal, err := authz.PrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		c.logger.Debug("CreateRequest: ошибка привязки данных", zap.Error(err))
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.CreateRequest(ctx.Request().Context(), principal, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявка успешно создана", http.StatusCreated)
}

func (c *MaintenanceRequestController) UpdateRequest(ctx echo.Context) error {
	principal, err := authz.PrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		c.logger.Debug("UpdateRequest: ошибка привязки данных", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.UpdateRequest(ctx.Request().Context(), principal, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявка успешно обновлена", http.StatusOK)
}

func (c *MaintenanceRequestController) PickRequest(ctx echo.Context) error {
	principal, err := authz.PrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.PickRequest(ctx.Request().Context(), principal, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявка взята в работу", http.StatusOK)
}

func (c *MaintenanceRequestController) DeleteRequest(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.requestService.DeleteRequest(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Заявка успешно удалена", http.StatusOK)
}

func (c *MaintenanceRequestController) GetHistory(ctx echo.Context) error {
	principal, err := authz.PrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.GetHistory(ctx.Request().Context(), principal, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "История заявки успешно получена", http.StatusOK)
}

// ExportRequests отдаёт видимые заявки файлом XLSX с теми же фильтрами, что и список.
func (c *MaintenanceRequestController) ExportRequests(ctx echo.Context) error {
	principal, err := authz.PrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter, err := parseRequestFilter(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var buf bytes.Buffer
	if err := c.reportService.ExportRequests(ctx.Request().Context(), principal, filter, &buf); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	fileName := fmt.Sprintf("requests_%s.xlsx", time.Now().Format("2006-01-02_15-04"))
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func parseRequestFilter(ctx echo.Context) (dto.RequestFilter, error) {
	filter := dto.RequestFilter{
		Type:   constants.RequestType(ctx.QueryParam("type")),
		Status: constants.RequestStatus(ctx.QueryParam("status")),
	}
	var err error
	if filter.TeamID, err = utils.ParseOptionalUint(ctx, "team_id"); err != nil {
		return filter, err
	}
	if filter.EquipmentID, err = utils.ParseOptionalUint(ctx, "equipment_id"); err != nil {
		return filter, err
	}
	if filter.ScheduledFrom, err = utils.ParseOptionalTime(ctx, "scheduled_from"); err != nil {
		return filter, err
	}
	if filter.ScheduledTo, err = utils.ParseOptionalTime(ctx, "scheduled_to"); err != nil {
		return filter, err
	}
	return filter, nil
}
