package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gearguard/internal/authz"
	"gearguard/internal/dto"
)

const requestsSheet = "Заявки"

var requestReportHeaders = []interface{}{
	"ID", "Название", "Оборудование", "Код", "Команда", "Тип", "Статус", "Приоритет",
	"Плановая дата", "Срок", "Исполнитель", "Автор", "Создана", "Выполнена", "Длительность, ч",
}

type ReportServiceInterface interface {
	ExportRequests(ctx context.Context, principal authz.Principal, filter dto.RequestFilter, w io.Writer) error
}

type ReportService struct {
	requests MaintenanceRequestServiceInterface
	logger   *zap.Logger
}

func NewReportService(requests MaintenanceRequestServiceInterface, logger *zap.Logger) ReportServiceInterface {
	return &ReportService{requests: requests, logger: logger}
}

// ExportRequests пишет в w XLSX со всеми видимыми пользователю заявками.
func (s *ReportService) ExportRequests(ctx context.Context, principal authz.Principal, filter dto.RequestFilter, w io.Writer) error {
	items, err := s.requests.ListRequests(ctx, principal, filter)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("ExportRequests: ошибка закрытия книги", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", requestsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(requestsSheet, "A1", &requestReportHeaders); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(requestReportHeaders))
	if err := f.SetCellStyle(requestsSheet, "A1", lastCol+"1", style); err != nil {
		return err
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := requestToRow(item)
		if err := f.SetSheetRow(requestsSheet, cell, &row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(requestsSheet, "B", "C", 30)
	_ = f.SetColWidth(requestsSheet, "E", "E", 20)
	_ = f.SetColWidth(requestsSheet, "I", "N", 20)

	s.logger.Info("Выгрузка заявок", zap.Uint64("userID", principal.ID), zap.Int("rows", len(items)))
	return f.Write(w)
}

func requestToRow(r dto.MaintenanceRequestDTO) []interface{} {
	const dateFmt = "2006-01-02 15:04"
	formatTime := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Local().Format(dateFmt)
	}

	var equipmentName, equipmentCode, teamName, assignee, author string
	if r.Equipment != nil {
		equipmentName, equipmentCode = r.Equipment.Name, r.Equipment.Code
	}
	if r.Team != nil {
		teamName = r.Team.Name
	}
	if r.AssignedTo != nil {
		assignee = r.AssignedTo.Name
	}
	if r.CreatedBy != nil {
		author = r.CreatedBy.Name
	}
	duration := ""
	if r.Duration != nil {
		duration = fmt.Sprintf("%.2f", *r.Duration)
	}

	return []interface{}{
		r.ID, r.Title, equipmentName, equipmentCode, teamName,
		string(r.Type), string(r.Status), string(r.Priority),
		formatTime(r.ScheduledAt), formatTime(r.DueAt),
		assignee, author,
		r.CreatedAt.Local().Format(dateFmt), formatTime(r.CompletedAt), duration,
	}
}
