package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aarondl/null/v8"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/filestorage"
)

const importArchivePrefix = "imports"

type EquipmentImportServiceInterface interface {
	Import(ctx context.Context, r io.Reader) (*dto.EquipmentImportResultDTO, error)
}

// EquipmentImportService загружает оборудование из XLSX.
// Шапка ищется на любом листе: обязательны колонки названия и кода.
// Если задан archive, исходный файл сохраняется в нём до разбора.
type EquipmentImportService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	teamRepo      repositories.TeamRepositoryInterface
	archive       filestorage.FileStorageInterface
	logger        *zap.Logger
}

func NewEquipmentImportService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	teamRepo repositories.TeamRepositoryInterface,
	archive filestorage.FileStorageInterface,
	logger *zap.Logger,
) EquipmentImportServiceInterface {
	return &EquipmentImportService{equipmentRepo: equipmentRepo, teamRepo: teamRepo, archive: archive, logger: logger}
}

type importColumns struct {
	name, code, location, description, team int
}

func (s *EquipmentImportService) Import(ctx context.Context, r io.Reader) (*dto.EquipmentImportResultDTO, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("Не удалось прочитать файл: %v", err)
	}

	var sourceFile string
	if s.archive != nil {
		sourceFile, err = s.archive.Save(bytes.NewReader(data), "equipment.xlsx", importArchivePrefix)
		if err != nil {
			s.logger.Warn("Не удалось сохранить копию файла импорта", zap.Error(err))
		}
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewInvalidInputError("Не удалось прочитать XLSX: %v", err)
	}
	defer f.Close()

	rows, headerRow, cols, ok := findImportHeader(f)
	if !ok {
		return nil, apperrors.NewInvalidInputError("Не найдена шапка таблицы: нужны колонки 'Название' и 'Код'")
	}

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	teamByName := make(map[string]uint64, len(teams))
	for _, t := range teams {
		teamByName[strings.ToLower(strings.TrimSpace(t.Name))] = t.ID
	}

	result := &dto.EquipmentImportResultDTO{SourceFile: sourceFile, Errors: []string{}}
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		name := cellAt(row, cols.name)
		code := cellAt(row, cols.code)
		if name == "" && code == "" {
			continue
		}
		if name == "" || code == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Стр %d: не заполнено название или код", lineNum))
			continue
		}

		e := &entities.Equipment{
			Name:        name,
			Code:        code,
			Location:    nullIfEmpty(cellAt(row, cols.location)),
			Description: nullIfEmpty(cellAt(row, cols.description)),
		}
		if teamName := cellAt(row, cols.team); teamName != "" {
			id, found := teamByName[strings.ToLower(teamName)]
			if !found {
				result.Errors = append(result.Errors, fmt.Sprintf("Стр %d [%s]: команда '%s' не найдена, привязка пропущена", lineNum, code, teamName))
			} else {
				e.TeamID = null.Uint64From(id)
			}
		}

		if _, err := s.equipmentRepo.Create(ctx, e); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("Стр %d: код '%s' уже существует", lineNum, code))
				continue
			}
			return nil, err
		}
		result.Created++
	}

	s.logger.Info("Импорт оборудования завершён",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.String("source", sourceFile),
	)
	return result, nil
}

func findImportHeader(f *excelize.File) ([][]string, int, importColumns, bool) {
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for rIdx, row := range rows {
			cols := importColumns{name: -1, code: -1, location: -1, description: -1, team: -1}
			for cIdx, colName := range row {
				c := strings.ToLower(strings.TrimSpace(colName))
				switch {
				case c == "name" || strings.Contains(c, "название") || strings.Contains(c, "наименование"):
					cols.name = cIdx
				case c == "code" || strings.Contains(c, "код") || strings.Contains(c, "инв"):
					cols.code = cIdx
				case c == "location" || strings.Contains(c, "располож") || strings.Contains(c, "место"):
					cols.location = cIdx
				case c == "description" || strings.Contains(c, "описание"):
					cols.description = cIdx
				case c == "team" || strings.Contains(c, "команда"):
					cols.team = cIdx
				}
			}
			if cols.name != -1 && cols.code != -1 {
				return rows, rIdx, cols, true
			}
		}
	}
	return nil, -1, importColumns{}, false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func nullIfEmpty(s string) null.String {
	return null.NewString(s, s != "")
}
