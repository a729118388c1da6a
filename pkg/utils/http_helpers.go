package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "gearguard/pkg/errors"
)

// ParseIDParam читает положительный числовой параметр пути.
func ParseIDParam(ctx echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Некорректный ID", err, nil)
	}
	return id, nil
}

// ParseOptionalUint читает необязательный числовой query-параметр.
func ParseOptionalUint(ctx echo.Context, name string) (*uint64, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("Параметр '%s' должен быть числом", name)
	}
	return &v, nil
}

// ParseOptionalTime читает необязательный query-параметр в формате RFC3339.
func ParseOptionalTime(ctx echo.Context, name string) (*time.Time, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("Параметр '%s' должен быть в формате RFC3339", name)
	}
	return &t, nil
}
