package utils

import (
	"errors"
	"net/http"

	apperrors "gearguard/pkg/errors"
)

// errorStatusList - соответствие доменных ошибок HTTP-кодам.
// Порядок важен: проверяется сверху вниз через errors.Is.
var errorStatusList = []struct {
	err  error
	code int
}{
	{apperrors.ErrValidation, http.StatusBadRequest},
	{apperrors.ErrBadRequest, http.StatusBadRequest},
	{apperrors.ErrEmptyAuthHeader, http.StatusUnauthorized},
	{apperrors.ErrInvalidAuthHeader, http.StatusUnauthorized},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
	{apperrors.ErrInvalidToken, http.StatusUnauthorized},
	{apperrors.ErrInvalidSigningMethod, http.StatusUnauthorized},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized},
	{apperrors.ErrTokenNotYetValid, http.StatusUnauthorized},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized},
	{apperrors.ErrPrincipalNotFoundInContext, http.StatusUnauthorized},
	{apperrors.ErrAccountLocked, http.StatusTooManyRequests},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrConflict, http.StatusConflict},
}

// StatusFromError возвращает HTTP-код для доменной ошибки и признак того, что она известна.
func StatusFromError(err error) (int, bool) {
	for _, item := range errorStatusList {
		if errors.Is(err, item.err) {
			return item.code, true
		}
	}
	return http.StatusInternalServerError, false
}
