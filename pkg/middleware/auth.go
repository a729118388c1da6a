package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gearguard/internal/authz"
	"gearguard/pkg/constants"
	"gearguard/pkg/contextkeys"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/service"
	"gearguard/pkg/utils"
)

// PrincipalLoader восстанавливает актуальные роль и команду пользователя.
// Данные в токене могли устареть, поэтому берём их не из claims.
type PrincipalLoader interface {
	GetPrincipal(ctx context.Context, userID uint64) (*authz.Principal, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	principals PrincipalLoader
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, principals PrincipalLoader, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		principals: principals,
		logger:     logger,
	}
}

// Auth проверяет Bearer-токен и кладёт Principal в контекст запроса.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Debug("AuthMiddleware: Пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			m.logger.Debug("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Debug("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		ctx := c.Request().Context()
		principal, err := m.principals.GetPrincipal(ctx, claims.UserID)
		if err != nil {
			m.logger.Warn("AuthMiddleware: Пользователь из токена не найден", zap.Uint64("userID", claims.UserID), zap.Error(err))
			if errors.Is(err, apperrors.ErrNotFound) {
				return utils.ErrorResponse(c, apperrors.ErrUnauthorized, m.logger)
			}
			return utils.ErrorResponse(c, err, m.logger)
		}

		ctx = context.WithValue(ctx, contextkeys.UserIDKey, principal.ID)
		ctx = authz.WithPrincipal(ctx, *principal)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// Authorize пропускает только перечисленные роли. Вызывается после Auth.
func (m *AuthMiddleware) Authorize(roles ...constants.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := authz.PrincipalFromContext(c.Request().Context())
			if err != nil {
				return utils.ErrorResponse(c, err, m.logger)
			}
			for _, role := range roles {
				if principal.Role == role {
					return next(c)
				}
			}
			m.logger.Debug("AuthMiddleware: Роль не допускается",
				zap.Uint64("userID", principal.ID),
				zap.String("role", string(principal.Role)),
				zap.String("path", c.Path()),
			)
			return utils.ErrorResponse(c, apperrors.NewAccessDeniedError("Роль '%s' не имеет доступа к этому действию", principal.Role), m.logger)
		}
	}
}
