// Package httperr maps service sentinel errors to HTTP status codes in one place.
package httperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	identityservice "taskhub/backend/internal/identity/service"
	"taskhub/backend/internal/platform/rbac"
	policyservice "taskhub/backend/internal/policy/service"
	"taskhub/backend/internal/security"
	taskdomain "taskhub/backend/internal/task/domain"
	teamservice "taskhub/backend/internal/team/service"
	userservice "taskhub/backend/internal/user/service"
)

// Map converts a service error to an echo HTTP error. Policy denials map to
// 403 and are distinct from not-found (404).
func Map(err error) *echo.HTTPError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, identityservice.ErrAuthenticationFailed),
		errors.Is(err, identityservice.ErrUnrecognizedToken),
		errors.Is(err, identityservice.ErrTokenMismatch),
		errors.Is(err, identityservice.ErrTokenRevokedOrExpired),
		errors.Is(err, security.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, identityservice.ErrAccountNotVerified),
		errors.Is(err, rbac.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, rbac.ErrTeamNotFound),
		errors.Is(err, rbac.ErrTaskNotFound),
		errors.Is(err, teamservice.ErrUserNotFound),
		errors.Is(err, teamservice.ErrMemberNotFound),
		errors.Is(err, userservice.ErrUserNotFound),
		errors.Is(err, policyservice.ErrPolicyNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, identityservice.ErrUsernameTaken),
		errors.Is(err, identityservice.ErrEmailTaken),
		errors.Is(err, identityservice.ErrAlreadyVerified),
		errors.Is(err, teamservice.ErrAlreadyMember),
		errors.Is(err, userservice.ErrUsernameTaken),
		errors.Is(err, userservice.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, identityservice.ErrInvalidInput),
		errors.Is(err, identityservice.ErrMissingRefreshToken),
		errors.Is(err, identityservice.ErrVerificationInvalid),
		errors.Is(err, identityservice.ErrVerificationExpired),
		errors.Is(err, teamservice.ErrInvalidRole),
		errors.Is(err, taskdomain.ErrInvalidStatus),
		errors.Is(err, userservice.ErrInvalidInput),
		errors.Is(err, policyservice.ErrInvalidPolicy):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
