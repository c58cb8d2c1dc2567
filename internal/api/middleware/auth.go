package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRoles = "X-User-Roles"

	msgMissingUserID = "отсутствует или некорректен заголовок X-User-ID"
)

type callerKey struct{}

// Auth извлекает идентичность вызывающего из заголовков, выставленных провайдером аутентификации.
// Учётные данные повторно не проверяются.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		caller := domain.Caller{
			UserID: userID,
			Roles:  domain.ParseRoles(r.Header.Get(HeaderUserRoles)),
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// WithCaller кладёт вызывающего в контекст
func WithCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// GetCaller возвращает вызывающего из контекста
func GetCaller(ctx context.Context) (domain.Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(domain.Caller)
	return caller, ok
}

// GetUserID возвращает ID вызывающего из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	caller, ok := GetCaller(ctx)
	return caller.UserID, ok
}
