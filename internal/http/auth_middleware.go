package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Tortugo2120/Licorer-a-360/internal/domain"
	"github.com/Tortugo2120/Licorer-a-360/internal/service/auth"
)

type authContextKey string

type authInfo struct {
	UserID int64
	Correo string
}

const contextKeyAuth authContextKey = "licoreria-auth-info"

type contextSetter interface {
	SetContext(context.Context)
}

// requireAuth ensures the request has a valid bearer token before invoking the handler.
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx, _, ok := r.ensureAuth(w, req)
		if !ok {
			return
		}
		if setter, ok := w.(contextSetter); ok {
			setter.SetContext(ctx)
		}
		next(w, req.WithContext(ctx))
	}
}

// ensureAuth validates the Authorization header, resolves the account, and
// enriches the context. Every credential failure answers with the same 401;
// a store failure during resolution is a server error, not a bad token.
func (r *Router) ensureAuth(w http.ResponseWriter, req *http.Request) (context.Context, *domain.User, bool) {
	token, err := bearerToken(req.Header.Get("Authorization"))
	if err != nil {
		r.logger.Warn("authorization header invalid", "error", err, "path", req.URL.Path)
		writeUnauthorized(w, "no se pudo validar las credenciales")
		return req.Context(), nil, false
	}
	user, err := r.auth.Authorize(req.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			r.logger.Warn("token validation failed", "error", err, "path", req.URL.Path)
			writeUnauthorized(w, "no se pudo validar las credenciales")
			return req.Context(), nil, false
		}
		r.logger.Error("identity resolution failed", "error", err, "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return req.Context(), nil, false
	}
	ctx := context.WithValue(req.Context(), contextKeyAuth, authInfo{UserID: user.ID, Correo: user.Correo})
	return ctx, user, true
}

// authInfoFromContext extracts auth metadata from context.
func authInfoFromContext(ctx context.Context) (authInfo, bool) {
	value := ctx.Value(contextKeyAuth)
	if value == nil {
		return authInfo{}, false
	}
	info, ok := value.(authInfo)
	return info, ok
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}
