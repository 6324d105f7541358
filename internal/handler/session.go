package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

const sessionContextKey = "voltahome.session"

type TokenVerifier interface {
	Verify(token string) (*domain.Session, error)
}

// Authenticate attaches the session of a valid bearer token to the request.
// Missing or invalid tokens leave the request anonymous; RequireSession
// rejects those on routes that need a caller.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		session, err := verifier.Verify(token)
		if err != nil {
			slog.DebugContext(c.Request.Context(), "bearer token rejected",
				slog.String("error", err.Error()),
			)
			c.Next()
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionFrom(c); !ok {
			respondError(c, http.StatusUnauthorized, "unauthorized", domain.ErrUnauthenticated.Error())
			return
		}
		c.Next()
	}
}

func sessionFrom(c *gin.Context) (*domain.Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*domain.Session)
	return session, ok && session != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
