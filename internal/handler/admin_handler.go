package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

type AdminChecker interface {
	IsAdmin(ctx context.Context, session *domain.Session) (bool, error)
}

type sessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type checkAdminResponse struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	IsAdmin         bool         `json:"isAdmin"`
	User            *sessionUser `json:"user"`
}

type AdminHandler struct {
	checker AdminChecker
}

func NewAdminHandler(checker AdminChecker) *AdminHandler {
	return &AdminHandler{checker: checker}
}

// HandleCheckAdmin never fails for anonymous callers; it reports them as
// unauthenticated instead.
func (h *AdminHandler) HandleCheckAdmin(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		c.JSON(http.StatusOK, checkAdminResponse{})
		return
	}

	isAdmin, err := h.checker.IsAdmin(c.Request.Context(), session)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkAdminResponse{
		IsAuthenticated: true,
		IsAdmin:         isAdmin,
		User: &sessionUser{
			ID:    session.UserID,
			Email: session.Email,
			Name:  session.Name,
		},
	})
}

// RequireAdmin must run after RequireSession.
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessionFrom(c)
		if !ok {
			respondDomainError(c, domain.ErrUnauthenticated)
			return
		}

		isAdmin, err := checker.IsAdmin(c.Request.Context(), session)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		if !isAdmin {
			respondDomainError(c, domain.ErrForbidden)
			return
		}
		c.Next()
	}
}
