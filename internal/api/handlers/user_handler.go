package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/ora-committee-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-committee-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// User Handler
// ============================================

type UserHandler struct {
	userService service.UserService
	errs        *errorResponder
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// GetByUsername looks a user up so they can be added to a committee.
func (h *UserHandler) GetByUsername(c *gin.Context) {
	user, err := h.userService.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	c.JSON(http.StatusOK, toPublicUserResponse(user))
}
