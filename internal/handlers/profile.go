package handlers

import (
	"net/http"

	"github.com/ryanmoffett1/harmonydrill/internal/models"
	"github.com/ryanmoffett1/harmonydrill/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// profileContextKey is where the profile-loader middleware stores the
// resolved profile.
const profileContextKey = "profile"

// currentProfileID reads the profile the middleware bound to this
// request.
func currentProfileID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(profileContextKey)
	if !ok {
		return 0, false
	}
	p, ok := v.(*models.Profile)
	if !ok {
		return 0, false
	}
	return p.ID, true
}

type ProfileHandler struct {
	log *zap.Logger
}

func NewProfileHandler(log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{log: log}
}

// Show returns the calling profile.
func (h *ProfileHandler) Show(c *gin.Context) {
	v, ok := c.Get(profileContextKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, v)
}

// UpdateName renames the calling profile, for the leaderboard mostly.
func (h *ProfileHandler) UpdateName(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var body struct {
		DisplayName string `json:"displayName" binding:"required,max=40"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid display name"})
		return
	}

	if err := repository.UpdateProfileName(c.Request.Context(), profileID, body.DisplayName); err != nil {
		h.log.Error("Failed to update profile name", zap.Uint("profileID", profileID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	c.Status(http.StatusNoContent)
}
