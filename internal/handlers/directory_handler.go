package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talentops/Interview-Autopilot/internal/models"
	"gorm.io/gorm"
)

// DirectoryHandler exposes the read-only people lists the recruiter UI needs
// to build a propose request. Not part of the engine's write path.
type DirectoryHandler struct {
	DB *gorm.DB
}

func NewDirectoryHandler(db *gorm.DB) *DirectoryHandler {
	return &DirectoryHandler{DB: db}
}

// ListUsers is the GET /users endpoint
func (h *DirectoryHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("id asc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

// ListCandidates is the GET /candidates endpoint
func (h *DirectoryHandler) ListCandidates(c *gin.Context) {
	var candidates []models.Candidate
	if err := h.DB.Order("id asc").Find(&candidates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, candidates)
}
