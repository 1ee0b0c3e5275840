package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cafestaff/database"
)

type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

func (ctl *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := database.Ping(ctx, ctl.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
