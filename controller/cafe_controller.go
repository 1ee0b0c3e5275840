package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cafestaff/apperr"
	"cafestaff/logger"
	"cafestaff/service"
)

type CafeController struct {
	cafes *service.CafeService
	log   *logger.Logger
}

func NewCafeController(cafes *service.CafeService, log *logger.Logger) *CafeController {
	return &CafeController{cafes: cafes, log: log.With("controller", "cafe")}
}

func (ctl *CafeController) GetCafes(c *gin.Context) {
	cafes, err := ctl.cafes.List(c.Request.Context(), c.Query("location"))
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    cafes,
	})
}

func (ctl *CafeController) CreateCafe(c *gin.Context) {
	var in service.CafeInput
	if err := c.ShouldBind(&in); err != nil {
		respondError(c, ctl.log, apperr.Validation("cafe.create", "invalid request body", err))
		return
	}
	logo, closeLogo, err := formUpload(c, "logo", "image")
	defer closeLogo()
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}

	cafe, err := ctl.cafes.Create(c.Request.Context(), in, logo)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Cafe created successfully",
		"data":    cafe,
	})
}

func (ctl *CafeController) UpdateCafe(c *gin.Context) {
	var patch service.CafePatch
	if err := c.ShouldBind(&patch); err != nil {
		respondError(c, ctl.log, apperr.Validation("cafe.update", "invalid request body", err))
		return
	}
	logo, closeLogo, err := formUpload(c, "logo", "image")
	defer closeLogo()
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}

	res, err := ctl.cafes.Update(c.Request.Context(), c.Param("id"), patch, logo)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	body := gin.H{
		"success": true,
		"message": "Cafe updated successfully",
		"data":    res.Cafe,
	}
	if res.Warning != nil {
		body["warning"] = warningBody(res.Warning)
	}
	c.JSON(http.StatusOK, body)
}

func (ctl *CafeController) DeleteCafe(c *gin.Context) {
	res, err := ctl.cafes.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	body := gin.H{
		"success": true,
		"message": "Cafe and associated employees deleted",
		"data": gin.H{
			"id":                res.CafeID,
			"deleted_employees": res.EmployeeIDs,
		},
	}
	if res.Warning != nil {
		body["warning"] = warningBody(res.Warning)
	}
	c.JSON(http.StatusOK, body)
}

func (ctl *CafeController) GetCafeImage(c *gin.Context) {
	logo, err := ctl.cafes.Logo(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	defer logo.Body.Close()
	c.DataFromReader(http.StatusOK, -1, logo.ContentType, logo.Body, nil)
}
