package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cafestaff/apperr"
	"cafestaff/logger"
	"cafestaff/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EmployeeController struct {
	employees *service.EmployeeService
	log       *logger.Logger
}

func NewEmployeeController(employees *service.EmployeeService, log *logger.Logger) *EmployeeController {
	return &EmployeeController{employees: employees, log: log.With("controller", "employee")}
}

func (ctl *EmployeeController) GetEmployees(c *gin.Context) {
	employees, err := ctl.employees.List(c.Request.Context(), cafeFilter(c))
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    employees,
	})
}

func (ctl *EmployeeController) CreateEmployee(c *gin.Context) {
	var in service.EmployeeInput
	if err := c.ShouldBind(&in); err != nil {
		respondError(c, ctl.log, apperr.Validation("employee.create", "invalid request body", err))
		return
	}
	emp, err := ctl.employees.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Employee created successfully",
		"data":    emp,
	})
}

func (ctl *EmployeeController) UpdateEmployee(c *gin.Context) {
	var patch service.EmployeePatch
	if err := c.ShouldBind(&patch); err != nil {
		respondError(c, ctl.log, apperr.Validation("employee.update", "invalid request body", err))
		return
	}
	emp, err := ctl.employees.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Employee updated successfully",
		"data":    emp,
	})
}

func (ctl *EmployeeController) DeleteEmployee(c *gin.Context) {
	if err := ctl.employees.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, ctl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Employee deleted",
	})
}

func (ctl *EmployeeController) ExportEmployees(c *gin.Context) {
	f, err := ctl.employees.Export(c.Request.Context(), cafeFilter(c))
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", `attachment; filename="employees.xlsx"`)
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		ctl.log.Error("Failed to write workbook", "error", err)
	}
}

func (ctl *EmployeeController) ImportEmployees(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, ctl.log, apperr.Validation("employee.import", "Excel file is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, ctl.log, apperr.Validation("employee.import", "Unable to open Excel file", err))
		return
	}
	defer file.Close()

	res, err := ctl.employees.Import(c.Request.Context(), file)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	if len(res.Created) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"kind":    apperr.KindValidation,
			"error":   "No valid rows found",
			"data":    res,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Bulk employee upload successful",
		"count":   len(res.Created),
		"data":    res,
	})
}

// cafeFilter accepts both ?cafe= and the older ?cafeName=.
func cafeFilter(c *gin.Context) string {
	if v := c.Query("cafe"); v != "" {
		return v
	}
	return c.Query("cafeName")
}
