package route

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"cafestaff/config"
	"cafestaff/controller"
	"cafestaff/logger"
	"cafestaff/service"
	"cafestaff/utils"
)

// NewRouter builds the gin engine with middleware and every route mounted.
func NewRouter(cfg *config.Config, log *logger.Logger, db *gorm.DB, svcs *service.Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(log), utils.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Origins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	health := controller.NewHealthController(db)
	router.GET("/healthz", health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group(cfg.APIPrefix)
	CafeRoutes(api, controller.NewCafeController(svcs.Cafes, log))
	EmployeeRoutes(api, controller.NewEmployeeController(svcs.Employees, log))
	return router
}

func CafeRoutes(api *gin.RouterGroup, ctl *controller.CafeController) {
	cafeGroup := api.Group("/cafe")
	{
		cafeGroup.GET("", ctl.GetCafes)
		cafeGroup.POST("", ctl.CreateCafe)
		cafeGroup.PUT("/:id", ctl.UpdateCafe)
		cafeGroup.DELETE("/:id", ctl.DeleteCafe)
		cafeGroup.GET("/image/:id", ctl.GetCafeImage)
	}
}

func EmployeeRoutes(api *gin.RouterGroup, ctl *controller.EmployeeController) {
	employeeGroup := api.Group("/employee")
	{
		employeeGroup.GET("", ctl.GetEmployees)
		employeeGroup.POST("", ctl.CreateEmployee)
		employeeGroup.GET("/export", ctl.ExportEmployees)
		employeeGroup.POST("/import", ctl.ImportEmployees)
		employeeGroup.PUT("/:id", ctl.UpdateEmployee)
		employeeGroup.DELETE("/:id", ctl.DeleteEmployee)
	}
}
