package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mgc/inscriptions/internal/app/controllers"
)

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, studentController *controllers.StudentController) {
	router.GET("/healthz", controllers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/students", studentController.CreateStudent)
		api.POST("/check-duplicates", studentController.CheckDuplicates)
		api.GET("/students", studentController.ListStudents)
	}
}
