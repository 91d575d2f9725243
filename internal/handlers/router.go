package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/services"
	"github.com/prof-it/school-service/internal/utils"
)

type HandlerManager struct {
	authHandler         *AuthHandler
	userHandler         *UserHandler
	classroomHandler    *ClassroomHandler
	groupHandler        *GroupHandler
	scheduleHandler     *ScheduleHandler
	attendanceHandler   *AttendanceHandler
	paymentHandler      *PaymentHandler
	notificationHandler *NotificationHandler
	reportHandler       *ReportHandler
	authMiddleware      *JWTAuthMiddleware
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		authHandler:         NewAuthHandler(serviceManager.Auth(), logger),
		userHandler:         NewUserHandler(serviceManager.User(), logger),
		classroomHandler:    NewClassroomHandler(serviceManager.Classroom(), logger),
		groupHandler:        NewGroupHandler(serviceManager.Group(), logger),
		scheduleHandler:     NewScheduleHandler(serviceManager.Schedule(), serviceManager.Availability(), logger),
		attendanceHandler:   NewAttendanceHandler(serviceManager.Attendance(), logger),
		paymentHandler:      NewPaymentHandler(serviceManager.Payment(), logger),
		notificationHandler: NewNotificationHandler(serviceManager.Notification(), logger),
		reportHandler:       NewReportHandler(serviceManager.Report(), logger),
		authMiddleware:      NewJWTAuthMiddleware(serviceManager.Auth()),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", hm.authHandler.Register)
		auth.POST("/login", hm.authHandler.Login)
		auth.POST("/forgot-password", hm.authHandler.RequestPasswordReset)
		auth.POST("/reset-password", hm.authHandler.ResetPassword)
	}

	// Everything below requires a valid token
	protected := v1.Group("")
	protected.Use(hm.authMiddleware.AuthMiddleware())
	{
		adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)
		staffOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin)

		// Admin-side auth operations
		protected.POST("/auth/register-by-admin", adminOnly, hm.authHandler.RegisterByAdmin)
		protected.POST("/auth/approve-user/:userId", adminOnly, hm.authHandler.ApproveUser)
		protected.GET("/auth/pending-users", adminOnly, hm.authHandler.PendingUsers)

		// User routes
		users := protected.Group("/users")
		{
			users.GET("/me", hm.userHandler.GetMe)
			users.GET("", adminOnly, hm.userHandler.ListUsers)
			users.GET("/:id", adminOnly, hm.userHandler.GetUser)
			users.PUT("/:id", hm.userHandler.UpdateUser)
			users.DELETE("/:id", adminOnly, hm.userHandler.DeleteUser)
		}

		// Classroom routes
		classrooms := protected.Group("/classrooms")
		{
			classrooms.POST("", adminOnly, hm.classroomHandler.CreateClassroom)
			classrooms.GET("", hm.classroomHandler.ListClassrooms)
			classrooms.GET("/:id", hm.classroomHandler.GetClassroom)
			classrooms.PUT("/:id", adminOnly, hm.classroomHandler.UpdateClassroom)
			classrooms.DELETE("/:id", adminOnly, hm.classroomHandler.DeleteClassroom)

			// Availability resolver
			classrooms.GET("/schedule/all", hm.scheduleHandler.GetAllAvailability)
			classrooms.GET("/:id/schedule", hm.scheduleHandler.GetClassroomAvailability)
		}

		// Group routes
		groups := protected.Group("/groups")
		{
			groups.POST("", adminOnly, hm.groupHandler.CreateGroup)
			groups.GET("", hm.groupHandler.ListGroups)
			groups.GET("/:id", hm.groupHandler.GetGroup)
			groups.PUT("/:id", staffOnly, hm.groupHandler.UpdateGroup)
			groups.DELETE("/:id", adminOnly, hm.groupHandler.DeleteGroup)
			groups.POST("/:id/students/:student_id", staffOnly, hm.groupHandler.AddStudent)
			groups.DELETE("/:id/students/:student_id", staffOnly, hm.groupHandler.RemoveStudent)
		}

		// Schedule routes
		schedules := protected.Group("/schedules")
		{
			schedules.POST("", adminOnly, hm.scheduleHandler.CreateSchedule)
			schedules.GET("", hm.scheduleHandler.ListSchedules)
			schedules.GET("/:id", hm.scheduleHandler.GetSchedule)
			schedules.PUT("/:id", staffOnly, hm.scheduleHandler.UpdateSchedule)
			schedules.DELETE("/:id", staffOnly, hm.scheduleHandler.DeleteSchedule)
		}

		// Attendance routes
		attendances := protected.Group("/attendances")
		{
			attendances.POST("", staffOnly, hm.attendanceHandler.CreateAttendance)
			attendances.GET("", hm.attendanceHandler.ListAttendances)
			attendances.GET("/:id", staffOnly, hm.attendanceHandler.GetAttendance)
			attendances.PUT("/:id", staffOnly, hm.attendanceHandler.UpdateAttendance)
			attendances.DELETE("/:id", staffOnly, hm.attendanceHandler.DeleteAttendance)
		}

		// Payment routes
		payments := protected.Group("/payments")
		{
			payments.POST("", adminOnly, hm.paymentHandler.CreatePayment)
			payments.GET("", hm.paymentHandler.ListPayments)
			payments.GET("/:id", hm.paymentHandler.GetPayment)
			payments.PUT("/:id", adminOnly, hm.paymentHandler.UpdatePayment)
			payments.POST("/:id/pay", adminOnly, hm.paymentHandler.MarkPaid)
			payments.DELETE("/:id", adminOnly, hm.paymentHandler.DeletePayment)
			payments.POST("/reminders", adminOnly, hm.paymentHandler.SendDueReminders)
		}

		// Notification routes
		notifications := protected.Group("/notifications")
		{
			notifications.GET("", hm.notificationHandler.ListNotifications)
			notifications.PATCH("/:id/read", hm.notificationHandler.MarkRead)
			notifications.PATCH("/read-all", hm.notificationHandler.MarkAllRead)
		}

		// Report routes - admin only
		reports := protected.Group("/reports")
		reports.Use(adminOnly)
		{
			reports.GET("/payments.xlsx", hm.reportHandler.ExportPayments)
			reports.GET("/attendances.xlsx", hm.reportHandler.ExportAttendances)
		}
	}
}

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "school-service",
	})
}
