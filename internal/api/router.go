package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/api/handler"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/api/middleware"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/service"
)

func SetupRouter(as *service.AuthService, us *service.UserService, vs *service.VehicleService,
	ss *service.SlotService, rs *service.RequestService, ls *service.LogService,
	authMw *middleware.AuthMiddleware) *gin.Engine {

	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authHandler := handler.NewAuthHandler(as)
	authRoutes := r.Group("/api/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/verify-otp", authHandler.VerifyOTP)
		authRoutes.POST("/resend-otp", authHandler.ResendOTP)
		authRoutes.POST("/login", authHandler.Login)
	}

	authed := r.Group("/api")
	authed.Use(authMw.Authenticate())
	{
		userHandler := handler.NewUserHandler(us)
		userRoutes := authed.Group("/users")
		{
			userRoutes.GET("/me", userHandler.Me)
			userRoutes.PUT("/me", userHandler.UpdateMe)
			userRoutes.GET("", authMw.RequireAdmin(), userHandler.List)
			userRoutes.DELETE("/:id", authMw.RequireAdmin(), userHandler.Delete)
		}

		vehicleHandler := handler.NewVehicleHandler(vs)
		vehicleRoutes := authed.Group("/vehicles")
		{
			vehicleRoutes.POST("", vehicleHandler.Create)
			vehicleRoutes.GET("", vehicleHandler.List)
			vehicleRoutes.PUT("/:id", vehicleHandler.Update)
			vehicleRoutes.DELETE("/:id", vehicleHandler.Delete)
		}

		slotHandler := handler.NewSlotHandler(ss)
		slotRoutes := authed.Group("/parking-slots")
		{
			slotRoutes.POST("/bulk", authMw.RequireAdmin(), slotHandler.BulkCreate)
			slotRoutes.GET("", slotHandler.List)
			slotRoutes.PUT("/:id", authMw.RequireAdmin(), slotHandler.Update)
			slotRoutes.DELETE("/:id", authMw.RequireAdmin(), slotHandler.Delete)
		}

		requestHandler := handler.NewRequestHandler(rs)
		requestRoutes := authed.Group("/slot-requests")
		{
			requestRoutes.POST("", requestHandler.Submit)
			requestRoutes.GET("", requestHandler.List)
			requestRoutes.PUT("/:id", requestHandler.Update)
			requestRoutes.DELETE("/:id", requestHandler.Delete)
			requestRoutes.POST("/:id/approve", authMw.RequireAdmin(), requestHandler.Approve)
			requestRoutes.POST("/:id/reject", authMw.RequireAdmin(), requestHandler.Reject)
		}

		logHandler := handler.NewLogHandler(ls)
		authed.GET("/logs", authMw.RequireAdmin(), logHandler.List)
	}

	return r
}
