package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tdngan/news-survey-server/controllers"
	"github.com/tdngan/news-survey-server/middleware"
)

func SetupRoutes(r *gin.Engine) {
	r.GET("/health", controllers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
		}

		api.GET("/me", middleware.AuthJWT(), controllers.Me)
		api.GET("/home", middleware.OptionalAuth(), controllers.Home)

		profile := api.Group("/profile")
		profile.Use(middleware.AuthJWT())
		{
			profile.GET("", controllers.GetProfile)
			profile.PUT("", controllers.UpdateProfile)
		}

		articles := api.Group("/articles")
		{
			articles.GET("", controllers.ListArticles)
			articles.POST("", middleware.RateLimitArticleCreate(), controllers.CreateArticle)
			articles.GET("/:slug", controllers.GetArticle)
			articles.DELETE("/:slug", middleware.AuthJWT(), middleware.RequireSuperuser(), controllers.DeleteArticle)
		}

		surveys := api.Group("/surveys")
		surveys.Use(middleware.AuthJWT())
		{
			surveys.GET("", middleware.RequireVIP(), controllers.ListSurveys)
			surveys.GET("/:id", middleware.RequireVIP(), controllers.GetSurvey)
			surveys.POST("/:id/responses", middleware.RequireVIP(), controllers.SubmitResponse)
			surveys.GET("/:id/submitted", middleware.RequireVIP(), controllers.GetSubmitted)

			surveys.POST("", middleware.RequireSuperuser(), controllers.CreateSurvey)
			surveys.DELETE("/:id", middleware.RequireSuperuser(), controllers.DeleteSurvey)
			surveys.POST("/:id/questions", middleware.RequireSuperuser(), controllers.AddQuestion)
		}

		api.POST("/questions/:id/choices", middleware.AuthJWT(), middleware.RequireSuperuser(), controllers.AddChoice)
		api.DELETE("/questions/:id", middleware.AuthJWT(), middleware.RequireSuperuser(), controllers.DeleteQuestion)
		api.DELETE("/choices/:id", middleware.AuthJWT(), middleware.RequireSuperuser(), controllers.DeleteChoice)

		admin := api.Group("/admin")
		admin.Use(middleware.AuthJWT(), middleware.RequireSuperuser())
		{
			admin.GET("/dashboard", controllers.Dashboard)
			admin.GET("/users", controllers.ListUsers)
			admin.PUT("/users/:id/vip", controllers.SetUserVIP)
			admin.DELETE("/users/:id", controllers.DeleteUser)
			admin.GET("/survey-results", controllers.SurveyResults)
			admin.POST("/survey-results/export", controllers.CreateExport)
		}

		api.GET("/exports/:job_id", middleware.AuthJWT(), middleware.RequireSuperuser(), controllers.GetExport)
		api.POST("/uploads", middleware.AuthJWT(), controllers.UploadImage)
	}
}
