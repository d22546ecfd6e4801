package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/courselab/courselab-back/docs"
	"github.com/courselab/courselab-back/internal/auth"
	"github.com/courselab/courselab-back/internal/config"
	"github.com/courselab/courselab-back/internal/db"
	"github.com/courselab/courselab-back/internal/models"
)

// @title           CourseLab API
// @version         1.0
// @description     Course publishing platform backend.
// @host            localhost:8000
// @BasePath        /
func SetupRouter(cfg *config.Config, store *db.Store) *gin.Engine {
	signer := auth.NewCookieSigner(cfg.SessionSecret)
	providers := auth.Providers(cfg)

	r := gin.Default()
	r.Use(auth.Middleware(signer, store))

	r.GET("/health", func(c *gin.Context) {
		if err := store.Ping(); err != nil {
			c.JSON(500, gin.H{"status": "db_ping_error"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Account
	r.POST("/login", auth.RequireAnonymous(), auth.LoginHandler(store, signer))
	r.POST("/signup", auth.RequireAnonymous(), auth.SignupHandler(store, signer))
	r.POST("/logout", auth.LogoutHandler(store, signer))
	r.GET("/auth/:provider/login", auth.RequireAnonymous(), auth.OAuthLoginHandler(providers))
	r.GET("/auth/:provider/callback", auth.OAuthCallbackHandler(store, signer, providers))

	// Public resources
	r.GET("/resources/course-images/:imageId", CourseImageHandler(store))
	r.GET("/resources/user-images/:imageId", UserImageHandler(store))
	r.GET("/resources/download-user-data", auth.RequireUser(), DownloadUserDataHandler(store, cfg.BaseURL))

	// Language preference
	r.GET("/settings/change-language/:lang", ChangeLanguageRedirect)
	r.POST("/settings/change-language/:lang", ChangeLanguageHandler(store))

	// Courses: browsing is public, writes need a user
	r.GET("/users/:username/courses", ListCoursesHandler(store))
	r.GET("/users/:username/courses/:courseId", GetCourseHandler(store))

	courses := r.Group("/users/:username/courses")
	courses.Use(auth.RequireUser())
	{
		courses.POST("", SaveCourseHandler(store))
		courses.POST("/:courseId/edit", SaveCourseHandler(store))
		courses.POST("/:courseId", DeleteCourseHandler(store))
	}

	settings := r.Group("/settings")
	settings.Use(auth.RequireUser())
	{
		settings.GET("/connections", ListConnectionsHandler(store))
		settings.DELETE("/connections/:id", DeleteConnectionHandler(store))
		settings.POST("/delete-account", DeleteAccountHandler(store))
	}

	admin := r.Group("/admin")
	admin.Use(auth.RequireUser(), auth.RequirePermission(store, models.PermissionQuery{
		Action: "read",
		Entity: "course",
		Access: []string{models.AccessAny},
	}))
	{
		admin.GET("/reports/courses.xlsx", CoursesReportHandler(store))
	}

	return r
}
