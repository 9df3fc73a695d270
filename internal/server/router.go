package server

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/auth"
	"github.com/yukikurage/project-tracker-api/internal/config"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/handlers"
	"github.com/yukikurage/project-tracker-api/internal/metrics"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"gorm.io/gorm"
)

const tokenIssuer = "project-tracker-api"

// Deps carries what the router needs from main.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Metrics *metrics.Metrics
	// Generator may be nil when no OpenAI key is configured.
	Generator services.TaskGenerator
}

// NewRouter wires repositories, services and handlers into a gin engine.
func NewRouter(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config

	store, err := newSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(deps.DB)
	projectRepo := repository.NewProjectRepository(deps.DB)
	taskRepo := repository.NewTaskRepository(deps.DB)

	var opts []policy.Option
	if deps.Metrics != nil {
		opts = append(opts, policy.WithObserver(deps.Metrics))
	}
	evaluator := policy.NewEvaluator(projectRepo, opts...)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, tokenIssuer)

	authHandler := handlers.NewAuthHandler(services.NewAuthService(userRepo, tokens))
	projectHandler := handlers.NewProjectHandler(services.NewProjectService(projectRepo, taskRepo, evaluator, cfg.RecentProjectScope))
	taskHandler := handlers.NewTaskHandler(services.NewTaskService(taskRepo, projectRepo, userRepo, evaluator, deps.Generator))
	memberHandler := handlers.NewMemberHandler(services.NewMemberService(projectRepo, userRepo, evaluator))
	userHandler := handlers.NewUserHandler(services.NewUserService(userRepo))

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := deps.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			apierrors.ServiceUnavailable(c, "Database unavailable.", err.Error())
			return
		}
		apierrors.Respond(c, http.StatusOK, gin.H{"status": "ok"}, "Project Tracker API is running")
	})

	requireAuth := middleware.RequireAuth(tokens, userRepo)
	requireProject := middleware.RequireProjectParam()

	api := r.Group("/api")
	{
		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/logout", authHandler.Logout)
		}

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("/create", projectHandler.CreateProject)
			projects.GET("/recent", projectHandler.GetRecentProject)
			projects.GET("/:projectname", requireProject, projectHandler.GetProject)
			projects.PUT("/update/:projectname", requireProject, projectHandler.UpdateProject)
		}

		members := api.Group("/members")
		members.Use(requireAuth)
		{
			members.GET("/:projectname", requireProject, memberHandler.ListMembers)
			members.POST("/add/:projectname", requireProject, memberHandler.AddMember)
			members.DELETE("/remove/:projectname/:userid", requireProject, middleware.RequireIDParams("userid"), memberHandler.RemoveMember)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("/:projectname", requireProject, taskHandler.ListTasks)
			tasks.GET("/:projectname/all", requireProject, taskHandler.ListAllTasks)
			tasks.POST("/create/:projectname", requireProject, taskHandler.CreateTask)
			tasks.PATCH("/update/status/:projectname/:taskid", requireProject, middleware.RequireIDParams("taskid"), taskHandler.UpdateTaskStatus)
			tasks.POST("/suggest/:projectname", requireProject, taskHandler.SuggestTasks)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("", userHandler.GetProfile)
			users.GET("/search/:search/:onlyUsername", userHandler.SearchUsers)
			users.PATCH("/update/username", userHandler.UpdateUsername)
		}
	}

	return r, nil
}

// newSessionStore uses Redis when REDIS_HOST is set and a signed cookie
// store otherwise.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
