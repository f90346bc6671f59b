package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/carecircle/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Group   *apiHandler.GroupHandler
	Task    *apiHandler.TaskHandler
	Status  *apiHandler.StatusHandler
	Feed    *apiHandler.FeedHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Protected routes
	v1 := r.Group("/api/v1")
	v1.GET("/profile", authMiddleware(handlers.Profile.GetProfile))
	v1.PUT("/profile", authMiddleware(handlers.Profile.UpdateProfile))

	v1.GET("/groups", authMiddleware(handlers.Group.ListGroups))
	v1.POST("/groups", authMiddleware(handlers.Group.CreateGroup))
	v1.POST("/groups/join", authMiddleware(handlers.Group.JoinGroup))
	v1.GET("/groups/{id}", authMiddleware(handlers.Group.GetGroup))
	v1.GET("/groups/{id}/members", authMiddleware(handlers.Group.Members))
	v1.DELETE("/groups/{id}/members/me", authMiddleware(handlers.Group.LeaveGroup))

	v1.GET("/groups/{id}/tasks", authMiddleware(handlers.Task.GetTasks))
	v1.POST("/groups/{id}/tasks", authMiddleware(handlers.Task.CreateTask))
	v1.PUT("/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	v1.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	v1.POST("/groups/{id}/statuses", authMiddleware(handlers.Status.CreateEntry))
	v1.GET("/statuses", authMiddleware(handlers.Status.ListMine))

	v1.GET("/groups/{id}/feed", authMiddleware(handlers.Feed.GetFeed))

	return r
}
