package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/peerev/peer-review-api/internal/middleware"
	"github.com/peerev/peer-review-api/internal/models"
	"github.com/peerev/peer-review-api/internal/service"
)

// RouterDeps bundles everything the route table needs.
type RouterDeps struct {
	AuthService *service.AuthService

	Auth        *AuthHandler
	Assignments *AssignmentHandler
	Reviews     *ReviewHandler
	Users       *UserHandler
	Instructor  *InstructorHandler
	Admin       *AdminHandler
}

// RegisterRoutes mounts the API route table under the given prefix. All
// application routes require authentication; the instructor and admin groups
// are additionally gated on role.
func RegisterRoutes(r *gin.Engine, prefix string, deps RouterDeps) {
	api := r.Group(prefix)

	auth := api.Group("/auth")
	auth.POST("/register", deps.Auth.Register)
	auth.POST("/login", deps.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(deps.AuthService))

	authed.GET("/auth/me", deps.Auth.Me)
	authed.PUT("/auth/updatedetails", deps.Auth.UpdateDetails)

	assignments := authed.Group("/assignments")
	assignments.POST("/create", deps.Assignments.Create)
	assignments.GET("/my", deps.Assignments.Mine)
	assignments.GET("/to-review", deps.Assignments.ToReview)
	assignments.GET("/download/:id", deps.Assignments.Download)
	assignments.GET("/:id", deps.Assignments.Get)

	reviews := authed.Group("/reviews")
	reviews.POST("/submit", deps.Reviews.Submit)
	reviews.GET("/assignment/:id", deps.Reviews.ListForAssignment)
	reviews.POST("/rate", deps.Reviews.Rate)

	users := authed.Group("/users")
	users.GET("/stats", deps.Users.Stats)
	users.GET("/leaderboard", deps.Users.Leaderboard)

	instructor := authed.Group("/instructor")
	instructor.Use(middleware.RequireRoles(models.RoleInstructor))
	instructor.GET("/assignments", deps.Instructor.ListAssignments)
	instructor.POST("/close-assignment", deps.Instructor.CloseAssignment)
	instructor.GET("/export/:id", deps.Instructor.ExportReviews)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/users", deps.Admin.ListUsers)
	admin.PATCH("/users/role", deps.Admin.UpdateUserRole)
	admin.PATCH("/users/status", deps.Admin.UpdateUserStatus)
	admin.POST("/users/points", deps.Admin.AdjustUserPoints)
	admin.GET("/reviews", deps.Admin.ListReviews)
	admin.POST("/reviews/flag", deps.Admin.FlagReview)
	admin.DELETE("/reviews/:id", deps.Admin.DeleteReview)
	admin.GET("/analytics", deps.Admin.Analytics)
}
