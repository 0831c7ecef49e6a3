package router

import (
	"civicdesk/internal/handlers"
	"civicdesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	issueHandler := handlers.NewIssueHandler()
	repostHandler := handlers.NewRepostHandler()
	commentHandler := handlers.NewCommentHandler()
	adminHandler := handlers.NewAdminHandler()

	// Citizen API
	user := r.Group("/api/user")
	user.POST("/request-otp", authHandler.RequestOTP) // send login code
	user.POST("/verify-otp", authHandler.VerifyOTP)   // check code, issue token

	userAuth := user.Group("/")
	userAuth.Use(middleware.Authenticate(), middleware.RequireUser())
	{
		userAuth.POST("/issues", issueHandler.Create)  // file a new issue
		userAuth.GET("/issues", issueHandler.List)     // own issues, filter/sort
		userAuth.GET("/issues/:id", issueHandler.Get)  // single issue

		userAuth.GET("/issues/:id/comments", commentHandler.ListByIssue) // admin replies on own issue

		userAuth.POST("/issues/:id/repost", repostHandler.Repost)     // endorse
		userAuth.DELETE("/issues/:id/repost", repostHandler.Unrepost) // withdraw endorsement
		userAuth.GET("/issues/:id/repost", repostHandler.Check)       // endorsement status
	}

	// Admin API
	admin := r.Group("/api/admin")
	admin.POST("/login", authHandler.AdminLogin)

	adminAuth := admin.Group("/")
	adminAuth.Use(middleware.Authenticate(), middleware.RequireAdmin())
	{
		adminAuth.GET("/issues", adminHandler.ListIssues)                  // all issues, filter/sort
		adminAuth.GET("/issues/:id", adminHandler.GetIssue)                // single issue
		adminAuth.PUT("/issues/:id/status", adminHandler.UpdateIssueStatus) // triage

		adminAuth.POST("/issues/:id/comments", commentHandler.Create)   // annotate
		adminAuth.GET("/issues/:id/comments", commentHandler.ListByIssue)
		adminAuth.PUT("/comments/:commentId", commentHandler.Update)
		adminAuth.DELETE("/comments/:commentId", commentHandler.Delete)
	}
}
