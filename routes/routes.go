package routes

import (
	"journal-editorial-api/controllers"
	"journal-editorial-api/middleware"
	"journal-editorial-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Journal Editorial API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Notifications
			protected.GET("/notifications", controllers.GetNotifications)
			protected.PUT("/notifications/:id/read", controllers.MarkNotificationRead)

			// Submissions
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.GET("/:id/history", controllers.GetSubmissionHistory)

				// Author lifecycle actions
				submissions.POST("", middleware.RequireRole(models.RoleAuthor), controllers.CreateSubmission)
				submissions.PUT("/:id", middleware.RequireRole(models.RoleAuthor), controllers.UpdateSubmission)
				submissions.POST("/:id/submit", middleware.RequireRole(models.RoleAuthor), controllers.SubmitSubmission)
				submissions.POST("/:id/resubmit", middleware.RequireRole(models.RoleAuthor), controllers.ResubmitSubmission)
				submissions.POST("/:id/withdraw", middleware.RequireRole(models.RoleAuthor), controllers.WithdrawSubmission)

				// Documents
				submissions.POST("/:id/documents", controllers.UploadSubmissionDocument)
				submissions.GET("/:id/documents/:document_id/download", controllers.DownloadSubmissionDocument)

				// Review invitations (editor only)
				submissions.POST("/:id/reviews", middleware.RequireRole(models.RoleEditor), controllers.InviteReviewer)
				submissions.GET("/:id/reviewer-recommendations", middleware.RequireRole(models.RoleEditor), controllers.GetReviewerRecommendations)

				// Editorial decisions
				submissions.POST("/:id/decisions", middleware.RequireRole(models.RoleEditor), controllers.RecordDecision)
				submissions.GET("/:id/decisions", controllers.GetDecisions)

				// Copyediting assignment (editor only)
				submissions.POST("/:id/copyediting", middleware.RequireRole(models.RoleEditor), controllers.AssignCopyeditor)

				// Production and publication (editor only)
				submissions.POST("/:id/production", middleware.RequireRole(models.RoleEditor), controllers.AssignProduction)
				submissions.POST("/:id/schedule", middleware.RequireRole(models.RoleEditor), controllers.SchedulePublication)
				submissions.POST("/:id/publish", middleware.RequireRole(models.RoleEditor), controllers.PublishSubmission)
				submissions.POST("/:id/schedule/cancel", middleware.RequireRole(models.RoleEditor), controllers.CancelPublication)
			}

			// Review assignments
			reviews := protected.Group("/reviews")
			{
				reviews.GET("", controllers.GetReviews)
				reviews.POST("/:id/accept", middleware.RequireRole(models.RoleReviewer), controllers.AcceptReview)
				reviews.POST("/:id/decline", middleware.RequireRole(models.RoleReviewer), controllers.DeclineReview)
				reviews.POST("/:id/complete", middleware.RequireRole(models.RoleReviewer), controllers.CompleteReview)
			}

			// Copyediting workflow
			copyediting := protected.Group("/copyediting")
			{
				copyediting.GET("/:id", controllers.GetCopyeditingAssignment)
				copyediting.POST("/:id/files", middleware.RequireRole(models.RoleCopyeditor), controllers.UploadCopyeditingFile)
				copyediting.POST("/:id/complete", middleware.RequireRole(models.RoleEditor), controllers.CompleteCopyediting)
			}

			// Copyediting files (own prefix so the file id does not collide
			// with the assignment id in the route tree)
			copyeditingFiles := protected.Group("/copyediting-files")
			{
				copyeditingFiles.PUT("/:file_id", middleware.RequireRole(models.RoleCopyeditor), controllers.ReplaceCopyeditingFile)
				copyeditingFiles.POST("/:file_id/submit", middleware.RequireRole(models.RoleCopyeditor), controllers.SubmitCopyedit)
				copyeditingFiles.POST("/:file_id/confirm", middleware.RequireRole(models.RoleAuthor), controllers.ConfirmFinal)
			}

			// Production workflow
			production := protected.Group("/production")
			{
				production.GET("/:id", controllers.GetProductionAssignment)
				production.POST("/:id/galleys", controllers.UploadGalley)
				production.POST("/:id/complete", middleware.RequireRole(models.RoleEditor), controllers.CompleteProduction)
			}

			// Galleys
			galleys := protected.Group("/galleys")
			{
				galleys.POST("/:galley_id/approve", middleware.RequireRole(models.RoleEditor), controllers.ApproveGalley)
				galleys.POST("/:galley_id/publish", middleware.RequireRole(models.RoleEditor), controllers.PublishGalley)
			}

			// Discussions (copyediting and production threads)
			discussions := protected.Group("/discussions")
			{
				discussions.GET("", controllers.GetDiscussions)
				discussions.POST("", controllers.CreateDiscussion)
				discussions.GET("/:id", controllers.GetDiscussion)
				discussions.POST("/:id/messages", controllers.AddDiscussionMessage)
				discussions.POST("/:id/resolve", middleware.RequireRole(models.RoleEditor), controllers.ResolveDiscussion)
				discussions.POST("/:id/close", controllers.CloseDiscussion)
				discussions.POST("/:id/reopen", middleware.RequireRole(models.RoleEditor), controllers.ReopenDiscussion)
			}
		}
	}
}
