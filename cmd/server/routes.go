package main

import (
	"github.com/gin-gonic/gin"
	"tontine.backend/internal/interfaces/http/handlers"
	"tontine.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler         *handlers.AuthHandler
	tontineHandler      *handlers.TontineHandler
	roundHandler        *handlers.RoundHandler
	paymentHandler      *handlers.PaymentHandler
	webhookHandler      *handlers.WebhookHandler
	notificationHandler *handlers.NotificationHandler
	verificationHandler *handlers.VerificationHandler
	adminHandler        *handlers.AdminHandler
	authMiddleware      gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/verify-email", d.authHandler.VerifyEmail)
			auth.POST("/refresh", d.authHandler.RefreshToken)
			auth.GET("/me", d.authMiddleware, d.authHandler.GetMe)
			auth.PUT("/me", d.authMiddleware, d.authHandler.UpdateMe)
			auth.POST("/logout", d.authMiddleware, d.authHandler.Logout)
		}

		// Tontine routes (protected)
		tontines := v1.Group("/tontines")
		tontines.Use(d.authMiddleware)
		{
			tontines.POST("", d.tontineHandler.CreateTontine)
			tontines.GET("", d.tontineHandler.ListTontines)
			tontines.GET("/mine", d.tontineHandler.ListMyTontines)
			tontines.POST("/join", d.tontineHandler.JoinTontine)
			tontines.GET("/:id", d.tontineHandler.GetTontine)
			tontines.POST("/:id/leave", d.tontineHandler.LeaveTontine)
			tontines.POST("/:id/cancel", d.tontineHandler.CancelTontine)
			tontines.GET("/:id/participants", d.tontineHandler.ListParticipants)
			tontines.DELETE("/:id/participants/:participationId", d.tontineHandler.RemoveParticipant)

			tontines.POST("/:id/rounds/generate", d.roundHandler.GenerateRounds)
			tontines.GET("/:id/rounds", d.roundHandler.ListRounds)
			tontines.PUT("/:id/winners/order", d.roundHandler.ReorderWinners)
		}

		// Payment routes (protected)
		v1.GET("/payments", d.authMiddleware, d.paymentHandler.ListMyPayments)
		v1.GET("/rounds/:id/payments", d.authMiddleware, d.paymentHandler.ListRoundPayments)

		// Notification routes (protected)
		notifications := v1.Group("/notifications")
		notifications.Use(d.authMiddleware)
		{
			notifications.GET("", d.notificationHandler.ListNotifications)
			notifications.POST("/read-all", d.notificationHandler.MarkAllRead)
			notifications.POST("/:id/read", d.notificationHandler.MarkRead)
		}

		// Identity verification routes (protected)
		verifications := v1.Group("/verifications")
		verifications.Use(d.authMiddleware)
		{
			verifications.POST("", d.verificationHandler.SubmitVerification)
			verifications.GET("/me", d.verificationHandler.GetMyVerification)
		}

		// Webhook for the payment provider (shared secret)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/payments", d.webhookHandler.HandlePaymentWebhook)
		}

		// Admin routes (protected)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.GET("/stats", d.adminHandler.GetStats)
			admin.GET("/users", d.adminHandler.ListUsers)
			admin.POST("/users/:id/suspend", d.adminHandler.SuspendUser)
			admin.POST("/users/:id/activate", d.adminHandler.ActivateUser)
			admin.GET("/tontines", d.adminHandler.ListTontines)

			admin.GET("/payments", d.paymentHandler.ListPayments)
			admin.POST("/payments/manual", middleware.IdempotencyMiddleware(), d.paymentHandler.RecordManualPayment)
			admin.POST("/payments/:id/confirm", middleware.IdempotencyMiddleware(), d.paymentHandler.ConfirmPayment)
			admin.POST("/payments/:id/fail", d.paymentHandler.FailPayment)
			admin.POST("/payments/:id/replace", d.paymentHandler.ReplaceFailedPayment)

			admin.POST("/rounds/:id/force-complete", d.roundHandler.ForceCompleteRound)

			admin.GET("/verifications", d.verificationHandler.ListVerifications)
			admin.POST("/verifications/:id/review", d.verificationHandler.ReviewVerification)
		}
	}
}
