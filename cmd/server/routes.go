package main

import (
	"github.com/gin-gonic/gin"
	"token-registry.backend/internal/interfaces/http/handlers"
	"token-registry.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler     *handlers.AuthHandler
	registryHandler *handlers.RegistryHandler
	tokenHandler    *handlers.TokenHandler
	adminHandler    *handlers.AdminHandler
	treasuryHandler *handlers.TreasuryHandler
	authMiddleware  gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		v1.POST("/auth/login", d.authHandler.Login)

		// Registry reads (public)
		registry := v1.Group("/registry")
		{
			registry.GET("", d.registryHandler.GetInfo)
			registry.GET("/contract-uri", d.registryHandler.GetContractURI)
		}
		v1.GET("/events", d.registryHandler.ListEvents)

		// Token routes
		tokens := v1.Group("/tokens")
		{
			tokens.GET("/next-id", d.registryHandler.GetNextTokenID)
			tokens.POST("", d.authMiddleware, middleware.IdempotencyMiddleware(), d.tokenHandler.Mint)
			tokens.GET("/:id", d.tokenHandler.GetToken)
			tokens.GET("/:id/uri", d.tokenHandler.GetTokenURI)
			tokens.PUT("/:id/uri", d.authMiddleware, d.tokenHandler.SetTokenURI)
			tokens.POST("/:id/transfer", d.authMiddleware, d.tokenHandler.Transfer)
			tokens.GET("/:id/royalty", d.tokenHandler.GetRoyalty)
		}

		v1.GET("/accounts/:address/balance", d.tokenHandler.GetBalance)

		// Treasury routes (public, deposits are verified on chain)
		v1.POST("/treasury/deposits", d.treasuryHandler.RecordDeposit)

		// Admin routes (owner checks happen in the usecase)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware)
		{
			admin.POST("/pause", d.adminHandler.Pause)
			admin.POST("/unpause", d.adminHandler.Unpause)
			admin.PUT("/payment-receiver", d.adminHandler.UpdatePaymentReceiver)
			admin.PUT("/contract-uri", d.adminHandler.UpdateContractURI)
			admin.PUT("/owner", d.adminHandler.TransferOwnership)
			admin.POST("/withdraw", d.adminHandler.Withdraw)
		}
	}
}
