package main

import (
	"github.com/gin-gonic/gin"

	"scholarship-fund.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	registryHandler *handlers.RegistryHandler
	authHandler     *handlers.AuthHandler
	eventHandler    *handlers.EventHandler
	auditHandler    *handlers.OnchainAuditHandler
	authMiddleware  gin.HandlerFunc
	ownerOnly       gin.HandlerFunc
	idempotency     gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.GET("/challenge", d.authHandler.Challenge)
			auth.POST("/verify", d.authHandler.Verify)
			auth.POST("/refresh", d.authHandler.Refresh)
			auth.GET("/me", d.authMiddleware, d.authHandler.GetMe)
		}

		// Registry reads (public)
		registry := v1.Group("/registry")
		{
			registry.GET("", d.registryHandler.GetSummary)
			registry.GET("/owner", d.registryHandler.GetOwner)
			registry.GET("/paused", d.registryHandler.GetPaused)
			registry.GET("/balance", d.registryHandler.GetBalance)
		}

		students := v1.Group("/students")
		{
			students.GET("", d.registryHandler.ListStudents)
			students.GET("/all", d.registryHandler.ListAllStudents)
			students.GET("/:address", d.registryHandler.GetStudent)
		}

		v1.GET("/accounts/:address", d.registryHandler.GetAccount)

		events := v1.Group("/events")
		{
			events.GET("", d.eventHandler.ListEvents)
			events.GET("/stream", d.eventHandler.StreamEvents)
		}

		// Caller-signed operations (protected)
		v1.POST("/deposits", d.authMiddleware, d.idempotency, d.registryHandler.Deposit)
		v1.POST("/claims", d.authMiddleware, d.registryHandler.Claim)

		// Admin routes; mutations are owner-checked by the registry itself
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware)
		{
			admin.POST("/students", d.registryHandler.AddStudent)
			admin.POST("/students/bulk", d.registryHandler.BulkAddStudents)
			admin.POST("/students/import", d.registryHandler.ImportRoster)
			admin.GET("/students/export", d.ownerOnly, d.registryHandler.ExportRoster)
			admin.PUT("/students/:address/amount", d.registryHandler.UpdateStudentAmount)
			admin.DELETE("/students/:address", d.registryHandler.RemoveStudent)

			admin.POST("/withdrawals", d.registryHandler.Withdraw)
			admin.POST("/pause", d.registryHandler.Pause)
			admin.POST("/unpause", d.registryHandler.Unpause)
			admin.POST("/ownership", d.registryHandler.TransferOwnership)

			admin.GET("/onchain/audit", d.ownerOnly, d.auditHandler.Audit)
		}
	}
}
