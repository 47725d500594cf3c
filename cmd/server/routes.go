package main

import (
	"github.com/gin-gonic/gin"
	"nft-swapper.backend/internal/interfaces/http/handlers"
	"nft-swapper.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler     *handlers.AuthHandler
	factoryHandler  *handlers.SwapFactoryHandler
	registryHandler *handlers.SwapRegistryHandler
	devnetHandler   *handlers.DevnetHandler
	onchainHandler  *handlers.OnchainHandler
	authMiddleware  gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/challenge", d.authHandler.Challenge)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.RefreshToken)
		}

		factory := v1.Group("/factory")
		{
			factory.GET("", d.factoryHandler.GetFactory)
			factory.GET("/current", d.factoryHandler.CurrentSwapperInstance)
			factory.POST("/registries", d.authMiddleware, middleware.IdempotencyMiddleware(), d.factoryHandler.CreateRegistry)
			factory.POST("/transfer-ownership", d.authMiddleware, d.factoryHandler.TransferOwnership)
		}

		registries := v1.Group("/registries/:address")
		{
			registries.GET("", d.registryHandler.GetRegistry)
			registries.PUT("/expiry", d.authMiddleware, d.registryHandler.SetExpiry)
			registries.GET("/events", d.registryHandler.ListEvents)

			registries.POST("/offers", d.authMiddleware, middleware.IdempotencyMiddleware(), d.registryHandler.CreateOffer)
			registries.GET("/offers", d.registryHandler.ListOffers)
			registries.GET("/offers/:id", d.registryHandler.GetOffer)
			registries.POST("/offers/:id/swap", d.authMiddleware, d.registryHandler.MakeSwap)
			registries.POST("/offers/:id/cancel", d.authMiddleware, d.registryHandler.CancelSwap)
		}

		// On-chain reads (public)
		onchain := v1.Group("/onchain")
		{
			onchain.GET("/erc721/:address/tokens/:id/owner", d.onchainHandler.OwnerOf)
			onchain.GET("/erc721/:address/operators/:owner/:operator", d.onchainHandler.OperatorApproval)
			onchain.GET("/erc20/:address/balances/:owner", d.onchainHandler.Balance)
		}

		if d.devnetHandler == nil {
			return
		}

		// Devnet ledgers (protected)
		dev := v1.Group("/devnet")
		dev.Use(d.authMiddleware)
		{
			dev.GET("/collections", d.devnetHandler.ListCollections)
			dev.POST("/collections", d.devnetHandler.DeployCollection)
			dev.POST("/collections/:address/mint", d.devnetHandler.Mint)
			dev.POST("/collections/:address/approve", d.devnetHandler.Approve)
			dev.GET("/collections/:address/tokens/:id", d.devnetHandler.GetToken)
			dev.POST("/collections/:address/transfer-ownership", d.devnetHandler.TransferCollectionOwnership)
			dev.POST("/weth/deposit", d.devnetHandler.Deposit)
			dev.POST("/weth/withdraw", d.devnetHandler.Withdraw)
			dev.POST("/weth/transfer", d.devnetHandler.Transfer)
			dev.POST("/weth/approve", d.devnetHandler.ApproveWrapped)
			dev.GET("/weth/:owner", d.devnetHandler.Balance)
		}
	}
}
