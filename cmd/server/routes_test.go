package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"nft-swapper.backend/internal/interfaces/http/handlers"
)

func testRouteDeps(withDevnet bool) routeDeps {
	d := routeDeps{
		authHandler:     &handlers.AuthHandler{},
		factoryHandler:  &handlers.SwapFactoryHandler{},
		registryHandler: &handlers.SwapRegistryHandler{},
		onchainHandler:  &handlers.OnchainHandler{},
		authMiddleware: func(c *gin.Context) {
			c.Next()
		},
	}
	if withDevnet {
		d.devnetHandler = &handlers.DevnetHandler{}
	}
	return d
}

func TestRegisterAPIV1Routes_RegistersKeyRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerAPIV1Routes(r, testRouteDeps(true))

	routes := r.Routes()
	expects := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/auth/challenge"},
		{"POST", "/api/v1/auth/login"},
		{"GET", "/api/v1/factory"},
		{"GET", "/api/v1/factory/current"},
		{"POST", "/api/v1/factory/registries"},
		{"POST", "/api/v1/factory/transfer-ownership"},
		{"GET", "/api/v1/registries/:address"},
		{"PUT", "/api/v1/registries/:address/expiry"},
		{"POST", "/api/v1/registries/:address/offers"},
		{"GET", "/api/v1/registries/:address/offers/:id"},
		{"POST", "/api/v1/registries/:address/offers/:id/swap"},
		{"POST", "/api/v1/registries/:address/offers/:id/cancel"},
		{"GET", "/api/v1/registries/:address/events"},
		{"GET", "/api/v1/onchain/erc721/:address/tokens/:id/owner"},
		{"GET", "/api/v1/onchain/erc721/:address/operators/:owner/:operator"},
		{"POST", "/api/v1/devnet/collections/:address/mint"},
		{"GET", "/api/v1/devnet/weth/:owner"},
		{"POST", "/api/v1/devnet/weth/withdraw"},
		{"POST", "/api/v1/devnet/weth/transfer"},
		{"POST", "/api/v1/devnet/collections/:address/transfer-ownership"},
	}
	for _, exp := range expects {
		assert.Truef(t, hasRoute(routes, exp.method, exp.path), "route %s %s not registered", exp.method, exp.path)
	}
}

func TestRegisterAPIV1Routes_WithoutDevnet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerHealthRoute(r)
	registerAPIV1Routes(r, testRouteDeps(false))

	assert.False(t, hasRoute(r.Routes(), "POST", "/api/v1/devnet/collections"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
