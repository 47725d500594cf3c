package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"nft-swapper.backend/internal/domain/entities"
	domainerrors "nft-swapper.backend/internal/domain/errors"
	"nft-swapper.backend/internal/interfaces/http/response"
	"nft-swapper.backend/internal/usecases"
)

// SwapFactoryHandler exposes the swapper factory.
type SwapFactoryHandler struct {
	factory *usecases.SwapFactoryUsecase
}

// NewSwapFactoryHandler creates a new swap factory handler
func NewSwapFactoryHandler(factory *usecases.SwapFactoryUsecase) *SwapFactoryHandler {
	return &SwapFactoryHandler{factory: factory}
}

// CreateRegistryRequest is the body of POST /factory/registries. The seed
// offer is only created when both assets are present.
type CreateRegistryRequest struct {
	MakerAsset *AssetInput `json:"makerAsset"`
	TakerAsset *AssetInput `json:"takerAsset"`
	Expiry     *time.Time  `json:"expiry"`
}

// TransferOwnershipRequest is the body of POST /factory/transfer-ownership.
type TransferOwnershipRequest struct {
	NewOwner string `json:"newOwner" binding:"required"`
}

// GetFactory returns the factory state
// GET /api/v1/factory
func (h *SwapFactoryHandler) GetFactory(c *gin.Context) {
	factory, err := h.factory.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, toFactoryView(factory))
}

// CurrentSwapperInstance returns the latest created registry, null before
// the first create
// GET /api/v1/factory/current
func (h *SwapFactoryHandler) CurrentSwapperInstance(c *gin.Context) {
	current, err := h.factory.CurrentSwapperInstance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"currentSwapperInstance": hexOrNil(current)})
}

// CreateRegistry deploys a new swapper instance owned by the caller
// POST /api/v1/factory/registries
func (h *SwapFactoryHandler) CreateRegistry(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req CreateRegistryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, domainerrors.BadRequest(err.Error()))
			return
		}
	}

	input := usecases.CreateRegistryInput{Expiry: req.Expiry}
	if input.MakerAsset, err = optionalAsset(req.MakerAsset); err != nil {
		response.Error(c, err)
		return
	}
	if input.TakerAsset, err = optionalAsset(req.TakerAsset); err != nil {
		response.Error(c, err)
		return
	}

	registry, seed, err := h.factory.Create(c.Request.Context(), caller, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	body := gin.H{"registry": toRegistryView(registry)}
	if seed != nil {
		body["offer"] = toOfferView(seed)
	}
	response.Success(c, http.StatusCreated, body)
}

// TransferOwnership hands the factory to a new owner
// POST /api/v1/factory/transfer-ownership
func (h *SwapFactoryHandler) TransferOwnership(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req TransferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	newOwner, err := parseAddress("newOwner", req.NewOwner)
	if err != nil {
		response.Error(c, err)
		return
	}

	factory, err := h.factory.TransferOwnership(c.Request.Context(), caller, newOwner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, toFactoryView(factory))
}

func optionalAsset(in *AssetInput) (*entities.AssetRef, error) {
	if in == nil {
		return nil, nil
	}
	ref, err := in.toEntity()
	if err != nil {
		return nil, err
	}
	return &ref, nil
}
