package handlers

import (
	"context"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"nft-swapper.backend/internal/domain/entities"
	domainerrors "nft-swapper.backend/internal/domain/errors"
	"nft-swapper.backend/internal/domain/repositories"
	"nft-swapper.backend/internal/interfaces/http/response"
	"nft-swapper.backend/internal/usecases"
	"nft-swapper.backend/pkg/utils"
)

// SwapRegistryHandler exposes the offer lifecycle of a swapper instance.
type SwapRegistryHandler struct {
	swaps *usecases.SwapRegistryUsecase
}

// NewSwapRegistryHandler creates a new swap registry handler
func NewSwapRegistryHandler(swaps *usecases.SwapRegistryUsecase) *SwapRegistryHandler {
	return &SwapRegistryHandler{swaps: swaps}
}

// CreateOfferRequest is the body of POST /registries/:address/offers.
// MakerAddress defaults to the caller; PaymentAmount is in wei.
type CreateOfferRequest struct {
	MakerAsset    AssetInput `json:"makerAsset" binding:"required"`
	TakerAsset    AssetInput `json:"takerAsset" binding:"required"`
	MakerAddress  string     `json:"makerAddress"`
	PaymentAmount string     `json:"paymentAmount"`
}

// SetExpiryRequest is the body of PUT /registries/:address/expiry. A null
// expiry removes the limit.
type SetExpiryRequest struct {
	Expiry *time.Time `json:"expiry"`
}

// GetRegistry returns a swapper instance
// GET /api/v1/registries/:address
func (h *SwapRegistryHandler) GetRegistry(c *gin.Context) {
	address, err := addressParam(c, "address")
	if err != nil {
		response.Error(c, err)
		return
	}
	registry, err := h.swaps.GetRegistry(c.Request.Context(), address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, toRegistryView(registry))
}

// SetExpiry changes the registry expiry
// PUT /api/v1/registries/:address/expiry
func (h *SwapRegistryHandler) SetExpiry(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	address, err := addressParam(c, "address")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input SetExpiryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	registry, err := h.swaps.SetExpiry(c.Request.Context(), address, caller, input.Expiry)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, toRegistryView(registry))
}

// CreateOffer records a new offer
// POST /api/v1/registries/:address/offers
func (h *SwapRegistryHandler) CreateOffer(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	address, err := addressParam(c, "address")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	input, err := req.toInput(caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	offer, err := h.swaps.CreateOffer(c.Request.Context(), address, caller, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toOfferView(offer))
}

func (r CreateOfferRequest) toInput(caller common.Address) (usecases.CreateOfferInput, error) {
	makerAsset, err := r.MakerAsset.toEntity()
	if err != nil {
		return usecases.CreateOfferInput{}, err
	}
	takerAsset, err := r.TakerAsset.toEntity()
	if err != nil {
		return usecases.CreateOfferInput{}, err
	}
	maker := caller
	if r.MakerAddress != "" {
		if maker, err = parseAddress("makerAddress", r.MakerAddress); err != nil {
			return usecases.CreateOfferInput{}, err
		}
	}
	payment := new(big.Int)
	if r.PaymentAmount != "" {
		if payment, err = utils.ParseUint256(r.PaymentAmount); err != nil {
			return usecases.CreateOfferInput{}, domainerrors.BadRequest("paymentAmount must be a uint256 wei amount")
		}
	}
	return usecases.CreateOfferInput{
		MakerAsset:    makerAsset,
		TakerAsset:    takerAsset,
		MakerAddress:  maker,
		PaymentAmount: payment,
	}, nil
}

// ListOffers lists a registry's offers
// GET /api/v1/registries/:address/offers?state=&maker=&page=&limit=
func (h *SwapRegistryHandler) ListOffers(c *gin.Context) {
	address, err := addressParam(c, "address")
	if err != nil {
		response.Error(c, err)
		return
	}

	var filter repositories.SwapOfferFilter
	if raw := c.Query("state"); raw != "" {
		state, ok := entities.ParseSwapState(raw)
		if !ok {
			response.Error(c, domainerrors.BadRequest("state must be created, completed or cancelled"))
			return
		}
		filter.State = &state
	}
	if raw := c.Query("maker"); raw != "" {
		maker, err := parseAddress("maker", raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.Maker = &maker
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	params := utils.GetPaginationParams(page, limit)

	offers, total, err := h.swaps.ListOffers(c.Request.Context(), address, filter, params.Limit, params.CalculateOffset())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"offers":     toOfferViews(offers),
		"pagination": utils.CalculateMeta(total, params.Page, params.Limit),
	})
}

// GetOffer returns a single offer
// GET /api/v1/registries/:address/offers/:id
func (h *SwapRegistryHandler) GetOffer(c *gin.Context) {
	address, err := addressParam(c, "address")
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := offerIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	offer, err := h.swaps.GetOffer(c.Request.Context(), address, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, toOfferView(offer))
}

// MakeSwap executes an offer
// POST /api/v1/registries/:address/offers/:id/swap
func (h *SwapRegistryHandler) MakeSwap(c *gin.Context) {
	h.transition(c, h.swaps.MakeSwap)
}

// CancelSwap cancels an offer
// POST /api/v1/registries/:address/offers/:id/cancel
func (h *SwapRegistryHandler) CancelSwap(c *gin.Context) {
	h.transition(c, h.swaps.CancelSwap)
}

type offerTransition func(ctx context.Context, registry, caller common.Address, id uint64) (*entities.SwapOffer, error)

func (h *SwapRegistryHandler) transition(c *gin.Context, run offerTransition) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	address, err := addressParam(c, "address")
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := offerIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	offer, err := run(c.Request.Context(), address, caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, toOfferView(offer))
}

// ListEvents returns SwapStateChanged logs
// GET /api/v1/registries/:address/events?fromLogIndex=&limit=
func (h *SwapRegistryHandler) ListEvents(c *gin.Context) {
	address, err := addressParam(c, "address")
	if err != nil {
		response.Error(c, err)
		return
	}
	from, err := strconv.ParseUint(c.DefaultQuery("fromLogIndex", "0"), 10, 64)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("fromLogIndex must be an unsigned integer"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.swaps.ListEvents(c.Request.Context(), address, from, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"events": toEventViews(events)})
}
