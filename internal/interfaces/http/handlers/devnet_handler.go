package handlers

import (
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "nft-swapper.backend/internal/domain/errors"
	"nft-swapper.backend/internal/interfaces/http/response"
	"nft-swapper.backend/internal/usecases"
	"nft-swapper.backend/pkg/utils"
)

const wethDecimals = 18

// DevnetHandler drives the in-memory ledgers. Every mutating call acts as
// the authenticated wallet.
type DevnetHandler struct {
	devnet *usecases.DevnetUsecase
}

// NewDevnetHandler creates a new devnet handler
func NewDevnetHandler(devnet *usecases.DevnetUsecase) *DevnetHandler {
	return &DevnetHandler{devnet: devnet}
}

// ListCollections
// GET /api/v1/devnet/collections
func (h *DevnetHandler) ListCollections(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"collections": h.devnet.ListCollections(c.Request.Context())})
}

// DeployCollection
// POST /api/v1/devnet/collections
func (h *DevnetHandler) DeployCollection(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input struct {
		Name   string `json:"name" binding:"required"`
		Symbol string `json:"symbol" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	info, err := h.devnet.DeployCollection(c.Request.Context(), caller, input.Name, input.Symbol)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, info)
}

// Mint mints one token id, or count sequential ids
// POST /api/v1/devnet/collections/:address/mint
func (h *DevnetHandler) Mint(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	collection, err := addressParam(c, "address")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input struct {
		To      string `json:"to"`
		TokenID string `json:"tokenId"`
		Count   int    `json:"count"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	to := caller
	if input.To != "" {
		if to, err = parseAddress("to", input.To); err != nil {
			response.Error(c, err)
			return
		}
	}
	var tokenID *big.Int
	if input.TokenID != "" {
		if tokenID, err = utils.ParseUint256(input.TokenID); err != nil {
			response.Error(c, domainerrors.BadRequest("tokenId must be a uint256"))
			return
		}
	}

	ids, err := h.devnet.Mint(c.Request.Context(), caller, collection, to, tokenID, input.Count)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"collection": collection.Hex(), "to": to.Hex(), "tokenIds": ids})
}

// Approve grants a spender one token, or operator rights when tokenId is omitted
// POST /api/v1/devnet/collections/:address/approve
func (h *DevnetHandler) Approve(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	collection, err := addressParam(c, "address")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input struct {
		Spender  string `json:"spender" binding:"required"`
		TokenID  string `json:"tokenId"`
		Approved *bool  `json:"approved"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	spender, err := parseAddress("spender", input.Spender)
	if err != nil {
		response.Error(c, err)
		return
	}
	var tokenID *big.Int
	if input.TokenID != "" {
		if tokenID, err = utils.ParseUint256(input.TokenID); err != nil {
			response.Error(c, domainerrors.BadRequest("tokenId must be a uint256"))
			return
		}
	}
	approved := input.Approved == nil || *input.Approved

	if err := h.devnet.Approve(c.Request.Context(), caller, collection, spender, tokenID, approved); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"collection": collection.Hex(), "spender": spender.Hex(), "approved": approved})
}

// GetToken
// GET /api/v1/devnet/collections/:address/tokens/:id
func (h *DevnetHandler) GetToken(c *gin.Context) {
	collection, err := addressParam(c, "address")
	if err != nil {
		response.Error(c, err)
		return
	}
	tokenID, err := tokenIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	info, err := h.devnet.Token(c.Request.Context(), collection, tokenID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, info)
}

// Deposit wraps native currency, amount given in whole units (e.g. "0.1")
// POST /api/v1/devnet/weth/deposit
func (h *DevnetHandler) Deposit(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input struct {
		Amount string `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	amount, err := utils.ParseUnits(input.Amount, wethDecimals)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("amount must be a decimal with at most 18 places"))
		return
	}

	balance, err := h.devnet.Deposit(c.Request.Context(), caller, amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, balance)
}

// ApproveWrapped sets a WETH allowance; omitting amount grants the maximum
// POST /api/v1/devnet/weth/approve
func (h *DevnetHandler) ApproveWrapped(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input struct {
		Spender string `json:"spender" binding:"required"`
		Amount  string `json:"amount"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	spender, err := parseAddress("spender", input.Spender)
	if err != nil {
		response.Error(c, err)
		return
	}
	var amount *big.Int
	if input.Amount != "" {
		if amount, err = utils.ParseUnits(input.Amount, wethDecimals); err != nil {
			response.Error(c, domainerrors.BadRequest("amount must be a decimal with at most 18 places"))
			return
		}
	}

	if err := h.devnet.ApproveWrapped(c.Request.Context(), caller, spender, amount); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"owner": caller.Hex(), "spender": spender.Hex()})
}

// Balance
// GET /api/v1/devnet/weth/:owner
func (h *DevnetHandler) Balance(c *gin.Context) {
	owner, err := addressParam(c, "owner")
	if err != nil {
		response.Error(c, err)
		return
	}
	balance, err := h.devnet.Balance(c.Request.Context(), owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, balance)
}

// Withdraw unwraps WETH, amount given in whole units
// POST /api/v1/devnet/weth/withdraw
func (h *DevnetHandler) Withdraw(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input struct {
		Amount string `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	amount, err := utils.ParseUnits(input.Amount, wethDecimals)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("amount must be a decimal with at most 18 places"))
		return
	}

	balance, err := h.devnet.Withdraw(c.Request.Context(), caller, amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, balance)
}

// Transfer sends WETH from the caller to another wallet
// POST /api/v1/devnet/weth/transfer
func (h *DevnetHandler) Transfer(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input struct {
		To     string `json:"to" binding:"required"`
		Amount string `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	to, err := parseAddress("to", input.To)
	if err != nil {
		response.Error(c, err)
		return
	}
	amount, err := utils.ParseUnits(input.Amount, wethDecimals)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("amount must be a decimal with at most 18 places"))
		return
	}

	balance, err := h.devnet.Transfer(c.Request.Context(), caller, to, amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, balance)
}

// TransferCollectionOwnership
// POST /api/v1/devnet/collections/:address/transfer-ownership
func (h *DevnetHandler) TransferCollectionOwnership(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	collection, err := addressParam(c, "address")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input struct {
		NewOwner string `json:"newOwner" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	newOwner, err := parseAddress("newOwner", input.NewOwner)
	if err != nil {
		response.Error(c, err)
		return
	}

	info, err := h.devnet.TransferCollectionOwnership(c.Request.Context(), caller, collection, newOwner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, info)
}
