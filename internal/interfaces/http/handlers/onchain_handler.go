package handlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"nft-swapper.backend/internal/interfaces/http/response"
	"nft-swapper.backend/internal/usecases"
)

// OnchainHandler reads live ERC-721 and ERC-20 state over JSON-RPC.
type OnchainHandler struct {
	reader *usecases.OnchainReaderUsecase
}

// NewOnchainHandler creates a new on-chain reader handler
func NewOnchainHandler(reader *usecases.OnchainReaderUsecase) *OnchainHandler {
	return &OnchainHandler{reader: reader}
}

// OwnerOf
// GET /api/v1/onchain/erc721/:address/tokens/:id/owner
func (h *OnchainHandler) OwnerOf(c *gin.Context) {
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
	owner, err := h.reader.OwnerOf(c.Request.Context(), collection, tokenID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, owner)
}

// OperatorApproval
// GET /api/v1/onchain/erc721/:address/operators/:owner/:operator
func (h *OnchainHandler) OperatorApproval(c *gin.Context) {
	collection, err := addressParam(c, "address")
	if err != nil {
		response.Error(c, err)
		return
	}
	owner, err := addressParam(c, "owner")
	if err != nil {
		response.Error(c, err)
		return
	}
	operator, err := addressParam(c, "operator")
	if err != nil {
		response.Error(c, err)
		return
	}
	approval, err := h.reader.OperatorApproval(c.Request.Context(), collection, owner, operator)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, approval)
}

// Balance returns balanceOf, plus allowance when ?spender= is given
// GET /api/v1/onchain/erc20/:address/balances/:owner
func (h *OnchainHandler) Balance(c *gin.Context) {
	token, err := addressParam(c, "address")
	if err != nil {
		response.Error(c, err)
		return
	}
	owner, err := addressParam(c, "owner")
	if err != nil {
		response.Error(c, err)
		return
	}
	var spender *common.Address
	if raw := c.Query("spender"); raw != "" {
		s, err := parseAddress("spender", raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		spender = &s
	}

	balance, err := h.reader.Balance(c.Request.Context(), token, owner, spender)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, balance)
}
