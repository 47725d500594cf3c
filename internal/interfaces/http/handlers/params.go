package handlers

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"nft-swapper.backend/internal/domain/entities"
	domainerrors "nft-swapper.backend/internal/domain/errors"
	"nft-swapper.backend/internal/interfaces/http/middleware"
	"nft-swapper.backend/pkg/utils"
)

// AssetInput is the JSON form of an ERC-721 token reference.
type AssetInput struct {
	Registry string `json:"registry" binding:"required"`
	TokenID  string `json:"tokenId" binding:"required"`
}

func (a AssetInput) toEntity() (entities.AssetRef, error) {
	registry, err := parseAddress("registry", a.Registry)
	if err != nil {
		return entities.AssetRef{}, err
	}
	id, err := utils.ParseUint256(a.TokenID)
	if err != nil {
		return entities.AssetRef{}, domainerrors.BadRequest("tokenId must be a uint256")
	}
	return entities.AssetRef{Registry: registry, TokenID: id}, nil
}

func parseAddress(field, raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, domainerrors.BadRequest(field + " must be a 20-byte hex address")
	}
	return common.HexToAddress(raw), nil
}

func addressParam(c *gin.Context, name string) (common.Address, error) {
	return parseAddress(name, c.Param(name))
}

func offerIDParam(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, domainerrors.BadRequest("offer id must be an unsigned integer")
	}
	return id, nil
}

func tokenIDParam(c *gin.Context) (*big.Int, error) {
	id, err := utils.ParseUint256(c.Param("id"))
	if err != nil {
		return nil, domainerrors.BadRequest("token id must be a uint256")
	}
	return id, nil
}

func callerAddress(c *gin.Context) (common.Address, error) {
	caller, ok := middleware.GetCallerAddress(c)
	if !ok {
		return common.Address{}, domainerrors.Unauthorized("wallet not authenticated")
	}
	return caller, nil
}
