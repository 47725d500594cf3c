package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nft-swapper.backend/internal/infrastructure/blockchain"
	"nft-swapper.backend/internal/usecases"
	"nft-swapper.backend/pkg/crypto"
	"nft-swapper.backend/pkg/jwt"
	"nft-swapper.backend/pkg/redis"
)

// hardhat account #0, the key behind apiDeployer
const apiDeployerKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

type memoryChallenges struct {
	mu   sync.Mutex
	byID map[string]string
}

func (m *memoryChallenges) Put(_ context.Context, address, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[strings.ToLower(address)] = message
	return nil
}

func (m *memoryChallenges) Take(_ context.Context, address string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.byID[strings.ToLower(address)]
	if !ok {
		return "", redis.ErrChallengeNotFound
	}
	delete(m.byID, strings.ToLower(address))
	return msg, nil
}

func newAuthRouter(t *testing.T) (*gin.Engine, *jwt.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := jwt.NewJWTService("handler-secret", time.Hour, 24*time.Hour)
	h := NewAuthHandler(usecases.NewAuthUsecase(&memoryChallenges{byID: map[string]string{}}, svc, 5*time.Minute))

	r := gin.New()
	r.POST("/auth/challenge", h.Challenge)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.RefreshToken)
	return r, svc
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_ChallengeLoginRefresh(t *testing.T) {
	r, svc := newAuthRouter(t)

	w := postJSON(r, "/auth/challenge", `{"address":"`+apiDeployer.Hex()+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var challenge usecases.Challenge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenge))
	require.Contains(t, challenge.Message, apiDeployer.Hex())

	signature, err := crypto.SignPersonal(challenge.Message, apiDeployerKey)
	require.NoError(t, err)

	w = postJSON(r, "/auth/login", `{"address":"`+apiDeployer.Hex()+`","signature":"`+signature+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		Address      string `json:"address"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))
	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, apiDeployer.Hex(), claims.Address)

	// the challenge is single use
	w = postJSON(r, "/auth/login", `{"address":"`+apiDeployer.Hex()+`","signature":"`+signature+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(r, "/auth/refresh", `{"refreshToken":"`+tokens.AccessToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(r, "/auth/refresh", `{"refreshToken":"`+tokens.RefreshToken+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_Validation(t *testing.T) {
	r, _ := newAuthRouter(t)

	assert.Equal(t, http.StatusBadRequest, postJSON(r, "/auth/challenge", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(r, "/auth/challenge", `{"address":"0x1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(r, "/auth/login", `{"address":"`+apiDeployer.Hex()+`"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, postJSON(r, "/auth/refresh", `{"refreshToken":"nope"}`).Code)

	// signed by someone else
	w := postJSON(r, "/auth/challenge", `{"address":"`+apiMaker.Hex()+`"}`)
	var challenge usecases.Challenge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenge))
	signature, err := crypto.SignPersonal(challenge.Message, apiDeployerKey)
	require.NoError(t, err)
	w = postJSON(r, "/auth/login", `{"address":"`+apiMaker.Hex()+`","signature":"`+signature+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func newOnchainRouter(t *testing.T, call func(ctx context.Context, to string, data []byte) ([]byte, error)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	factory := blockchain.NewClientFactory()
	factory.RegisterEVMClient("http://rpc.test", blockchain.NewEVMClientWithCallView(big.NewInt(31337), call))
	h := NewOnchainHandler(usecases.NewOnchainReaderUsecase(factory, "http://rpc.test"))

	r := gin.New()
	r.GET("/onchain/erc721/:address/tokens/:id/owner", h.OwnerOf)
	r.GET("/onchain/erc721/:address/operators/:owner/:operator", h.OperatorApproval)
	r.GET("/onchain/erc20/:address/balances/:owner", h.Balance)
	return r
}

func TestOnchainHandler(t *testing.T) {
	r := newOnchainRouter(t, func(_ context.Context, _ string, data []byte) ([]byte, error) {
		switch common.Bytes2Hex(data[:4]) {
		case "6352211e":
			return common.LeftPadBytes(apiTaker.Bytes(), 32), nil
		case "70a08231":
			return common.LeftPadBytes(big.NewInt(1000).Bytes(), 32), nil
		case "dd62ed3e":
			return common.LeftPadBytes(big.NewInt(7).Bytes(), 32), nil
		case "e985e9c5":
			return common.LeftPadBytes([]byte{1}, 32), nil
		}
		return nil, errors.New("unexpected selector")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/onchain/erc721/"+apiRegistry.Hex()+"/tokens/5/owner", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), apiTaker.Hex())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/onchain/erc20/"+apiWETH.Hex()+"/balances/"+apiMaker.Hex()+"?spender="+apiRegistry.Hex(), nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"wei":"1000"`)
	assert.Contains(t, w.Body.String(), `"allowance":"7"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/onchain/erc721/"+apiRegistry.Hex()+"/operators/"+apiMaker.Hex()+"/"+apiFactory.Hex(), nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"approved":true`)
	assert.Contains(t, w.Body.String(), apiFactory.Hex())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/onchain/erc721/"+apiRegistry.Hex()+"/operators/"+apiMaker.Hex()+"/nope", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/onchain/erc721/"+apiRegistry.Hex()+"/tokens/abc/owner", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/onchain/erc20/"+apiWETH.Hex()+"/balances/"+apiMaker.Hex()+"?spender=bad", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOnchainHandler_UpstreamFailure(t *testing.T) {
	r := newOnchainRouter(t, func(context.Context, string, []byte) ([]byte, error) {
		return nil, errors.New("connection refused")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/onchain/erc721/"+apiRegistry.Hex()+"/tokens/5/owner", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "UpstreamError")
}
