package handlers

import (
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	domainerrors "scholarship-fund.backend/internal/domain/errors"
	"scholarship-fund.backend/internal/interfaces/http/middleware"
	"scholarship-fund.backend/pkg/utils"
)

func parseAddress(field, raw string) (common.Address, error) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return common.Address{}, domainerrors.BadRequest(field + " must be a 0x-prefixed 20-byte hex address")
	}
	return common.HexToAddress(raw), nil
}

func parseAmount(field, raw string) (*big.Int, error) {
	v, err := utils.ParseAmount(raw)
	if errors.Is(err, utils.ErrAmountTooLarge) {
		return nil, domainerrors.BadRequest(field + " exceeds the uint256 range")
	}
	if err != nil {
		return nil, domainerrors.BadRequest(field + " must be a non-negative base-10 integer")
	}
	return v, nil
}

// queryInt64 reads an optional integer query parameter
func queryInt64(c *gin.Context, name string, def int64) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domainerrors.BadRequest(name + " must be an integer")
	}
	return v, nil
}

func mustCaller(c *gin.Context) (common.Address, bool) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code":    domainerrors.CodeUnauthorized,
			"message": "Authentication required",
		})
	}
	return caller, ok
}
