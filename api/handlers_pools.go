package api

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/cosmos/cosmos-sdk/types/query"
	"github.com/gin-gonic/gin"

	"github.com/colada-chain/colada/internal/sandbox"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

// poolKeyParam reads the pair from the path. Asset ids are bank denoms or
// token contract addresses.
func poolKeyParam(c *gin.Context) string {
	return types.PoolKey(
		types.ParseAssetInfo(c.Param("asset_a")),
		types.ParseAssetInfo(c.Param("asset_b")),
	)
}

func parseAmountParam(raw, name string) (math.Int, error) {
	amount, ok := math.NewIntFromString(raw)
	if !ok {
		return math.Int{}, types.ErrInvalidZeroAmount.Wrapf("%s: invalid integer %q", name, raw)
	}
	if !amount.IsPositive() {
		return math.Int{}, types.ErrInvalidZeroAmount.Wrap(name)
	}
	return amount, nil
}

// writeError maps keeper errors onto HTTP statuses
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status, code = http.StatusGatewayTimeout, "TIMEOUT"
	case errors.Is(err, types.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, types.ErrArithmeticOverflow),
		errors.Is(err, types.ErrInvariantDidNotConverge),
		errors.Is(err, types.ErrIO):
		// internal
	case errors.Is(err, sdkerrors.ErrInvalidRequest):
		status, code = http.StatusBadRequest, "INVALID_REQUEST"
	default:
		if codespace, _, _ := errorsmod.ABCIInfo(err, false); codespace == types.ModuleName {
			status, code = http.StatusBadRequest, "INVALID_REQUEST"
		}
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func (s *Server) handleGetParams(c *gin.Context) {
	var params types.Params
	err := s.withApp(c.Request.Context(), func(app *sandbox.App) (err error) {
		params, err = app.Querier.Params(app.Context())
		return err
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, params)
}

// handleListPools pages through pools. ?key= takes the base64 next_key of
// the previous page.
func (s *Server) handleListPools(c *gin.Context) {
	page := &query.PageRequest{CountTotal: true}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(c, sdkerrors.ErrInvalidRequest.Wrapf("limit: %s", err))
			return
		}
		page.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(c, sdkerrors.ErrInvalidRequest.Wrapf("offset: %s", err))
			return
		}
		page.Offset = offset
	}
	if raw := c.Query("key"); raw != "" {
		key, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			writeError(c, sdkerrors.ErrInvalidRequest.Wrapf("key: %s", err))
			return
		}
		page.Key = key
		page.CountTotal = false
	}

	var res *types.QueryPoolsResponse
	err := s.withApp(c.Request.Context(), func(app *sandbox.App) (err error) {
		res, err = app.Querier.Pools(app.Context(), &types.QueryPoolsRequest{Pagination: page})
		return err
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleGetPool(c *gin.Context) {
	poolKey := poolKeyParam(c)

	var res types.PoolResponse
	err := s.withApp(c.Request.Context(), func(app *sandbox.App) (err error) {
		res, err = app.Querier.Pool(app.Context(), poolKey)
		return err
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleGetShare(c *gin.Context) {
	poolKey := poolKeyParam(c)
	amount, err := parseAmountParam(c.Query("amount"), "amount")
	if err != nil {
		writeError(c, err)
		return
	}

	res := ShareResponse{Amount: amount}
	err = s.withApp(c.Request.Context(), func(app *sandbox.App) (err error) {
		res.Assets, err = app.Querier.Share(app.Context(), poolKey, amount)
		return err
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleComputeD(c *gin.Context) {
	poolKey := poolKeyParam(c)

	var res types.ComputeDResponse
	err := s.withApp(c.Request.Context(), func(app *sandbox.App) (err error) {
		res, err = app.Querier.ComputeD(app.Context(), poolKey)
		return err
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleObserve(c *gin.Context) {
	poolKey := poolKeyParam(c)
	secondsAgo := uint64(0)
	if raw := c.Query("seconds_ago"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(c, sdkerrors.ErrInvalidRequest.Wrapf("seconds_ago: %s", err))
			return
		}
		secondsAgo = v
	}

	var res types.OracleObservation
	err := s.withApp(c.Request.Context(), func(app *sandbox.App) (err error) {
		res, err = app.Querier.Observe(app.Context(), poolKey, secondsAgo)
		return err
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
