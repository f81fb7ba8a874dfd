package api

import (
	"net/http"
	"strings"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/gin-gonic/gin"

	"github.com/colada-chain/colada/internal/sandbox"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

// handleSimulate quotes ?amount= of ?offer= for ?ask=
func (s *Server) handleSimulate(c *gin.Context) {
	offerID, askID := c.Query("offer"), c.Query("ask")
	if offerID == "" || askID == "" {
		writeError(c, sdkerrors.ErrInvalidRequest.Wrap("offer and ask are required"))
		return
	}
	amount, err := parseAmountParam(c.Query("amount"), "amount")
	if err != nil {
		writeError(c, err)
		return
	}

	res := QuoteResponse{
		Offer: types.NewAsset(types.ParseAssetInfo(offerID), amount),
		Ask:   types.ParseAssetInfo(askID),
	}
	err = s.withApp(c.Request.Context(), func(app *sandbox.App) (err error) {
		res.Quote, err = app.Querier.Simulation(app.Context(), res.Offer, res.Ask)
		return err
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleSimulateRoute quotes ?amount= along ?path=a,b,c
func (s *Server) handleSimulateRoute(c *gin.Context) {
	amount, err := parseAmountParam(c.Query("amount"), "amount")
	if err != nil {
		writeError(c, err)
		return
	}
	ids := strings.Split(c.Query("path"), ",")
	if len(ids) < 2 {
		writeError(c, types.ErrEmptyOperations.Wrap("path needs at least two assets"))
		return
	}

	ops := make([]types.SwapOperation, 0, len(ids)-1)
	for i := 1; i < len(ids); i++ {
		ops = append(ops, types.NewPoolOperation(
			types.ParseAssetInfo(strings.TrimSpace(ids[i-1])),
			types.ParseAssetInfo(strings.TrimSpace(ids[i])),
		))
	}

	res := RouteQuoteResponse{OfferAmount: amount, Operations: ops}
	err = s.withApp(c.Request.Context(), func(app *sandbox.App) (err error) {
		res.Quote, err = app.Querier.SimulateSwapOperations(app.Context(), amount, ops)
		return err
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
