package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fiesta/internal/models/request_models"
	"fiesta/internal/services"
	"fiesta/pkg/utils"
)

type TransferController struct {
	transferService services.TransferServiceInterface
}

func NewTransferController(transferService services.TransferServiceInterface) *TransferController {
	return &TransferController{
		transferService: transferService,
	}
}

// TransferToProvider godoc
// @Summary Pay out a completed transaction to its provider
// @Description Create the provider transfer for a completed transaction; repeat calls return the existing transfer
// @Tags Transfers
// @Accept json
// @Produce json
// @Param request body request_models.CreateTransferRequest true "Create Transfer Request"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /transfers [post]
func (t *TransferController) TransferToProvider(c *gin.Context) {

	var request request_models.CreateTransferRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := t.transferService.TransferToProvider(c.Request.Context(), request.TxID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Transfer created successfully")
}

// CustomerCancel godoc
// @Summary Cancel an order on the customer's behalf
// @Description Reverse the payout and refund the customer minus the processing fee, or void an uncaptured authorization
// @Tags Transfers
// @Accept json
// @Produce json
// @Param request body request_models.CustomerCancelRequest true "Customer Cancel Request"
// @Success 200 {object} utils.APIResponse
// @Router /transfers/customer-cancel [post]
func (t *TransferController) CustomerCancel(c *gin.Context) {

	var request request_models.CustomerCancelRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := t.transferService.CustomerCancel(c.Request.Context(), request.TxID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Order canceled successfully")
}

// RefundSingleItem godoc
// @Summary Refund one item of a multi-item cart
// @Tags Transfers
// @Accept json
// @Produce json
// @Param request body request_models.RefundSingleItemRequest true "Refund Single Item Request"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /transfers/refund-item [post]
func (t *TransferController) RefundSingleItem(c *gin.Context) {

	var request request_models.RefundSingleItemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := t.transferService.RefundSingleItem(c.Request.Context(), request.CartTxID, request.ItemTxID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Item refunded successfully")
}
