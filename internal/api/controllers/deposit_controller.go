package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fiesta/internal/models/request_models"
	"fiesta/internal/services"
	"fiesta/pkg/utils"
)

type DepositController struct {
	depositService services.DepositServiceInterface
}

func NewDepositController(depositService services.DepositServiceInterface) *DepositController {
	return &DepositController{
		depositService: depositService,
	}
}

// AuthorizeDeposit godoc
// @Summary Authorize a security deposit hold
// @Description Place a manual-capture hold on the customer's saved card within 24h of the booking start
// @Tags Deposits
// @Accept json
// @Produce json
// @Param request body request_models.AuthorizeDepositRequest true "Authorize Deposit Request"
// @Success 200 {object} utils.APIResponse
// @Router /deposits/authorize [post]
func (d *DepositController) AuthorizeDeposit(c *gin.Context) {

	var request request_models.AuthorizeDepositRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := d.depositService.AuthorizeDeposit(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Deposit authorized successfully")
}

// ClaimDeposit godoc
// @Summary Claim part of a security deposit
// @Description Capture the claimed amount plus the processing-fee buffer and pay it out to the provider
// @Tags Deposits
// @Accept json
// @Produce json
// @Param request body request_models.ClaimDepositRequest true "Claim Deposit Request"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /deposits/claim [post]
func (d *DepositController) ClaimDeposit(c *gin.Context) {

	var request request_models.ClaimDepositRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := d.depositService.ClaimDeposit(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Deposit claimed successfully")
}

// ReleaseDeposit godoc
// @Summary Release a security deposit hold
// @Tags Deposits
// @Accept json
// @Produce json
// @Param request body request_models.ReleaseDepositRequest true "Release Deposit Request"
// @Success 200 {object} utils.APIResponse
// @Router /deposits/release [post]
func (d *DepositController) ReleaseDeposit(c *gin.Context) {

	var request request_models.ReleaseDepositRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := d.depositService.ReleaseDeposit(c.Request.Context(), request.IntentID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"paymentIntentId": request.IntentID}, "Deposit released successfully")
}
