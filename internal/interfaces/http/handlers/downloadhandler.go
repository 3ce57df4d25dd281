package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/filemart-io/filemart/internal/application/download/usecases"
	"github.com/filemart-io/filemart/internal/shared/errors"
	"github.com/filemart-io/filemart/internal/shared/logger"
	"github.com/filemart-io/filemart/internal/shared/utils"
)

// DownloadHandler serves entitlement decisions and token redemption.
type DownloadHandler struct {
	requestDownloadUC requestDownloadUseCase
	redeemTokenUC     redeemTokenUseCase
	logger            logger.Interface
}

func NewDownloadHandler(
	requestDownloadUC requestDownloadUseCase,
	redeemTokenUC redeemTokenUseCase,
	log logger.Interface,
) *DownloadHandler {
	return &DownloadHandler{
		requestDownloadUC: requestDownloadUC,
		redeemTokenUC:     redeemTokenUC,
		logger:            log,
	}
}

type RequestDownloadRequest struct {
	FileSID  string  `json:"file_sid" validate:"required"`
	OrderSID *string `json:"order_sid"`
}

type DownloadDecisionResponse struct {
	Status      string     `json:"status"`
	Reason      string     `json:"reason,omitempty"`
	Message     string     `json:"message,omitempty"`
	Token       string     `json:"token,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Reused      bool       `json:"reused,omitempty"`
	Fingerprint string     `json:"fingerprint,omitempty"`
}

// RequestDownload runs the full entitlement decision for the authenticated
// user and the requesting device.
func (h *DownloadHandler) RequestDownload(c *gin.Context) {
	userID, ok := utils.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req RequestDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for download request", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.RequestDownloadCommand{
		UserID:    userID,
		FileSID:   req.FileSID,
		OrderSID:  req.OrderSID,
		Signals:   deviceSignalsFromRequest(c),
		IPAddress: c.ClientIP(),
	}

	result, err := h.requestDownloadUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp := DownloadDecisionResponse{
		Status:      string(result.Status),
		Reason:      result.Reason,
		Message:     result.Message,
		Token:       result.Token,
		Reused:      result.Reused,
		Fingerprint: result.Fingerprint,
	}
	if !result.ExpiresAt.IsZero() {
		expiresAt := result.ExpiresAt
		resp.ExpiresAt = &expiresAt
	}

	utils.SuccessResponse(c, decisionStatusCode(result), "", resp)
}

// decisionStatusCode maps the entitlement decision to an HTTP status. Denials
// are 403 except for ineligible files, which read as 404 to avoid leaking
// catalog contents.
func decisionStatusCode(result *usecases.RequestDownloadResult) int {
	switch result.Status {
	case usecases.DownloadGranted:
		return http.StatusOK
	case usecases.DownloadNeedsConfirmation:
		return http.StatusAccepted
	default:
		if result.Reason == errors.ReasonFileNotEligible {
			return http.StatusNotFound
		}
		return http.StatusForbidden
	}
}

type RedeemTokenResponse struct {
	FileReference string `json:"file_reference"`
	FileTitle     string `json:"file_title"`
	ByteSize      uint64 `json:"byte_size"`
}

// RedeemToken resolves a previously issued token to its file reference.
func (h *DownloadHandler) RedeemToken(c *gin.Context) {
	userID, ok := utils.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	cmd := usecases.RedeemTokenCommand{
		UserID: userID,
		Token:  c.Param("token"),
	}

	result, err := h.redeemTokenUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", RedeemTokenResponse{
		FileReference: result.FileReference,
		FileTitle:     result.FileTitle,
		ByteSize:      result.ByteSize,
	})
}
