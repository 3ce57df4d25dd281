package handlers

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/filemart-io/filemart/internal/application/device/usecases"
	"github.com/filemart-io/filemart/internal/domain/subscription"
	"github.com/filemart-io/filemart/internal/shared/errors"
	"github.com/filemart-io/filemart/internal/shared/logger"
	"github.com/filemart-io/filemart/internal/shared/utils"
)

// DeviceHandler manages the trusted-device allow-list of the caller's
// current subscription.
type DeviceHandler struct {
	trustDeviceUC  trustDeviceUseCase
	listDevicesUC  listDevicesUseCase
	removeDeviceUC removeDeviceUseCase
	logger         logger.Interface
}

func NewDeviceHandler(
	trustDeviceUC trustDeviceUseCase,
	listDevicesUC listDevicesUseCase,
	removeDeviceUC removeDeviceUseCase,
	log logger.Interface,
) *DeviceHandler {
	return &DeviceHandler{
		trustDeviceUC:  trustDeviceUC,
		listDevicesUC:  listDevicesUC,
		removeDeviceUC: removeDeviceUC,
		logger:         log,
	}
}

type TrustDeviceRequest struct {
	DisplayName string `json:"display_name" validate:"max=100"`
}

type TrustDeviceResponse struct {
	Status      string `json:"status"`
	Fingerprint string `json:"fingerprint,omitempty"`
	DeviceCount int    `json:"device_count"`
	MaxDevices  int    `json:"max_devices"`
}

// TrustDevice confirms the requesting device onto the allow-list. The
// fingerprint is derived server-side from the same headers the download
// decision uses, so a client cannot trust a device it is not on.
func (h *DeviceHandler) TrustDevice(c *gin.Context) {
	userID, ok := utils.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req TrustDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for trust device", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.TrustDeviceCommand{
		UserID:      userID,
		Signals:     deviceSignalsFromRequest(c),
		DisplayName: req.DisplayName,
		IPAddress:   c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
	}

	result, err := h.trustDeviceUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, translateSubscriptionError(err))
		return
	}

	resp := TrustDeviceResponse{
		Status:      string(result.Status),
		Fingerprint: result.Fingerprint,
		DeviceCount: result.DeviceCount,
		MaxDevices:  result.MaxDevices,
	}

	statusCode := http.StatusOK
	switch result.Status {
	case usecases.TrustAdded:
		statusCode = http.StatusCreated
	case usecases.TrustLimitExceeded:
		statusCode = http.StatusForbidden
	}

	utils.SuccessResponse(c, statusCode, "", resp)
}

type DeviceResponse struct {
	Fingerprint     string    `json:"fingerprint"`
	DisplayName     string    `json:"display_name"`
	Platform        string    `json:"platform"`
	IPAddress       string    `json:"ip_address"`
	TrustedAt       time.Time `json:"trusted_at"`
	LastUsedAt      time.Time `json:"last_used_at"`
	IsCurrentDevice bool      `json:"is_current_device"`
}

type ListDevicesResponse struct {
	Devices    []DeviceResponse `json:"devices"`
	MaxDevices int              `json:"max_devices"`
}

// ListDevices returns the allow-list with the requesting device marked.
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	userID, ok := utils.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	cmd := usecases.ListDevicesCommand{
		UserID:  userID,
		Signals: deviceSignalsFromRequest(c),
	}

	result, err := h.listDevicesUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, translateSubscriptionError(err))
		return
	}

	resp := ListDevicesResponse{
		Devices:    make([]DeviceResponse, 0, len(result.Devices)),
		MaxDevices: result.MaxDevices,
	}
	for _, d := range result.Devices {
		resp.Devices = append(resp.Devices, DeviceResponse{
			Fingerprint:     d.Fingerprint,
			DisplayName:     d.DisplayName,
			Platform:        d.Platform,
			IPAddress:       d.IPAddress,
			TrustedAt:       d.TrustedAt,
			LastUsedAt:      d.LastUsedAt,
			IsCurrentDevice: d.IsCurrentDevice,
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

type RemoveDeviceResponse struct {
	Removed     bool `json:"removed"`
	DeviceCount int  `json:"device_count"`
}

// RemoveDevice revokes a trusted device by fingerprint.
func (h *DeviceHandler) RemoveDevice(c *gin.Context) {
	userID, ok := utils.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	fingerprint := c.Param("fingerprint")
	if err := utils.ValidateFingerprint(fingerprint); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.RemoveDeviceCommand{
		UserID:      userID,
		Fingerprint: fingerprint,
	}

	result, err := h.removeDeviceUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, translateSubscriptionError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", RemoveDeviceResponse{
		Removed:     result.Removed,
		DeviceCount: result.DeviceCount,
	})
}

// translateSubscriptionError maps domain subscription errors to the API error
// taxonomy.
func translateSubscriptionError(err error) error {
	if stderrors.Is(err, subscription.ErrNoCurrentSubscription) {
		return errors.NewNotFoundError("no active subscription")
	}
	if stderrors.Is(err, subscription.ErrSubscriptionNotFound) {
		return errors.NewNotFoundError("subscription not found")
	}
	return err
}
