package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filemart-io/filemart/internal/application/device/usecases"
	"github.com/filemart-io/filemart/internal/domain/subscription"
	"github.com/filemart-io/filemart/internal/interfaces/http/handlers/testutil"
)

type mockTrustDeviceUC struct {
	result  *usecases.TrustDeviceResult
	err     error
	lastCmd usecases.TrustDeviceCommand
}

func (m *mockTrustDeviceUC) Execute(ctx context.Context, cmd usecases.TrustDeviceCommand) (*usecases.TrustDeviceResult, error) {
	m.lastCmd = cmd
	return m.result, m.err
}

type mockListDevicesUC struct {
	result *usecases.ListDevicesResult
	err    error
}

func (m *mockListDevicesUC) Execute(ctx context.Context, cmd usecases.ListDevicesCommand) (*usecases.ListDevicesResult, error) {
	return m.result, m.err
}

type mockRemoveDeviceUC struct {
	result  *usecases.RemoveDeviceResult
	err     error
	lastCmd usecases.RemoveDeviceCommand
}

func (m *mockRemoveDeviceUC) Execute(ctx context.Context, cmd usecases.RemoveDeviceCommand) (*usecases.RemoveDeviceResult, error) {
	m.lastCmd = cmd
	return m.result, m.err
}

func newDeviceHandler(trust *mockTrustDeviceUC, list *mockListDevicesUC, remove *mockRemoveDeviceUC) *DeviceHandler {
	if trust == nil {
		trust = &mockTrustDeviceUC{}
	}
	if list == nil {
		list = &mockListDevicesUC{}
	}
	if remove == nil {
		remove = &mockRemoveDeviceUC{}
	}
	return NewDeviceHandler(trust, list, remove, noopLogger{})
}

func TestDeviceHandler_TrustDevice_Added(t *testing.T) {
	trustUC := &mockTrustDeviceUC{
		result: &usecases.TrustDeviceResult{
			Status:      usecases.TrustAdded,
			Fingerprint: "abcdef0123456789abcdef0123456789",
			DeviceCount: 2,
			MaxDevices:  3,
		},
	}
	h := newDeviceHandler(trustUC, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/devices", TrustDeviceRequest{DisplayName: "Work laptop"})
	testutil.SetAuthContext(c, 42)
	testutil.SetDeviceHeaders(c, "macOS", "arm64", "?0", "en-US", "", "Chromium")

	h.TrustDevice(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var body TrustDeviceResponse
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	assert.Equal(t, "trusted", body.Status)
	assert.Equal(t, 2, body.DeviceCount)
	assert.Equal(t, 3, body.MaxDevices)

	assert.Equal(t, uint(42), trustUC.lastCmd.UserID)
	assert.Equal(t, "Work laptop", trustUC.lastCmd.DisplayName)
	assert.Equal(t, "macOS", trustUC.lastCmd.Signals.Platform)
}

func TestDeviceHandler_TrustDevice_LimitExceeded(t *testing.T) {
	trustUC := &mockTrustDeviceUC{
		result: &usecases.TrustDeviceResult{
			Status:      usecases.TrustLimitExceeded,
			DeviceCount: 3,
			MaxDevices:  3,
		},
	}
	h := newDeviceHandler(trustUC, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/devices", TrustDeviceRequest{})
	testutil.SetAuthContext(c, 42)

	h.TrustDevice(c)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var body TrustDeviceResponse
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	assert.Equal(t, "limit_exceeded", body.Status)
}

func TestDeviceHandler_TrustDevice_AlreadyTrusted(t *testing.T) {
	trustUC := &mockTrustDeviceUC{
		result: &usecases.TrustDeviceResult{
			Status:      usecases.TrustAlreadyTrusted,
			Fingerprint: "abcdef0123456789abcdef0123456789",
			DeviceCount: 1,
			MaxDevices:  3,
		},
	}
	h := newDeviceHandler(trustUC, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/devices", TrustDeviceRequest{})
	testutil.SetAuthContext(c, 42)

	h.TrustDevice(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeviceHandler_TrustDevice_NoSubscription(t *testing.T) {
	trustUC := &mockTrustDeviceUC{err: subscription.ErrNoCurrentSubscription}
	h := newDeviceHandler(trustUC, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/devices", TrustDeviceRequest{})
	testutil.SetAuthContext(c, 42)

	h.TrustDevice(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeviceHandler_ListDevices(t *testing.T) {
	trustedAt := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	listUC := &mockListDevicesUC{
		result: &usecases.ListDevicesResult{
			Devices: []usecases.DeviceInfo{
				{
					Fingerprint:     "abcdef0123456789abcdef0123456789",
					DisplayName:     "Work laptop",
					Platform:        "macos",
					TrustedAt:       trustedAt,
					LastUsedAt:      trustedAt,
					IsCurrentDevice: true,
				},
			},
			MaxDevices: 3,
		},
	}
	h := newDeviceHandler(nil, listUC, nil)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/devices", nil)
	testutil.SetAuthContext(c, 42)

	h.ListDevices(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var body ListDevicesResponse
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	require.Len(t, body.Devices, 1)
	assert.Equal(t, "Work laptop", body.Devices[0].DisplayName)
	assert.True(t, body.Devices[0].IsCurrentDevice)
	assert.Equal(t, 3, body.MaxDevices)
}

func TestDeviceHandler_ListDevices_Empty(t *testing.T) {
	listUC := &mockListDevicesUC{
		result: &usecases.ListDevicesResult{Devices: []usecases.DeviceInfo{}, MaxDevices: 3},
	}
	h := newDeviceHandler(nil, listUC, nil)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/devices", nil)
	testutil.SetAuthContext(c, 42)

	h.ListDevices(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var body ListDevicesResponse
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	assert.Empty(t, body.Devices)
}

func TestDeviceHandler_RemoveDevice(t *testing.T) {
	removeUC := &mockRemoveDeviceUC{
		result: &usecases.RemoveDeviceResult{Removed: true, DeviceCount: 1},
	}
	h := newDeviceHandler(nil, nil, removeUC)

	c, w := testutil.NewTestContext(http.MethodDelete, "/api/v1/devices/abcdef0123456789abcdef0123456789", nil)
	testutil.SetAuthContext(c, 42)
	testutil.SetURLParam(c, "fingerprint", "abcdef0123456789abcdef0123456789")

	h.RemoveDevice(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var body RemoveDeviceResponse
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	assert.True(t, body.Removed)
	assert.Equal(t, 1, body.DeviceCount)

	assert.Equal(t, "abcdef0123456789abcdef0123456789", removeUC.lastCmd.Fingerprint)
}

func TestDeviceHandler_RemoveDevice_BadFingerprint(t *testing.T) {
	removeUC := &mockRemoveDeviceUC{}
	h := newDeviceHandler(nil, nil, removeUC)

	c, w := testutil.NewTestContext(http.MethodDelete, "/api/v1/devices/not-hex", nil)
	testutil.SetAuthContext(c, 42)
	testutil.SetURLParam(c, "fingerprint", "not-hex")

	h.RemoveDevice(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, removeUC.lastCmd.Fingerprint)
}
