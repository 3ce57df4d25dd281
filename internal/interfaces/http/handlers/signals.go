package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/filemart-io/filemart/internal/domain/entitlement"
)

// deviceSignalsFromRequest collects the client-hint headers the fingerprint
// deriver consumes. Missing headers are fine; the deriver treats absent
// signals as empty strings.
func deviceSignalsFromRequest(c *gin.Context) entitlement.DeviceSignals {
	return entitlement.DeviceSignals{
		Platform:       c.GetHeader("Sec-CH-UA-Platform"),
		Architecture:   c.GetHeader("Sec-CH-UA-Arch"),
		Mobile:         c.GetHeader("Sec-CH-UA-Mobile"),
		AcceptLanguage: c.GetHeader("Accept-Language"),
		Model:          c.GetHeader("Sec-CH-UA-Model"),
		Brand:          c.GetHeader("Sec-CH-UA"),
	}
}
