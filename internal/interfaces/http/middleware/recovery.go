package middleware

import (
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/filemart-io/filemart/internal/shared/logger"
	"github.com/filemart-io/filemart/internal/shared/utils"
)

// Recovery converts panics into 500 responses and logs the stack trace.
// Broken client connections are logged and aborted without a response.
func Recovery(log logger.Interface) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		if checkBrokenConnection(recovered) {
			log.Warnw("client connection broken",
				"path", c.Request.URL.Path,
				"error", recovered,
			)
			c.Abort()
			return
		}

		httpRequest, _ := httputil.DumpRequest(c.Request, false)
		headers := strings.Split(string(httpRequest), "\r\n")
		for i, header := range headers {
			if strings.HasPrefix(header, "Authorization:") {
				headers[i] = "Authorization: *"
			}
		}

		log.Errorw("panic recovered",
			"path", c.Request.URL.Path,
			"panic", recovered,
			"request", strings.Join(headers, "\r\n"),
		)

		utils.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
		c.Abort()
	})
}

func checkBrokenConnection(recovered interface{}) bool {
	ne, ok := recovered.(*net.OpError)
	if !ok {
		return false
	}
	se, ok := ne.Err.(*os.SyscallError)
	if !ok {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
