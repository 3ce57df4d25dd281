// Package goroutine provides utilities for safely launching goroutines with
// panic recovery.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/filemart-io/filemart/internal/shared/logger"
)

// SafeGo launches a goroutine with panic recovery. A panic is caught and
// logged with its stack trace instead of crashing the process. Best-effort
// side effects (notifications, counter bumps, cache invalidation) run here.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("goroutine panicked",
					"goroutine", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn()
	}()
}
