package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pauloeilson-hash/ctrlpgto/internal/store"
)

// Health returns a JSON health check response. It probes the configured
// storage backend with a read; a missing key still proves the backend is
// reachable.
func Health(kv store.KV) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		storeStatus := "connected"
		if _, err := kv.Get(ctx, store.KeyPreferencias); err != nil && !errors.Is(err, store.ErrKeyNotFound) {
			storeStatus = "error"
		}

		status := http.StatusOK
		if storeStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"store": storeStatus,
		})
	}
}
