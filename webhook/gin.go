package webhook

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinHandler wraps a dispatcher as a gin route handler:
//
//	r := gin.Default()
//	r.POST("/webhook", webhook.GinHandler(d))
func GinHandler(d *Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "read error"})
			return
		}

		resp, err := d.Dispatch(c.Request.Context(), body)
		if err != nil {
			status, errBody := errorStatus(err)
			c.JSON(status, errBody)
			return
		}

		c.JSON(resp.StatusCode, resp.Body)
	}
}
