package public

import (
	"github.com/aurix-store/internal/http/response"

	"github.com/gin-gonic/gin"
)

// getSessionID 取会话标识；会话中间件缺席或未写入时直接拒绝
func getSessionID(c *gin.Context) (string, bool) {
	value, ok := c.Get("session_id")
	if !ok {
		respondError(c, response.CodeUnauthorized, "error.session_required", nil)
		return "", false
	}
	id, ok := value.(string)
	if !ok || id == "" {
		respondError(c, response.CodeUnauthorized, "error.session_required", nil)
		return "", false
	}
	return id, true
}
