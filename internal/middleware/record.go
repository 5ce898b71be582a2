package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionRecord signs out any parent or admin whose session record has
// lapsed. It must run after Sessions.
func SessionRecord(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		req := SessionFrom(c)
		if req == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		if req.Records().Valid(ctx) {
			c.Next()
			return
		}

		if parent := req.Parent(ctx); parent.State().SignedIn() {
			logger.Info("parent session record expired", zap.String("user_id", parent.State().Identity.ID))
			parent.SignOut(ctx)
		}
		if admin := req.Admin(ctx); admin.State().Admin != nil {
			logger.Info("admin session record expired", zap.String("admin_id", admin.State().Admin.ID))
			admin.SignOut(ctx)
		}
		c.Next()
	}
}
