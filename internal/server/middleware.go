package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/optora/internal/orgcontext"
)

const (
	HeaderOrg   = "X-Org-ID"
	HeaderStore = "X-Store-ID"
)

// OrgContext resolves the organization scope for the request. Transport
// authentication lives upstream; the engine only needs validated scope.
func (s *Server) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := s.defaultOrgID
		if raw := strings.TrimSpace(c.GetHeader(HeaderOrg)); raw != "" {
			parsed, err := snowflake.ParseString(raw)
			if err != nil {
				AbortWithError(c, newValidationError("org_id", "invalid_organization", "organization header is not a valid id"))
				return
			}
			orgID = parsed
		}
		if orgID == 0 {
			AbortWithError(c, newValidationError("org_id", "invalid_organization", "organization header is required"))
			return
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		if raw := strings.TrimSpace(c.GetHeader(HeaderStore)); raw != "" {
			storeID, err := snowflake.ParseString(raw)
			if err != nil {
				AbortWithError(c, newValidationError("store_id", "invalid_store", "store header is not a valid id"))
				return
			}
			ctx = orgcontext.WithStoreID(ctx, storeID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
