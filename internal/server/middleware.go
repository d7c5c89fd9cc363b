package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medichain/internal/types"
)

const sessionKey = "medichain.session"

// bearerToken pulls the token out of an Authorization header. An empty
// string means no credentials were presented.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireSession rejects requests that do not carry a valid token.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed authorization header"})
			return
		}
		sess, err := s.auth.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// optionalSession attaches a session when a valid token is presented
// and lets the request through either way. A bad token is still a hard
// failure so that callers never silently lose persistence.
func (s *Server) optionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		sess, err := s.auth.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// requireRole must run after requireSession.
func (s *Server) requireRole(roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := currentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		for _, role := range roles {
			if sess.User.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

func currentSession(c *gin.Context) (types.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return types.Session{}, false
	}
	sess, ok := v.(types.Session)
	return sess, ok
}
