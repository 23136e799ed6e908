package router

import (
	"github.com/ryanmoffett1/harmonydrill/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const profileSessionKey = "profileID"

// ProfileLoader binds an anonymous profile to the cookie session. A
// first-time visitor gets a fresh profile; a returning one is loaded
// from the database. A stale cookie pointing at a deleted profile is
// replaced rather than 500ing the request.
func ProfileLoader(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		if id, ok := session.Get(profileSessionKey).(uint); ok {
			profile, err := repository.GetProfileByID(c.Request.Context(), id)
			if err == nil {
				c.Set("profile", profile)
				c.Next()
				return
			}
			log.Warn("Session points at missing profile, reissuing", zap.Uint("profileID", id))
		}

		profile, err := repository.CreateProfile("anonymous")
		if err != nil {
			log.Error("Failed to create profile", zap.Error(err))
			c.AbortWithStatus(500)
			return
		}
		session.Set(profileSessionKey, profile.ID)
		if err := session.Save(); err != nil {
			log.Error("Failed to save session cookie", zap.Error(err))
			c.AbortWithStatus(500)
			return
		}
		c.Set("profile", profile)
		c.Next()
	}
}
