package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CookieName is the session cookie.
const CookieName = "effectlab_session"

const windowKey = "window"

// Middleware attaches the visitor's Window to the Gin context, opening a new
// one for requests without a valid cookie. The cookie is re-issued on every
// request so its expiry slides with the window's idle timeout.
func Middleware(store *Store, signer *Signer) gin.HandlerFunc {
	maxAge := int(signer.ttl.Seconds())
	return func(c *gin.Context) {
		var sid string
		if raw, err := c.Cookie(CookieName); err == nil {
			sid, err = signer.Parse(raw)
			if err != nil {
				store.cfg.Log.Debug("rejected session cookie", zap.Error(err))
			}
		}

		w := store.Open(sid)
		token, err := signer.Issue(w.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "failed to issue session",
			})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, token, maxAge, "/", "", c.Request.TLS != nil, true)
		c.Set(windowKey, w)
		c.Next()
	}
}

// FromContext returns the window Middleware attached.
func FromContext(c *gin.Context) *Window {
	w, _ := c.Get(windowKey)
	win, _ := w.(*Window)
	return win
}
