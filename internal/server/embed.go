package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vesaa/effectlab/webui"
)

// RegisterStaticFiles mounts the embedded stylesheet under /static.
func RegisterStaticFiles(r *gin.Engine) {
	r.StaticFS("/static", http.FS(webui.Static()))
}
