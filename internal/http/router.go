package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/you/classauth/internal/http/handlers"
)

func BuildRouter(ah *handlers.AuthHandlers, adh *handlers.AdminHandlers, jwtmw gin.HandlerFunc, policymw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/register", ah.Register)
	auth.POST("/login", ah.Login)
	auth.POST("/code/send", ah.SendCode)
	auth.POST("/code/verify", ah.VerifyCode)
	auth.POST("/refresh", ah.Refresh)

	v := r.Group("/").Use(jwtmw)
	v.GET("/auth/me", ah.Me)

	adm := r.Group("/admin").Use(jwtmw, policymw)
	adm.GET("/codes", adh.ListCodes)

	return r
}
