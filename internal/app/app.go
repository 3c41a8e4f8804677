package app

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/classauth/internal/config"
	httpx "github.com/you/classauth/internal/http"
	"github.com/you/classauth/internal/http/handlers"
	"github.com/you/classauth/internal/http/middleware"
)

func Run(cfg *config.Config) error {
	gin.SetMode(cfg.GinMode)

	container, err := NewContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	if err := container.RedisClient.Ping(context.Background()).Err(); err != nil {
		return err
	}

	authH := handlers.NewAuthHandlers(container.AuthSvc, container.RateLimiter, container.UserRepo, handlers.RateLimitPolicy{
		CreateLimit:  cfg.CreateLimit,
		CreateWindow: cfg.CreateWindow,
		VerifyLimit:  cfg.VerifyLimit,
		VerifyWindow: cfg.VerifyWindow,
	})
	adminH := handlers.NewAdminHandlers(container.CodeStore)

	jwtMW := middleware.AuthMiddleware(container.TokenSvc)
	policyMW := middleware.PolicyMiddleware(container.PolicySvc)

	r := httpx.BuildRouter(authH, adminH, jwtMW, policyMW)

	policies := container.PolicySvc.GetPolicies()
	if len(policies) == 0 {
		if err := container.PolicySvc.AddPolicy("role_admin", "/admin/codes", "GET"); err != nil {
			return err
		}
		log.Println("casbin: seeded default policies")
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, r)
}
