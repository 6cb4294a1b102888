// Package jwt issues and verifies the HS256 bearer tokens used by the
// platform administration API, built on github.com/golang-jwt/jwt/v5.
//
//	tokens, _ := jwt.New([]byte(cfg.Auth.JWTSecret), jwt.WithTTL(cfg.Auth.TokenTTL))
//	r.With(jwt.Middleware(tokens, jwt.WithRoles("super_admin"))).Get("/tenants", list)
package jwt
