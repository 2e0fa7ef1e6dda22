package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/respond"
)

type verifyFunc func(token string) (auth.Identity, error)

func requireToken(verify verifyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}
		id, err := verify(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		auth.SetIdentity(c, id)
		c.Next()
	}
}

// RequireUser accepts only Supabase tokens of signed-in users
func RequireUser(v *auth.Verifier) gin.HandlerFunc {
	return requireToken(v.VerifyUser)
}

// RequireShopper accepts a user token or a guest token
func RequireShopper(v *auth.Verifier) gin.HandlerFunc {
	return requireToken(v.VerifyShopper)
}

// OptionalUser sets the identity when a valid user token is sent and never rejects the request
func OptionalUser(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := auth.BearerToken(c.GetHeader("Authorization")); err == nil {
			if id, err := v.VerifyUser(token); err == nil {
				auth.SetIdentity(c, id)
			}
		}
		c.Next()
	}
}
