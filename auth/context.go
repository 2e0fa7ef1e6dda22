package auth

import "github.com/gin-gonic/gin"

const identityKey = "identity"

// SetIdentity stores the caller on the gin context
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
	c.Set("user_id", id.ID)
}

// CurrentIdentity returns the caller set by the auth middleware
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok && id.ID != ""
}
