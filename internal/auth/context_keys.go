package auth

import "github.com/gin-gonic/gin"

// ContextKey is a typed key for context values.
type ContextKey string

// Context keys for storing account information in request context.
const (
	// CtxKeyAccountID is the context key for the authenticated account ID.
	CtxKeyAccountID ContextKey = "account_id"
	// CtxKeyUsername is the context key for the authenticated username.
	CtxKeyUsername ContextKey = "username"
	// CtxKeyRole is the context key for the authenticated account's role.
	CtxKeyRole ContextKey = "role"
	// CtxKeyAuthMethod is the context key for the authentication method used.
	CtxKeyAuthMethod ContextKey = "auth_method"
)

// AccountContext contains all account-related context data for type-safe access.
type AccountContext struct {
	AccountID  int64
	Username   string
	Role       string
	AuthMethod string
}

// SetAccountContext stores account context data in a type-safe manner.
func SetAccountContext(c *gin.Context, ctx AccountContext) {
	c.Set(string(CtxKeyAccountID), ctx.AccountID)
	c.Set(string(CtxKeyUsername), ctx.Username)
	c.Set(string(CtxKeyRole), ctx.Role)
	c.Set(string(CtxKeyAuthMethod), ctx.AuthMethod)
}

// AccountID retrieves the account ID from context.
func AccountID(c *gin.Context) (int64, bool) {
	return getContextInt64(c, CtxKeyAccountID)
}

// Username retrieves the username from context.
func Username(c *gin.Context) (string, bool) {
	return getContextString(c, CtxKeyUsername)
}

// Role retrieves the account role from context.
func Role(c *gin.Context) (string, bool) {
	return getContextString(c, CtxKeyRole)
}

// getContextInt64 safely retrieves an int64 from context, handling int/int64 variants.
func getContextInt64(c *gin.Context, key ContextKey) (int64, bool) {
	val, exists := c.Get(string(key))
	if !exists {
		return 0, false
	}
	switch v := val.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// getContextString safely retrieves a string from context.
func getContextString(c *gin.Context, key ContextKey) (string, bool) {
	val, exists := c.Get(string(key))
	if !exists {
		return "", false
	}
	if s, ok := val.(string); ok {
		return s, true
	}
	return "", false
}
