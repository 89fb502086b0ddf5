package contextkeys

// Custom key type to avoid collisions with other context values.
type contextKey string

// DBContextKey is the key under which the *gorm.DB handle (connection pool in
// production, an open transaction in tests) is stored in the request context.
const DBContextKey = contextKey("db")
