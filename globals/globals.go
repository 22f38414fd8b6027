package globals

// Context keys
type ContextKey string

const CallerKey ContextKey = "caller"
