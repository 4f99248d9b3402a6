package constant

const (
	RequestIDHeader = "X-Dashsync-Request-ID"

	// ConfirmTokenQuery carries the token that confirms a mutating command.
	ConfirmTokenQuery = "confirm"

	ETagCacheHeader = "X-Dashsync-Cache"
)
