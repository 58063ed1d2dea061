package security

// Principal identifies the authenticated caller of a request. It is built by
// the HTTP auth middleware from a decoded access token and passed explicitly
// as an argument through every authorization-sensitive call; services never
// pull identity out of ambient state.
type Principal struct {
	UserID string
	Claims TokenClaims
}
