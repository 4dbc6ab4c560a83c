package entity

// Principal is the authenticated identity returned by the OAuth
// exchange. It lives only inside the server-side session; it is never
// persisted verbatim. Account lookups join on Email.
type Principal struct {
	Email     string `json:"email"`
	GivenName string `json:"given_name"`
	Picture   string `json:"picture"`
	Locale    string `json:"locale"`
}
