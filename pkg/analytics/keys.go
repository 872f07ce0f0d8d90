package analytics

// Cache key layout. The engine is the only writer of these keys; the query
// service reads them. Kept stable for dashboard compatibility.
const (
	// ActiveUsersKey holds the scalar distinct-user count
	ActiveUsersKey = "metrics:active_users"

	// PageViewsKey holds the page URL -> view count hash
	PageViewsKey = "metrics:page_views"

	// UserSessionsPrefix prefixes one set key per user holding that
	// user's active session IDs
	UserSessionsPrefix = "metrics:sessions:"
)

// SessionKey returns the session set key for a user
func SessionKey(userID string) string {
	return UserSessionsPrefix + userID
}
