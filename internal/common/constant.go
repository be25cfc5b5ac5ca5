// Package common contains shared constants and sentinel errors used across
// travelog components.
package common

// AccessTokenHeaderName is the cookie name that carries the access token for
// browser clients. API clients use the Authorization header instead.
const AccessTokenHeaderName = "access_token"

// AnonymousAuthor is stored as an entry author when the session has no
// display name.
const AnonymousAuthor = "anonymous"

// CommentDateLayout is the date-only layout used for comment timestamps.
const CommentDateLayout = "2006-01-02"
