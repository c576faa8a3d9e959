// Package common contains shared constants and sentinel errors used across
// containerhub components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the token type reported to clients and expected in the
// Authorization header.
const BearerScheme = "bearer"

// AnalysisSuffix marks derived analysis artifacts inside a user namespace.
const AnalysisSuffix = "_analysis.txt"

// TempFilePrefix marks in-flight writes inside a user namespace. Listings
// skip such files and uploads may not use the prefix.
const TempFilePrefix = ".tmp-"

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72
