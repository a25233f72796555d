// Package metadata stores the CLI session (username, access token and its
// expiry) as key/value rows in the local SQLite database.
package metadata
