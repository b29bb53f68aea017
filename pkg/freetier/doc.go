// Package freetier decides whether a spec write fits within a user's free
// tier model quota.
package freetier
