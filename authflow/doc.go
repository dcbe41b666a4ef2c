// Package authflow implements administrator login and the password reset
// sequence: request a code by email, verify the six-digit code for a reset
// token, then set a new password with that token. Form input is validated
// before anything is sent.
package authflow
