// Package iam turns upstream group memberships into team permissions and
// builds the session issued at sign-in.
//
// Resolution is read-only and issues at most one store query per call. The
// resulting permission set is carried in the session; guards in package auth
// evaluate it in memory for the rest of the session's lifetime.
package iam
