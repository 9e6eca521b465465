// Package errors defines the failure taxonomy shared by the repository and
// store layers: NotFound, InvalidArgument, Timeout and Conflict.
package errors
