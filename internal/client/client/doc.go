// Package client contains the client-side transport of the gophtasks CLI.
//
// # Overview
//
// The package provides:
//  1. The Client interface: the task service operations the CLI needs.
//  2. GRPCClient, which talks to gophtasks.v1.TaskService over gRPC, injects
//     the current access token via a unary interceptor and maps gRPC status
//     codes to sentinel errors.
//  3. InitDatabase and RunMigrations, which open the local SQLite session
//     database and apply the embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound,
// ErrAlreadyExists and ErrInvalidInput.
package client
