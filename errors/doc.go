// Package errors provides the structured error type shared by the inventory
// registry, its discovery sources and the HTTP reporting surface.
//
// Every failure that crosses a package boundary is an *AppError carrying a
// machine-readable ErrorCode, a recommended HTTP status and optional details.
// Use AsAppError or HasCode to classify errors returned by other packages.
package errors
