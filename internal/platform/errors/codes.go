// Package errors provides coded domain errors shared by the MCP and web services.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Lookup errors
	CodeNotFound        Code = "NOT_FOUND"
	CodeMissionNotFound Code = "MISSION_NOT_FOUND"
	CodeRouteNotFound   Code = "ROUTE_NOT_FOUND"
	CodeCargoNotFound   Code = "CARGO_NOT_FOUND"

	// Input errors
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeInvalidCatalog    Code = "INVALID_CATALOG"
	CodeInsufficientCargo Code = "INSUFFICIENT_CARGO"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeMissionNotFound, CodeRouteNotFound, CodeCargoNotFound:
		return http.StatusNotFound
	case CodeInvalidArgument, CodeInvalidCatalog:
		return http.StatusBadRequest
	case CodeInsufficientCargo:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound reports whether the code names a missing record.
func (c Code) IsNotFound() bool {
	return c.HTTPStatus() == http.StatusNotFound
}
