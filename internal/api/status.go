package api

import "sort"

// FallbackStatusName is returned by StatusName for codes outside the catalog.
const FallbackStatusName = "Error"

// Status codes the backend puts in Envelope.Code.
const (
	StatusSuccess             = 200
	StatusCreated             = 201
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusConflict            = 409
	StatusValidationError     = 422
	StatusInternalServerError = 500
)

var statusNames = map[int]string{
	StatusSuccess:             "SUCCESS",
	StatusCreated:             "CREATED",
	StatusBadRequest:          "BAD_REQUEST",
	StatusUnauthorized:        "UNAUTHORIZED",
	StatusForbidden:           "FORBIDDEN",
	StatusNotFound:            "NOT_FOUND",
	StatusConflict:            "CONFLICT",
	StatusValidationError:     "VALIDATION_ERROR",
	StatusInternalServerError: "INTERNAL_SERVER_ERROR",
}

// LookupStatus returns the symbolic name of code and whether it is in the catalog.
func LookupStatus(code int) (string, bool) {
	name, ok := statusNames[code]
	return name, ok
}

// StatusName returns the symbolic name of code, or FallbackStatusName.
func StatusName(code int) string {
	if name, ok := statusNames[code]; ok {
		return name
	}
	return FallbackStatusName
}

// StatusCodes returns every catalog code in ascending order.
func StatusCodes() []int {
	codes := make([]int, 0, len(statusNames))
	for code := range statusNames {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
