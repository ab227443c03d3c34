package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "consentd/pkg/domain-errors"
)

// WriteJSON writes response with the given status.
func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError maps err to a JSON error body. Errors without a domain code are
// reported as internal_error and their message is not exposed.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		WriteJSON(w, internalMapping.status, map[string]string{"error": internalMapping.code})
		return
	}

	m := mappingFor(domainErr.Code)
	response := map[string]string{"error": m.code}
	if domainErr.Message != "" {
		response["error_description"] = domainErr.Message
	}
	WriteJSON(w, m.status, response)
}

type errorMapping struct {
	status int
	code   string
}

var errorMappings = map[dErrors.Code]errorMapping{
	dErrors.CodeNotFound:           {http.StatusNotFound, "not_found"},
	dErrors.CodeBadRequest:         {http.StatusBadRequest, "bad_request"},
	dErrors.CodeInvalidInput:       {http.StatusBadRequest, "bad_request"},
	dErrors.CodeValidation:         {http.StatusBadRequest, "validation_error"},
	dErrors.CodeInvariantViolation: {http.StatusBadRequest, "validation_error"},
	dErrors.CodeUnauthorized:       {http.StatusUnauthorized, "unauthorized"},
	dErrors.CodeForbidden:          {http.StatusForbidden, "forbidden"},
	dErrors.CodeTimeout:            {http.StatusGatewayTimeout, "timeout"},
	dErrors.CodePayloadTooLarge:    {http.StatusRequestEntityTooLarge, "payload_too_large"},
	dErrors.CodeNotSaved:           {http.StatusServiceUnavailable, "preferences_not_saved"},
	dErrors.CodeUnavailable:        {http.StatusServiceUnavailable, "unavailable"},
}

var internalMapping = errorMapping{http.StatusInternalServerError, "internal_error"}

func mappingFor(code dErrors.Code) errorMapping {
	if m, ok := errorMappings[code]; ok {
		return m
	}
	return internalMapping
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
// Unknown codes are internal errors.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	return mappingFor(code).status
}

// DomainCodeToHTTPCode returns the stable error string clients switch on.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	return mappingFor(code).code
}
