package utils

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Henryno111/deposit-stx/models"

	"github.com/gorilla/mux"
)

// PathUint reads a base-10 uint64 route variable.
func PathUint(r *http.Request, name string) (uint64, error) {
	v, ok := mux.Vars(r)[name]
	if !ok {
		return 0, errors.New(name + " is required")
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}

// PathPrincipal reads a principal route variable.
func PathPrincipal(r *http.Request, name string) (models.Principal, error) {
	v := mux.Vars(r)[name]
	if !ValidPrincipal(v) {
		return "", errors.New(name + " is not a valid principal")
	}
	return models.Principal(v), nil
}

// QueryUint reads a base-10 uint64 query parameter.
func QueryUint(r *http.Request, name string) (uint64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, errors.New(name + " is required")
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}

// QueryMicro reads a decimal unit amount ("1.5") query parameter as
// micro-units.
func QueryMicro(r *http.Request, name string) (uint64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, errors.New(name + " is required")
	}
	n, ok := ParseMicro(v)
	if !ok {
		return 0, errors.New(name + " must be a non-negative amount with at most 6 decimals")
	}
	return n, nil
}

// BadRequest writes a 400 with the given message.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: msg})
}
