package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Minimal internal validator. Supports:
// - required
// - principal (account identifier: letters, digits, '.', '-', '_', 1-128 chars)
// - maxlen=N (byte length of a string, or element count of a slice)
// - eqfield=OtherField (field equals another field)

var rePrincipal = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,127}$`)

// ValidPrincipal reports whether s looks like an account identifier.
func ValidPrincipal(s string) bool {
	return rePrincipal.MatchString(s)
}

// ValidateStruct inspects struct tags `validate:"..."` and returns the first error encountered.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.New("ValidateStruct expects a struct or pointer to struct")
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}
		fv := v.Field(i)
		var sval string
		if fv.IsValid() && fv.Kind() == reflect.String {
			sval = fv.String()
		}
		for _, p := range strings.Split(tag, ",") {
			p = strings.TrimSpace(p)
			switch {
			case p == "required":
				if fv.IsZero() {
					return errors.New(field.Name + " is required")
				}
			case p == "principal":
				if sval != "" && !ValidPrincipal(sval) {
					return errors.New(field.Name + " is not a valid principal")
				}
			case strings.HasPrefix(p, "maxlen="):
				limit, err := strconv.Atoi(strings.TrimPrefix(p, "maxlen="))
				if err != nil {
					return errors.New("bad maxlen on " + field.Name)
				}
				n := len(sval)
				if fv.Kind() == reflect.Slice {
					n = fv.Len()
				}
				if n > limit {
					return errors.New(field.Name + " must be at most " + strconv.Itoa(limit) + " long")
				}
			case strings.HasPrefix(p, "eqfield="):
				other := strings.TrimPrefix(p, "eqfield=")
				of := v.FieldByName(other)
				if of.IsValid() && of.Kind() == reflect.String && sval != of.String() {
					return errors.New(field.Name + " must equal " + other)
				}
			}
		}
	}
	return nil
}
