package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Declyn50s/Traine-Savates/pkg/apperr"
)

// form reads typed values out of a posted form and collects parse errors.
type form struct {
	values url.Values
	errs   map[string]string
}

func parseForm(r *http.Request) (*form, error) {
	if err := r.ParseForm(); err != nil {
		return nil, apperr.Invalid("form", "malformed form data")
	}
	return &form{values: r.PostForm, errs: map[string]string{}}, nil
}

// err returns the collected parse errors as a validation error, or nil.
func (f *form) err() error {
	return apperr.Validation(f.errs)
}

func (f *form) str(name string) string {
	return strings.TrimSpace(f.values.Get(name))
}

func (f *form) all(name string) []string {
	return f.values[name]
}

func (f *form) int(name string) int {
	v := f.str(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.errs[name] = "must be a whole number"
	}
	return n
}

func (f *form) intPtr(name string) *int {
	if f.str(name) == "" {
		return nil
	}
	n := f.int(name)
	return &n
}

func (f *form) float(name string) float64 {
	v := strings.ReplaceAll(f.str(name), ",", ".")
	if v == "" {
		return 0
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		f.errs[name] = "must be a number"
	}
	return n
}

func (f *form) floatPtr(name string) *float64 {
	if f.str(name) == "" {
		return nil
	}
	n := f.float(name)
	return &n
}

// bool reads a checkbox.
func (f *form) bool(name string) bool {
	switch strings.ToLower(f.str(name)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// boolPtr reads a tri-state select: empty means unset.
func (f *form) boolPtr(name string) *bool {
	switch strings.ToLower(f.str(name)) {
	case "":
		return nil
	case "true", "on", "1", "yes":
		b := true
		return &b
	default:
		b := false
		return &b
	}
}
