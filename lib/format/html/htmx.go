package html

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// SwapMode defines HTMX swap strategies for how response HTML replaces the
// target.
//
// See https://htmx.org/attributes/hx-swap/ for visual examples.
type SwapMode string

const (
	// SwapOuter replaces the entire element including its tag (outerHTML).
	// This is the default swap mode.
	SwapOuter SwapMode = "outerHTML"

	// SwapInner replaces only the element's contents (innerHTML).
	SwapInner SwapMode = "innerHTML"

	// SwapBeforeEnd appends the response to the end of the target's contents.
	SwapBeforeEnd SwapMode = "beforeend"

	// SwapAfterEnd inserts the response after the target element.
	SwapAfterEnd SwapMode = "afterend"

	// SwapNone discards the response.
	SwapNone SwapMode = "none"
)

// FormAttrs builds the HTMX attributes that submit a form to action with
// method.
//
// GET forms get hx-get; POST, PUT, PATCH and DELETE get the matching
// attribute, so forms can use methods plain HTML forms can't. Target and
// swap are only set when given.
//
//	attrs := html.FormAttrs("/posts/1", http.MethodDelete, "closest .resource", html.SwapOuter)
func FormAttrs(action, method, target string, swap SwapMode) templ.Attributes {
	attrs := templ.Attributes{}

	switch strings.ToUpper(method) {
	case "", http.MethodGet:
		attrs["hx-get"] = action
	case http.MethodPost:
		attrs["hx-post"] = action
	case http.MethodPut:
		attrs["hx-put"] = action
	case http.MethodPatch:
		attrs["hx-patch"] = action
	case http.MethodDelete:
		attrs["hx-delete"] = action
	default:
		attrs["hx-post"] = action
	}
	if target != "" {
		attrs["hx-target"] = target
	}
	if swap != "" {
		attrs["hx-swap"] = string(swap)
	}
	return attrs
}

// formMethod returns the method attribute for a plain HTML form, which only
// knows GET and POST.
func formMethod(method string) string {
	if method == "" || strings.EqualFold(method, http.MethodGet) {
		return "get"
	}
	return "post"
}
