package api

import (
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/mcpchat/internal/errors"
)

// contentRules are the reply fields tried in order before falling back to
// the compact body
var contentRules = []string{PathResponse, PathMessage}

// ExtractContent returns the assistant text of a chat reply body.
//
// The first rule whose field is present and truthy wins; string values are
// used verbatim and other values as their raw JSON. When no rule matches the
// whole body is returned as compact JSON. A body that is not JSON, or is a
// bare null, is a parse failure.
func ExtractContent(body []byte, endpoint string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError(endpoint, "response is not valid JSON")
	}

	parsed := gjson.ParseBytes(body)
	if parsed.Type == gjson.Null {
		return "", apierrors.NewParseError(endpoint, "response body is null")
	}
	if parsed.IsObject() {
		for _, path := range contentRules {
			v := parsed.Get(path)
			if !truthy(v) {
				continue
			}
			if v.Type == gjson.String {
				return v.Str, nil
			}
			return v.Raw, nil
		}
	}

	return gjson.GetBytes(body, PathCompact).Raw, nil
}

// truthy mirrors loose boolean coercion of a decoded JSON value
func truthy(v gjson.Result) bool {
	if !v.Exists() {
		return false
	}
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	default:
		return true
	}
}
