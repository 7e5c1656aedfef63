package cloud

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// PayloadPath locates the inclusion set inside a cloud run-results response
const PayloadPath = "data.cloud.testsForRunResults"

// ErrInvalidPayload is returned for payloads that carry no usable id list
var ErrInvalidPayload = errors.New("invalid run results payload")

// ParsePayload extracts test ids from a cloud run-results response. It
// accepts the GraphQL envelope, a bare {"testsForRunResults": [...]} object,
// or a bare JSON array.
func ParsePayload(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidPayload)
	}

	list := gjson.ParseBytes(data)
	if !list.IsArray() {
		list = gjson.GetBytes(data, PayloadPath)
		if !list.Exists() {
			list = gjson.GetBytes(data, "testsForRunResults")
		}
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: no %s array", ErrInvalidPayload, PayloadPath)
	}

	var ids []string
	var bad error
	list.ForEach(func(_, v gjson.Result) bool {
		if v.Type != gjson.String {
			bad = fmt.Errorf("%w: non-string id %s", ErrInvalidPayload, v.Raw)
			return false
		}
		ids = append(ids, v.String())
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return ids, nil
}
