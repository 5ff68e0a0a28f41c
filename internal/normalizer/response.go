package normalizer

import (
	"fmt"
	"sort"
	"strings"
)

// SubmitResult is the normalized answer to a product submission.
type SubmitResult struct {
	Success   bool   `json:"success"`
	ProductID string `json:"product_id"`
	// MaterialIDs maps temporary client keys to server-assigned ids.
	MaterialIDs map[string]string `json:"material_ids"`
	Message     string            `json:"message,omitempty"`
}

var (
	messageKeys   = []string{"message", "msg", "error", "detail"}
	clientKeyKeys = []string{"client_key", "temp_id", "temporary_id"}
)

// DecodeSubmitResult reads a submission response. An empty body counts as
// success.
func DecodeSubmitResult(body []byte) (*SubmitResult, error) {
	result := &SubmitResult{Success: true, MaterialIDs: map[string]string{}}
	if len(strings.TrimSpace(string(body))) == 0 {
		return result, nil
	}

	v, err := decodeJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode submit response: %w", err)
	}
	raw := object(v)
	if raw == nil {
		return result, nil
	}

	if s, ok := first(raw, "success", "ok"); ok {
		result.Success = toBool(s)
	} else if status := strings.ToLower(str(raw, "status")); status != "" {
		result.Success = status == "success" || status == "ok" || status == "created"
	}
	result.Message = messageFrom(raw)

	data := raw
	for depth := 0; depth < 3; depth++ {
		next := object(firstValue(data, wrapperKeys...))
		if next == nil {
			break
		}
		data = next
	}
	result.ProductID = str(data, productIDKeys...)

	for _, item := range list(firstValue(data, materialListKeys...)) {
		row := object(item)
		key, id := str(row, clientKeyKeys...), str(row, materialIDKeys...)
		if key != "" && id != "" {
			result.MaterialIDs[key] = id
		}
	}
	return result, nil
}

// Message extracts a human-readable error message from an API response, or
// "" when there is none.
func Message(body []byte) string {
	v, err := decodeJSON(body)
	if err != nil {
		return ""
	}
	return messageFrom(object(v))
}

func messageFrom(raw map[string]interface{}) string {
	if raw == nil {
		return ""
	}
	if msg := str(raw, messageKeys...); msg != "" {
		return msg
	}
	if nested := object(firstValue(raw, "error")); nested != nil {
		if msg := str(nested, messageKeys...); msg != "" {
			return msg
		}
	}

	// Field errors: {"errors": {"name": ["The name field is required."]}}
	errs := object(firstValue(raw, "errors"))
	if errs == nil {
		return ""
	}
	fields := make([]string, 0, len(errs))
	for k := range errs {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	var msgs []string
	for _, k := range fields {
		if items := list(errs[k]); len(items) > 0 {
			msgs = append(msgs, toString(items[0]))
		} else if s := toString(errs[k]); s != "" {
			msgs = append(msgs, s)
		}
	}
	return strings.Join(msgs, " ")
}
