package observability

import (
	"encoding/json"
	"strings"
)

var sensitiveKeys = []string{
	"secret",
	"token",
	"api_key",
	"apikey",
	"authorization",
	"sign",
	"merchantid",
	"requisite",
	"card_number",
}

// MaskAuthorization masks bearer tokens, keeping the scheme and last four characters.
func MaskAuthorization(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parts := strings.Fields(value)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return "Bearer " + maskLast4(parts[1])
	}
	return maskLast4(value)
}

// MaskSecrets returns a deep copy of a decoded JSON object with sensitive values masked.
func MaskSecrets(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		if isSensitiveKey(key) {
			out[key] = maskValue(value)
			continue
		}
		out[key] = maskNested(value)
	}
	return out
}

// MaskJSON decodes body and masks it. Anything but a JSON object yields nil.
func MaskJSON(body []byte) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil
	}
	return MaskSecrets(obj)
}

// MaskPayload masks an outbound request payload for logging.
func MaskPayload(payload any) map[string]any {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return MaskJSON(body)
}

func maskNested(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return MaskSecrets(typed)
	case []any:
		items := make([]any, 0, len(typed))
		for _, entry := range typed {
			items = append(items, maskNested(entry))
		}
		return items
	default:
		return value
	}
}

func maskValue(value any) any {
	if s, ok := value.(string); ok {
		return maskLast4(s)
	}
	return "****"
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, needle := range sensitiveKeys {
		if strings.Contains(key, needle) {
			return true
		}
	}
	return false
}

func maskLast4(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
