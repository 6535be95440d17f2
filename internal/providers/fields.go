package providers

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
)

// Providers emit timestamps with and without a zone.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Fields reads required values out of a decoded JSON object. The first
// missing or mistyped field is remembered and reported by Err; later reads
// return zero values, so a response is either fully read or rejected.
type Fields struct {
	obj    map[string]any
	prefix string
	state  *fieldState
}

type fieldState struct {
	err *domainErrors.ProviderError
}

// ParseFields decodes body, which must be a JSON object.
func ParseFields(body []byte) (*Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		pe := domainErrors.NewMalformedResponseError("body")
		pe.Message = "provider response is not a JSON object"
		pe.Err = err
		return nil, pe
	}
	return &Fields{obj: obj, state: &fieldState{}}, nil
}

// Err returns the first malformed-response error, if any.
func (f *Fields) Err() error {
	if f.state.err == nil {
		return nil
	}
	return f.state.err
}

func (f *Fields) path(key string) string {
	if f.prefix == "" {
		return key
	}
	return f.prefix + "." + key
}

func (f *Fields) fail(key string) {
	if f.state.err == nil {
		f.state.err = domainErrors.NewMalformedResponseError(f.path(key))
	}
}

func (f *Fields) get(key string) (any, bool) {
	if f.state.err != nil {
		return nil, false
	}
	v, ok := f.obj[key]
	if !ok || v == nil {
		f.fail(key)
		return nil, false
	}
	return v, true
}

// Has reports whether key is present and non-null.
func (f *Fields) Has(key string) bool {
	v, ok := f.obj[key]
	return ok && v != nil
}

func (f *Fields) Object(key string) *Fields {
	child := &Fields{obj: map[string]any{}, prefix: f.path(key), state: f.state}
	v, ok := f.get(key)
	if !ok {
		return child
	}
	obj, ok := v.(map[string]any)
	if !ok {
		f.fail(key)
		return child
	}
	child.obj = obj
	return child
}

func (f *Fields) String(key string) string {
	v, ok := f.get(key)
	if !ok {
		return ""
	}
	switch typed := v.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	default:
		f.fail(key)
		return ""
	}
}

// NullableString requires key to be present and returns "" when it is null.
func (f *Fields) NullableString(key string) string {
	if !f.present(key) {
		return ""
	}
	return f.String(key)
}

// present fails the read when key is absent and reports whether it holds a
// non-null value.
func (f *Fields) present(key string) bool {
	if f.state.err != nil {
		return false
	}
	v, ok := f.obj[key]
	if !ok {
		f.fail(key)
		return false
	}
	return v != nil
}

// OptionalString returns "" for an absent or null key.
func (f *Fields) OptionalString(key string) string {
	if !f.Has(key) {
		return ""
	}
	return f.String(key)
}

func (f *Fields) Decimal(key string) decimal.Decimal {
	v, ok := f.get(key)
	if !ok {
		return decimal.Zero
	}
	var raw string
	switch typed := v.(type) {
	case json.Number:
		raw = typed.String()
	case string:
		raw = typed
	default:
		f.fail(key)
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		f.fail(key)
		return decimal.Zero
	}
	return d
}

func (f *Fields) Int64(key string) int64 {
	v, ok := f.get(key)
	if !ok {
		return 0
	}
	var (
		n   int64
		err error
	)
	switch typed := v.(type) {
	case json.Number:
		n, err = typed.Int64()
	case string:
		n, err = strconv.ParseInt(typed, 10, 64)
	default:
		f.fail(key)
		return 0
	}
	if err != nil {
		f.fail(key)
		return 0
	}
	return n
}

func (f *Fields) Time(key string) time.Time {
	raw := f.String(key)
	if f.state.err != nil {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	f.fail(key)
	return time.Time{}
}

// NullableTime requires key to be present and returns nil when it is null.
func (f *Fields) NullableTime(key string) *time.Time {
	if !f.present(key) {
		return nil
	}
	t := f.Time(key)
	if f.state.err != nil {
		return nil
	}
	return &t
}
