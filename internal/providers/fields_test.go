package providers_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers"
)

func TestParseFields_RejectsNonObjects(t *testing.T) {
	for _, body := range []string{"", "null", "[1,2]", `"text"`, "{broken"} {
		_, err := providers.ParseFields([]byte(body))
		pe, ok := domainErrors.AsProviderError(err)
		require.True(t, ok, body)
		assert.Equal(t, domainErrors.KindMalformedResponse, pe.Kind, body)
	}
}

func TestFields_Reads(t *testing.T) {
	f, err := providers.ParseFields([]byte(`{
		"id": 12345678901,
		"sid": "77",
		"amount": 1000.50,
		"samount": "12.5",
		"name": "x",
		"num": 15,
		"at": "2026-01-02T03:04:05Z",
		"naive": "2026-01-02T03:04:05.123456",
		"spaced": "2026-01-02 03:04:05",
		"null": null,
		"nested": {"inner": "v"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, int64(12345678901), f.Int64("id"))
	assert.Equal(t, int64(77), f.Int64("sid"))
	assert.Equal(t, "1000.5", f.Decimal("amount").String())
	assert.Equal(t, "12.5", f.Decimal("samount").String())
	assert.Equal(t, "x", f.String("name"))
	assert.Equal(t, "15", f.String("num"))
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), f.Time("at"))
	assert.Equal(t, 123456000, f.Time("naive").Nanosecond())
	assert.Equal(t, 3, f.Time("spaced").Hour())
	assert.Equal(t, "v", f.Object("nested").String("inner"))
	assert.Equal(t, "", f.OptionalString("null"))
	assert.Equal(t, "", f.OptionalString("absent"))
	assert.Equal(t, "", f.NullableString("null"))
	assert.Equal(t, "x", f.NullableString("name"))
	assert.Nil(t, f.NullableTime("null"))
	require.NotNil(t, f.NullableTime("at"))
	assert.True(t, f.Has("name"))
	assert.False(t, f.Has("null"))
	assert.NoError(t, f.Err())
}

func TestFields_FirstFailureWins(t *testing.T) {
	f, err := providers.ParseFields([]byte(`{"a": "1", "nested": {"b": true}}`))
	require.NoError(t, err)

	_ = f.String("a")
	_ = f.Object("nested").Int64("b")
	_ = f.String("missing")

	pe, ok := domainErrors.AsProviderError(f.Err())
	require.True(t, ok)
	assert.Equal(t, "nested.b", pe.Field)
	assert.Equal(t, "502", pe.Code)
	assert.Contains(t, pe.Message, "nested.b")

	assert.Equal(t, "", f.String("a"), "reads after a failure return zero values")
}

func TestFields_NullableKeyMustBePresent(t *testing.T) {
	tests := []struct {
		name string
		read func(f *providers.Fields)
	}{
		{"string", func(f *providers.Fields) { f.NullableString("owner_name") }},
		{"time", func(f *providers.Fields) { f.NullableTime("owner_name") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := providers.ParseFields([]byte(`{"paid_at": null}`))
			require.NoError(t, err)

			tt.read(f)

			pe, ok := domainErrors.AsProviderError(f.Err())
			require.True(t, ok)
			assert.Equal(t, domainErrors.KindMalformedResponse, pe.Kind)
			assert.Equal(t, "owner_name", pe.Field)
		})
	}
}

func TestFields_TypeMismatches(t *testing.T) {
	tests := []struct {
		name string
		read func(f *providers.Fields)
	}{
		{"string from object", func(f *providers.Fields) { f.String("obj") }},
		{"int from fraction", func(f *providers.Fields) { f.Int64("frac") }},
		{"decimal from text", func(f *providers.Fields) { f.Decimal("text") }},
		{"time from text", func(f *providers.Fields) { f.Time("text") }},
		{"object from string", func(f *providers.Fields) { f.Object("text") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := providers.ParseFields([]byte(`{"obj": {}, "frac": 1.5, "text": "abc"}`))
			require.NoError(t, err)

			tt.read(f)
			assert.Error(t, f.Err())
		})
	}
}
