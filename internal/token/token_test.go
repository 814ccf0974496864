package token

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for hour := 1; hour <= 12; hour++ {
		raw, err := Encode("c9b1c3be-8a6d-4f6e-9f30-6a1f7c0c8f11", hour, "Juan dela Cruz")
		require.NoError(t, err)

		p, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, "c9b1c3be-8a6d-4f6e-9f30-6a1f7c0c8f11", p.UserID)
		assert.Equal(t, hour, p.Hour)
		assert.Equal(t, "Juan dela Cruz", p.Name)
	}
}

func TestEncodeRejectsInvalidInput(t *testing.T) {
	_, err := Encode("", 5, "x")
	assert.Error(t, err)

	for _, hour := range []int{0, 13, -1} {
		_, err := Encode("u1", hour, "x")
		assert.Error(t, err, fmt.Sprintf("hour %d", hour))
	}
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":         "hello world",
		"empty":            "",
		"missing user id":  `{"time":5,"name":"x"}`,
		"missing hour":     `{"userId":"u1","name":"x"}`,
		"hour too small":   `{"userId":"u1","time":0,"name":"x"}`,
		"hour too large":   `{"userId":"u1","time":13,"name":"x"}`,
		"wrong hour type":  `{"userId":"u1","time":"five","name":"x"}`,
		"array payload":    `[1,2,3]`,
		"truncated object": `{"userId":"u1","time":5`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(raw)
			require.Error(t, err)
			var decodeErr *DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	p, err := Decode(`{"userId":"u1","time":7,"name":"x","v":2,"issuedAt":"2026-09-01"}`)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, 7, p.Hour)
}

func TestDecodeAcceptsBareMinimumShape(t *testing.T) {
	// name is display-only and may be absent from older payloads
	p, err := Decode(`{"userId":"u1","time":3}`)
	require.NoError(t, err)
	assert.Equal(t, "", p.Name)
}
