package tracing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesKeepsAllowlist(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/debts"),
		attribute.String("customer_name", "Ali"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorTruncates(t *testing.T) {
	assert.Nil(t, SafeError(nil))

	err := SafeError(errors.New("first line\nSELECT * FROM customers"))
	assert.Equal(t, "first line", err.Error())

	long := SafeError(errors.New(strings.Repeat("x", 500)))
	assert.Len(t, long.Error(), 200)
}
