package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const dateOnlyLayout = "2006-01-02"

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalFloat(value string) (*float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalSnowflakeID(value string) (*snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := snowflake.ParseString(trimmed)
	if err != nil || parsed == 0 {
		return nil, errors.New("invalid_snowflake_id")
	}
	return &parsed, nil
}

func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		if endOfDay {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
		} else {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		}
		return &parsed, nil
	}
	return nil, errors.New("invalid_time")
}

// pathID parses the :id route parameter; zero means it was malformed.
func pathID(c *gin.Context) snowflake.ID {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return 0
	}
	return id
}

// idFilter reads an optional snowflake query parameter, aborting with a
// validation error when it is malformed.
func idFilter(c *gin.Context, name string) (*snowflake.ID, bool) {
	id, err := parseOptionalSnowflakeID(c.Query(name))
	if err != nil {
		AbortWithError(c, newValidationError(name, "invalid_"+name, "invalid "+name))
		return nil, false
	}
	return id, true
}

// timeRange reads the created_from/created_to pair used by list endpoints.
func timeRange(c *gin.Context, fromKey, toKey string) (*time.Time, *time.Time, bool) {
	from, err := parseOptionalTime(c.Query(fromKey), false)
	if err != nil {
		AbortWithError(c, newValidationError(fromKey, "invalid_"+fromKey, "invalid "+fromKey))
		return nil, nil, false
	}
	to, err := parseOptionalTime(c.Query(toKey), true)
	if err != nil {
		AbortWithError(c, newValidationError(toKey, "invalid_"+toKey, "invalid "+toKey))
		return nil, nil, false
	}
	return from, to, true
}

// optionalID is a snowflake id in a JSON body, sent as a string or a number.
// Set reports whether the key was present; null or "" clears the reference.
type optionalID struct {
	Set bool
	Raw string
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		o.Raw = ""
		return nil
	}
	o.Raw = strings.TrimSpace(strings.Trim(raw, `"`))
	return nil
}

// Clear reports a present but empty value.
func (o optionalID) Clear() bool {
	return o.Set && o.Raw == ""
}

func (o optionalID) ID() (*snowflake.ID, error) {
	if !o.Set || o.Raw == "" {
		return nil, nil
	}
	return parseOptionalSnowflakeID(o.Raw)
}
