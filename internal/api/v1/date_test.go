package v1

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateOf_TruncatesToUTCDay(t *testing.T) {
	ts := time.Date(2025, 1, 2, 23, 59, 59, 0, time.UTC)
	require.Equal(t, "2025-01-02", DateOf(ts).String())

	// A local timestamp on the "next" day converts through UTC first.
	loc := time.FixedZone("UTC+5", 5*3600)
	early := time.Date(2025, 1, 3, 3, 0, 0, 0, loc) // 2025-01-02T22:00Z
	require.Equal(t, "2025-01-02", DateOf(early).String())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-02")
	require.NoError(t, err)
	require.Equal(t, NewDate(2025, time.January, 2), d)

	_, err = ParseDate("02/01/2025")
	require.Error(t, err)

	_, err = ParseDate("")
	require.Error(t, err)
}

func TestDate_AddDaysAndComparisons(t *testing.T) {
	d := NewDate(2025, time.January, 1)
	require.Equal(t, "2024-12-31", d.AddDays(-1).String())
	require.Equal(t, "2025-01-08", d.AddDays(7).String())
	require.True(t, d.Before(d.AddDays(1)))
	require.True(t, d.AddDays(1).After(d))
	require.True(t, d.Equal(NewDate(2025, time.January, 1)))
}

func TestDate_JSONRoundTrip(t *testing.T) {
	type payload struct {
		Day Date `json:"day"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"day":"2025-01-02"}`), &p))
	require.Equal(t, NewDate(2025, time.January, 2), p.Day)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	require.JSONEq(t, `{"day":"2025-01-02"}`, string(out))

	// Zero value serializes as the explicit empty string.
	out, err = json.Marshal(payload{})
	require.NoError(t, err)
	require.JSONEq(t, `{"day":""}`, string(out))

	require.Error(t, json.Unmarshal([]byte(`{"day":"not-a-date"}`), &p))
}
