package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09", d.String())

	d, err = ParseDate("2025-03-09T23:59:00-03:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09", d.String())

	for _, bad := range []string{"", "09/03/2025", "2025-13-01", "2025-02-29"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestDate_JSON(t *testing.T) {
	ev := Event{Name: "N", Date: NewDate(time.Date(2024, 2, 29, 15, 0, 0, 0, time.UTC)), Time: "15:00"}
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"data":"2024-02-29"`)
	assert.Contains(t, string(b), `"local_id":null`)

	var back Event
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Date.Equal(ev.Date.Time))
}

func TestDate_ScanValue(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-01-02", d.String())
	require.NoError(t, d.Scan([]byte("2025-01-03")))
	assert.Equal(t, "2025-01-03", d.String())
	assert.Error(t, d.Scan(42))

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-01-03", v)
}
