package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "0:07", FormatDuration(7*time.Second))
	assert.Equal(t, "3:05", FormatDuration(185*time.Second))
	assert.Equal(t, "59:59", FormatDuration(3599*time.Second))
	assert.Equal(t, "1:00:00", FormatDuration(time.Hour))
	assert.Equal(t, "2:03:04", FormatDuration(2*time.Hour+3*time.Minute+4*time.Second))
	assert.Equal(t, "0:00", FormatDuration(-time.Second), "negative positions clamp to zero")
}
