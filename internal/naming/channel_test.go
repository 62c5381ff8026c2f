package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChannelName(t *testing.T) {
	cases := []struct {
		name        string
		path        string
		wantLabel   string
		wantDevice  string
		wantChannel int
	}{
		{"standard", "outputs/labjack_001_ch01.csv", "ch01", "001", 1},
		{"two digit channel", "/data/labjack_042_ch13.csv", "ch13", "042", 13},
		{"asset prefixed id", "labjack_asset007_ch00.csv", "ch00", "asset007", 0},
		{"id with underscore", "labjack_a_b_ch02.csv", "ch02", "a_b", 2},
		{"no channel marker", "outputs/summary.csv", "summary", "", -1},
		{"marker with suffix", "labjack_001_ch01_raw.csv", "raw", "", -1},
		{"marker without digits", "labjack_001_chX.csv", "chX", "", -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseChannelName(tc.path)
			assert.Equal(t, tc.wantLabel, got.Label)
			assert.Equal(t, tc.wantDevice, got.Device)
			assert.Equal(t, tc.wantChannel, got.Channel)
		})
	}
}

func TestMatchesPattern(t *testing.T) {
	assert.True(t, MatchesPattern("labjack_001_ch01.csv"))
	assert.True(t, MatchesPattern("labjack_x_chA.csv"))
	assert.False(t, MatchesPattern("labjack_001_ch01.csv.bak"))
	assert.False(t, MatchesPattern("labjack_001.csv"))
	assert.False(t, MatchesPattern("LABJACK_001_ch01.csv"))
}
