package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanTitleStripsCrawlerNoise(t *testing.T) {
	cases := map[string]string{
		"国宝":                          "国宝",
		"  国宝  ":                       "国宝",
		"国宝 コピー 印刷 すべてのスケジュールを見る":     "国宝",
		"19:00 国宝":                    "国宝",
		"国宝 19:00〜21:05":              "国宝",
		"Mission: Impossible":         "Mission: Impossible",
	}
	for in, want := range cases {
		require.Equal(t, want, CleanTitle(in), "input %q", in)
	}
}

func TestCleanTitleRejectsEmptyAndTooShort(t *testing.T) {
	require.Equal(t, "", CleanTitle(""))
	require.Equal(t, "", CleanTitle("   "))
	require.Equal(t, "", CleanTitle("A"))
	require.Equal(t, "", CleanTitle("19:00"))
}

func TestEndTimeDerivation(t *testing.T) {
	end, err := EndTime("19:00", 125)
	require.NoError(t, err)
	require.Equal(t, "21:05", end)

	// zero duration falls back to the 120 minute default
	end, err = EndTime("10:00", 0)
	require.NoError(t, err)
	require.Equal(t, "12:00", end)
}

func TestEndTimeMidnightBoundary(t *testing.T) {
	end, err := EndTime("22:00", 120)
	require.NoError(t, err)
	require.Equal(t, "24:00", end)

	_, err = EndTime("23:00", 90)
	require.Error(t, err)
}

func TestEndTimeRejectsBadClock(t *testing.T) {
	_, err := EndTime("7pm", 120)
	require.Error(t, err)
}
