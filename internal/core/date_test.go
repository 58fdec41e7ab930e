package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateParserLayouts(t *testing.T) {
	p := NewDateParser(nil, 16)

	cases := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"07/03/2022", time.Date(2022, 7, 3, 0, 0, 0, 0, time.UTC), true},
		{"7/3/2022", time.Date(2022, 7, 3, 0, 0, 0, 0, time.UTC), true},
		{" 12/31/2023 ", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), true},
		{"2023-02-14", time.Time{}, false},
		{"13/01/2023", time.Time{}, false},
		{"not a date", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := p.Parse(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.True(t, tc.want.Equal(got), "got %v want %v", got, tc.want)
		})
	}
}

func TestDateParserExtraLayouts(t *testing.T) {
	p := NewDateParser([]string{"1/2/2006", "2006-01-02"}, 16)

	got, ok := p.Parse("2023-02-14")
	require.True(t, ok)
	assert.True(t, time.Date(2023, 2, 14, 0, 0, 0, 0, time.UTC).Equal(got))

	got, ok = p.Parse("2/14/2023")
	require.True(t, ok)
	assert.True(t, time.Date(2023, 2, 14, 0, 0, 0, 0, time.UTC).Equal(got))
}

func TestDateParserMemoizes(t *testing.T) {
	p := NewDateParser([]string{"1/2/2006"}, 8)
	for i := 0; i < 5; i++ {
		_, ok := p.Parse("1/15/2023")
		require.True(t, ok)
	}
	_, ok := p.Parse("garbage")
	require.False(t, ok)
	_, ok = p.Parse("garbage")
	require.False(t, ok)

	s := p.Stats()
	assert.Equal(t, uint64(5), s.Hits)
	assert.Equal(t, uint64(2), s.Misses)
}

func TestGranularity(t *testing.T) {
	d := time.Date(2023, 3, 17, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), Month.Truncate(d))
	assert.Equal(t, "2023-03", Month.Label(Month.Truncate(d)))
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Year.Truncate(d))
	assert.Equal(t, "2023", Year.Label(Year.Truncate(d)))
	assert.Equal(t, "month", Month.String())
	assert.Equal(t, "year", Year.String())
}
