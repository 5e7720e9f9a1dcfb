package utils

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00:00", 0, false},
		{"08:30:15", 8*3600 + 30*60 + 15, false},
		{"23:59:59", 23*3600 + 59*60 + 59, false},
		{"25:15:00", 25*3600 + 15*60, false}, // post-midnight service
		{"107:00:00", 107 * 3600, false},
		{"8:05:00", 8*3600 + 5*60, false},
		{"", 0, true},
		{"08:30", 0, true},
		{"08:61:00", 0, true},
		{"08:30:60", 0, true},
		{"-1:00:00", 0, true},
		{"ab:cd:ef", 0, true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseClock(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatalf("ParseClock(%q): expected error, got %d", c.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q): %v", c.in, err)
			}
			if got != c.want {
				t.Fatalf("ParseClock(%q) = %d, want %d", c.in, got, c.want)
			}
		})
	}
}

func TestHourOfWrapsPastMidnight(t *testing.T) {
	sec, err := ParseClock("25:15:00")
	if err != nil {
		t.Fatal(err)
	}
	if h := HourOf(sec); h != 1 {
		t.Fatalf("HourOf(25:15:00) = %d, want 1", h)
	}
	sec, _ = ParseClock("23:45:00")
	if h := HourOf(sec); h != 23 {
		t.Fatalf("HourOf(23:45:00) = %d, want 23", h)
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00:00", "09:05:30", "25:15:00"} {
		sec, err := ParseClock(s)
		if err != nil {
			t.Fatal(err)
		}
		if got := FormatClock(sec); got != s {
			t.Fatalf("FormatClock(ParseClock(%q)) = %q", s, got)
		}
	}
}

func TestElapsedMinutesUsesUnnormalizedSeconds(t *testing.T) {
	from, _ := ParseClock("23:50:00")
	to, _ := ParseClock("24:10:00")
	if got := ElapsedMinutes(from, to); got != 20.0 {
		t.Fatalf("ElapsedMinutes across midnight = %v, want 20", got)
	}
}
