package normalize

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		kind OutcomeKind
	}{
		{"two digit year", "20/02/26", "2026-02-20", OutcomeStandardized},
		{"dotted", "07.01.2026", "2026-01-07", OutcomeStandardized},
		{"dashed", "17-03-2026", "2026-03-17", OutcomeStandardized},
		{"unpadded", "1/2/26", "2026-02-01", OutcomeStandardized},
		{"iso", "2026-01-07", "2026-01-07", OutcomeUnchanged},
		{"iso with slashes", "2026/01/07", "2026-01-07", OutcomeStandardized},
		{"iso month over twelve", "2025-13-05", "2025-05-13", OutcomeCorrected},
		{"day first month over twelve", "05/13/2025", "2025-05-13", OutcomeCorrected},
		{"spreadsheet timestamp", "2025-01-05 00:00:00", "2025-01-05", OutcomeStandardized},
		{"iso timestamp", "2025-01-05T08:30:00", "2025-01-05", OutcomeStandardized},
		{"leap day", "29/02/2024", "2024-02-29", OutcomeStandardized},
		{"quoted", `"20/02/26"`, "2026-02-20", OutcomeStandardized},
		{"not a leap year", "29/02/2025", "", OutcomeFailed},
		{"day out of range", "2026-02-30", "", OutcomeFailed},
		{"both over twelve", "13/13/2025", "", OutcomeFailed},
		{"mixed separators", "20/02-26", "", OutcomeFailed},
		{"three digit year", "20/02/202", "", OutcomeFailed},
		{"words", "tomorrow", "", OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, out := ResolveDate(Raw(tt.in))
			assert.Equal(t, tt.want, value.String())
			assert.Equal(t, tt.kind, out.Kind, "reason: %s", out.Reason)
		})
	}
}

func TestResolveDateRoundTrip(t *testing.T) {
	start := time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 500; i += 7 {
		d := start.AddDate(0, 0, i)
		for _, layout := range []string{"02/01/2006", "02-01-2006", "02.01.2006", "02/01/06"} {
			in := d.Format(layout)
			value, out := ResolveDate(Raw(in))
			assert.Equal(t, d.Format("2006-01-02"), value.String(), in)
			assert.NotEqual(t, OutcomeFailed, out.Kind, in)
		}
	}
}

func TestResolveDateIdempotent(t *testing.T) {
	for _, in := range []string{"20/02/26", "2025-13-05", "07.01.2026", "2025-01-05 00:00:00"} {
		first, _ := ResolveDate(Raw(in))
		second, out := ResolveDate(Raw(first.String()))
		assert.Equal(t, first.String(), second.String(), in)
		assert.Equal(t, OutcomeUnchanged, out.Kind, fmt.Sprintf("%s -> %s", in, first))
	}
}
