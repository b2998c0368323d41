package timefmt

import (
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	f := NewFormatter("Asia/Karachi")

	// 2024-06-01 12:00:00 UTC is 17:00:00 in Karachi (UTC+5, no DST).
	utc := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if got := f.Format(utc); got != "01/06/2024 17:00:00" {
		t.Errorf("Format = %q, want %q", got, "01/06/2024 17:00:00")
	}
}

func TestFormatPtr(t *testing.T) {
	f := NewFormatter("UTC")

	if got := f.FormatPtr(nil); got != nil {
		t.Errorf("FormatPtr(nil) = %v, want nil", got)
	}

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	got := f.FormatPtr(&ts)
	if got == nil || *got != "02/01/2024 03:04:05" {
		t.Errorf("FormatPtr = %v, want %q", got, "02/01/2024 03:04:05")
	}
}

func TestUnknownZoneFallsBackToUTC(t *testing.T) {
	f := NewFormatter("Not/AZone")

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := f.Format(ts); got != "02/01/2024 03:04:05" {
		t.Errorf("Format = %q, want UTC rendering", got)
	}
}
