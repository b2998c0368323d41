package timefmt

import "time"

// Layout matches the DD/MM/YYYY HH:MM:SS rendering every chat endpoint uses.
const Layout = "02/01/2006 15:04:05"

// Formatter renders timestamps in a fixed display timezone.
type Formatter struct {
	loc *time.Location
}

// NewFormatter loads the named timezone, falling back to UTC if the zone is
// unknown on the host.
func NewFormatter(tzName string) *Formatter {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		loc = time.UTC
	}
	return &Formatter{loc: loc}
}

// Format renders t in the display timezone.
func (f *Formatter) Format(t time.Time) string {
	return t.In(f.loc).Format(Layout)
}

// FormatPtr renders an optional time; a nil time stays nil so it serializes
// as JSON null, matching how an open session reports its end time.
func (f *Formatter) FormatPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := f.Format(*t)
	return &s
}

// Now returns the current time formatted for display.
func (f *Formatter) Now() string {
	return f.Format(time.Now())
}
