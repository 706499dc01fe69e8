package businesshours

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultClosedMessage dikirim jika chatbot tidak mengatur pesan di luar jam operasional
const DefaultClosedMessage = "Terima kasih sudah menghubungi kami. Saat ini kami sedang di luar jam operasional, pesan Anda akan kami balas secepatnya pada jam kerja."

// DaySchedule is the open/close window for one weekday (HH:MM, 24h)
type DaySchedule struct {
	Open  bool   `json:"open"`
	Start string `json:"start"`
	End   string `json:"end"`

	startMin int
	endMin   int
}

// Schedule is the validated form of a chatbot's business_hours JSON column
type Schedule struct {
	Enabled       bool
	Location      *time.Location
	ClosedMessage string
	Days          map[time.Weekday]DaySchedule
}

// rawSchedule mirrors the JSON stored by the dashboard:
//
//	{"enabled":true,"timezone":"Asia/Jakarta","message":"...",
//	 "days":{"monday":{"open":true,"start":"08:00","end":"17:00"}}}
type rawSchedule struct {
	Enabled  bool                   `json:"enabled"`
	Timezone string                 `json:"timezone"`
	Message  string                 `json:"message"`
	Days     map[string]DaySchedule `json:"days"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	// Indonesian aliases
	"minggu": time.Sunday,
	"senin":  time.Monday,
	"selasa": time.Tuesday,
	"rabu":   time.Wednesday,
	"kamis":  time.Thursday,
	"jumat":  time.Friday,
	"sabtu":  time.Saturday,
}

// Parse validates a business_hours blob. Empty input (or JSON null) yields a nil
// schedule, meaning no gating. fallback is used when the blob has no timezone.
func Parse(raw []byte, fallback *time.Location) (*Schedule, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		return nil, nil
	}

	var r rawSchedule
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("invalid business hours json: %w", err)
	}

	loc := fallback
	if loc == nil {
		loc = time.UTC
	}
	if r.Timezone != "" {
		l, err := time.LoadLocation(r.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", r.Timezone, err)
		}
		loc = l
	}

	s := &Schedule{
		Enabled:       r.Enabled,
		Location:      loc,
		ClosedMessage: strings.TrimSpace(r.Message),
		Days:          make(map[time.Weekday]DaySchedule, len(r.Days)),
	}

	for name, day := range r.Days {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		if day.Open {
			start, err := parseClock(day.Start)
			if err != nil {
				return nil, fmt.Errorf("%s start: %w", name, err)
			}
			end, err := parseClock(day.End)
			if err != nil {
				return nil, fmt.Errorf("%s end: %w", name, err)
			}
			if end < start {
				return nil, fmt.Errorf("%s: end %s is before start %s", name, day.End, day.Start)
			}
			day.startMin, day.endMin = start, end
		}
		s.Days[wd] = day
	}

	return s, nil
}

// Message returns the out-of-hours text, falling back to the default
func (s *Schedule) Message() string {
	if s == nil || s.ClosedMessage == "" {
		return DefaultClosedMessage
	}
	return s.ClosedMessage
}

// IsOpen reports whether now falls inside the schedule. A nil or disabled
// schedule never gates. Unconfigured or closed days are closed; open days
// include both boundary minutes.
func IsOpen(s *Schedule, now time.Time) bool {
	if s == nil || !s.Enabled {
		return true
	}

	if s.Location != nil {
		now = now.In(s.Location)
	}

	day, ok := s.Days[now.Weekday()]
	if !ok || !day.Open {
		return false
	}

	minute := now.Hour()*60 + now.Minute()
	return minute >= day.startMin && minute <= day.endMin
}

var indonesianDays = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

// Summary renders the open days for the AI prompt, Monday first,
// e.g. "Senin 08:00-17:00, Selasa 08:00-17:00". Empty when not gated.
func (s *Schedule) Summary() string {
	if s == nil || !s.Enabled {
		return ""
	}
	parts := make([]string, 0, 7)
	for i := 1; i <= 7; i++ {
		wd := time.Weekday(i % 7)
		day, ok := s.Days[wd]
		if !ok || !day.Open {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s-%s", indonesianDays[wd], strings.TrimSpace(day.Start), strings.TrimSpace(day.End)))
	}
	if len(parts) == 0 {
		return "Tutup"
	}
	return strings.Join(parts, ", ")
}

func parseClock(v string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", v)
	}
	return t.Hour()*60 + t.Minute(), nil
}
