package availability_test

import (
	"testing"
	"time"

	"github.com/empanadas-abdonur/api/internal/availability"
)

// at builds a local time on a specific weekday. 2026-08-02 is a Sunday.
func at(weekday time.Weekday, hour, min int) time.Time {
	base := time.Date(2026, 8, 2, hour, min, 0, 0, time.UTC)
	return base.AddDate(0, 0, int(weekday))
}

func TestIsOpen_FullWeekSchedule(t *testing.T) {
	const hours = "Lun a Dom 10:00 - 23:00"

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"wednesday afternoon", at(time.Wednesday, 14, 0), true},
		{"wednesday after close", at(time.Wednesday, 23, 30), false},
		{"exactly at open", at(time.Monday, 10, 0), true},
		{"minute before open", at(time.Monday, 9, 59), false},
		{"exactly at close", at(time.Friday, 23, 0), false},
		{"minute before close", at(time.Friday, 22, 59), true},
		{"sunday covered by wrap", at(time.Sunday, 12, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := availability.IsOpen(hours, tt.now); got != tt.want {
				t.Errorf("IsOpen(%q, %s): got %v, want %v", hours, tt.now, got, tt.want)
			}
		})
	}
}

func TestIsOpen_WeekendScheduleWithMidnightClose(t *testing.T) {
	const hours = "Jue a Dom 18:00 - 00:00"

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"friday late evening", at(time.Friday, 22, 0), true},
		{"friday before open", at(time.Friday, 17, 59), false},
		{"saturday just before midnight", at(time.Saturday, 23, 59), true},
		{"sunday in range", at(time.Sunday, 19, 0), true},
		{"wednesday outside day range", at(time.Wednesday, 19, 0), false},
		{"monday outside day range", at(time.Monday, 19, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := availability.IsOpen(hours, tt.now); got != tt.want {
				t.Errorf("IsOpen(%q, %s): got %v, want %v", hours, tt.now, got, tt.want)
			}
		})
	}
}

func TestIsOpen_AcceptsAccentedAndLowercaseDays(t *testing.T) {
	now := at(time.Wednesday, 14, 0)

	for _, hours := range []string{
		"Mié a Sáb 10:00 - 20:00",
		"mie a sab 10:00 - 20:00",
		"MIÉ a SÁB 10:00 - 20:00",
	} {
		if !availability.IsOpen(hours, now) {
			t.Errorf("IsOpen(%q) on Wednesday 14:00: got false, want true", hours)
		}
	}
}

func TestIsOpen_MalformedScheduleMeansClosed(t *testing.T) {
	now := at(time.Wednesday, 14, 0)

	for _, hours := range []string{
		"",
		"abierto siempre",
		"Lun a Dom",
		"Lun a Dom 10:00",
		"Lun - Dom 10:00 - 23:00",
		"Xyz a Dom 10:00 - 23:00",
		"Lun a Qqq 10:00 - 23:00",
	} {
		if availability.IsOpen(hours, now) {
			t.Errorf("IsOpen(%q): got true, want false for malformed input", hours)
		}
	}
}

func TestIsOpen_SingleDaySchedule(t *testing.T) {
	const hours = "Sáb a Sáb 12:00 - 16:00"

	if !availability.IsOpen(hours, at(time.Saturday, 13, 0)) {
		t.Error("saturday inside window: got closed, want open")
	}
	if availability.IsOpen(hours, at(time.Friday, 13, 0)) {
		t.Error("friday: got open, want closed")
	}
}

func TestNewCalculator_UnknownTimezoneFallsBack(t *testing.T) {
	calc := availability.NewCalculator("Not/AZone")
	if calc == nil {
		t.Fatal("calculator is nil")
	}
	// Must not panic and must still evaluate schedules.
	_ = calc.IsOpenNow("Lun a Dom 00:00 - 00:00")
}
