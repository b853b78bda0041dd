package allocation

import (
	"testing"
	"time"
)

func TestParseTemplate(t *testing.T) {
	cases := []struct {
		name     string
		day      string
		timeOf   string
		duration string
		want     SlotTemplate
		wantErr  bool
	}{
		{
			name: "canonical 24h", day: "Monday", timeOf: "09:00", duration: "30",
			want: SlotTemplate{Day: time.Monday, Hour: 9, Minute: 0, Duration: 30 * time.Minute},
		},
		{
			name: "12h afternoon", day: "wednesday", timeOf: "2:00 PM", duration: "45",
			want: SlotTemplate{Day: time.Wednesday, Hour: 14, Minute: 0, Duration: 45 * time.Minute},
		},
		{
			name: "12h noon", day: "FRIDAY", timeOf: "12:30 PM", duration: "30",
			want: SlotTemplate{Day: time.Friday, Hour: 12, Minute: 30, Duration: 30 * time.Minute},
		},
		{
			name: "12h midnight", day: "Sun", timeOf: "12:00 AM", duration: "15",
			want: SlotTemplate{Day: time.Sunday, Hour: 0, Minute: 0, Duration: 15 * time.Minute},
		},
		{
			name: "abbreviated day", day: "thu", timeOf: "16:15", duration: "60",
			want: SlotTemplate{Day: time.Thursday, Hour: 16, Minute: 15, Duration: time.Hour},
		},
		{name: "bad day", day: "Funday", timeOf: "09:00", duration: "30", wantErr: true},
		{name: "bad hour", day: "Monday", timeOf: "25:00", duration: "30", wantErr: true},
		{name: "bad 12h hour", day: "Monday", timeOf: "13:00 PM", duration: "30", wantErr: true},
		{name: "missing minutes", day: "Monday", timeOf: "9", duration: "30", wantErr: true},
		{name: "zero duration", day: "Monday", timeOf: "09:00", duration: "0", wantErr: true},
		{name: "junk duration", day: "Monday", timeOf: "09:00", duration: "half an hour", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTemplate(tc.day, tc.timeOf, tc.duration)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse template: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
