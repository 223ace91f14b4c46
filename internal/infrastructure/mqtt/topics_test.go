package mqtt

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "state topic",
			got:      topics.State("SN123_DEVICE", "ph"),
			expected: "pooldose/state/SN123_DEVICE/ph",
		},
		{
			name:     "command topic",
			got:      topics.Command("SN123_DEVICE", "ph_target"),
			expected: "pooldose/command/SN123_DEVICE/ph_target",
		},
		{
			name:     "command wildcard",
			got:      topics.CommandWildcard("SN123_DEVICE"),
			expected: "pooldose/command/SN123_DEVICE/+",
		},
		{
			name:     "availability topic",
			got:      topics.Availability("SN123_DEVICE"),
			expected: "pooldose/availability/SN123_DEVICE",
		},
		{
			name:     "system status topic",
			got:      topics.SystemStatus(),
			expected: "pooldose/system/status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}
