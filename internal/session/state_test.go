package session

import (
	"testing"

	"ai-chathub-be/internal/constant"
)

func TestIsTempThreadID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{constant.TempThreadPrefix + "abc", true},
		{"7f3b1c9e-0000-0000-0000-000000000001", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsTempThreadID(tt.id); got != tt.want {
			t.Errorf("IsTempThreadID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestSameLogicalThread(t *testing.T) {
	temp := constant.TempThreadPrefix + "abc"
	real := "7f3b1c9e-0000-0000-0000-000000000001"

	tests := []struct {
		name   string
		prev   string
		next   string
		tempOf string
		want   bool
	}{
		{"identical ids", real, real, "", true},
		{"temp corrected to real", temp, real, temp, true},
		{"different threads", real, "7f3b1c9e-0000-0000-0000-000000000002", "", false},
		{"temp of another stream", temp, real, constant.TempThreadPrefix + "other", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameLogicalThread(tt.prev, tt.next, tt.tempOf); got != tt.want {
				t.Errorf("SameLogicalThread(%q, %q, %q) = %v, want %v", tt.prev, tt.next, tt.tempOf, got, tt.want)
			}
		})
	}
}
