package model

import "testing"

func TestPublicName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"name wins when present", User{Name: "Dana", Contact: "@dana"}, "Dana"},
		{"handle fallback", User{Name: "", Contact: "@dana"}, "@dana"},
		{"email never shown", User{Name: "", Contact: "dana@example.com"}, ""},
		{"fully anonymous", User{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.PublicName(); got != tt.want {
				t.Errorf("PublicName() = %q, want %q", got, tt.want)
			}
		})
	}
}
