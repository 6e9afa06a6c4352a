package flight

import "testing"

func TestRoleForPrecedence(t *testing.T) {
	target := "u1"
	tests := []struct {
		name string
		fl   Flight
		want string
	}{
		{name: "pilot", fl: Flight{UserID: "u1"}, want: RolePilot},
		{name: "instructor", fl: Flight{UserID: "u2", InstructorID: "u1"}, want: RoleInstructor},
		{name: "payer", fl: Flight{UserID: "u2", PayerID: "u1"}, want: RolePayer},
		{name: "pilot paying own flight", fl: Flight{UserID: "u1", PayerID: "u1"}, want: RolePilot},
		// instructor wins over payer; locked-in legacy behavior
		{name: "instructor and payer", fl: Flight{UserID: "u2", InstructorID: "u1", PayerID: "u1"}, want: RoleInstructor},
		{name: "pilot and instructor", fl: Flight{UserID: "u1", InstructorID: "u1"}, want: RoleInstructor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fl.RoleFor(target); got != tt.want {
				t.Errorf("RoleFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsCharteredFor(t *testing.T) {
	tests := []struct {
		name string
		fl   Flight
		want bool
	}{
		{name: "other pilot on my tab", fl: Flight{UserID: "u2", PayerID: "u1"}, want: true},
		{name: "my own flight on my tab", fl: Flight{UserID: "u1", PayerID: "u1"}, want: false},
		{name: "no payer", fl: Flight{UserID: "u2"}, want: false},
		{name: "someone else's tab", fl: Flight{UserID: "u2", PayerID: "u3"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fl.IsCharteredFor("u1"); got != tt.want {
				t.Errorf("IsCharteredFor() = %v, want %v", got, tt.want)
			}
		})
	}
}
