package user_test

import (
	"testing"

	"github.com/alciverdev/farmatup-API/internal/domain/user"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    user.Role
		wantErr bool
	}{
		{name: "admin_upper", in: "ADMIN", want: user.RoleAdmin},
		{name: "admin_lower", in: "admin", want: user.RoleAdmin},
		{name: "employed_mixed", in: "Employed", want: user.RoleEmployed},
		{name: "unknown", in: "MANAGER", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "whitespace_not_trimmed", in: " admin", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := user.ParseRole(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRole(%q) = %q, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRole(%q) returned error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
