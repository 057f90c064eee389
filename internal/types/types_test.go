package types

import (
	"encoding/json"
	"testing"
)

func TestAgeAcceptsNumberOrString(t *testing.T) {
	tests := []struct {
		in   string
		want Age
	}{
		{`17`, 17},
		{`"17"`, 17},
		{`" 21 "`, 21},
		{`null`, 0},
	}

	for _, tt := range tests {
		var a Age
		if err := json.Unmarshal([]byte(tt.in), &a); err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if a != tt.want {
			t.Fatalf("%s: got %d, want %d", tt.in, a, tt.want)
		}
	}
}

func TestAgeRejectsNonInteger(t *testing.T) {
	for _, in := range []string{`"seventeen"`, `17.5`, `true`} {
		var a Age
		if err := json.Unmarshal([]byte(in), &a); err == nil {
			t.Fatalf("%s: expected error", in)
		}
	}
}

func TestNewRegistrationDefaults(t *testing.T) {
	reg := CreateRegistrationRequest{FullName: "Mona", Age: 17, PhotoURL: "  "}.NewRegistration()

	if reg.Status != StatusPending {
		t.Fatalf("status = %q, want pending", reg.Status)
	}
	if reg.Friends == nil || len(reg.Friends) != 0 {
		t.Fatalf("friends = %#v, want empty list", reg.Friends)
	}
	if reg.PhotoURL != nil {
		t.Fatalf("photo = %q, want nil", *reg.PhotoURL)
	}
	if reg.Age != 17 {
		t.Fatalf("age = %d", reg.Age)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusApproved, StatusRejected} {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
	}
	if Status("archived").Valid() {
		t.Fatal("archived should be invalid")
	}
}
