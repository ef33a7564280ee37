package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	if err := v.RegisterValidation("strongpassword", strongPassword); err != nil {
		t.Fatalf("register rule: %v", err)
	}
	return v
}

func TestStrongPassword(t *testing.T) {
	v := newValidator(t)

	cases := []struct {
		password string
		valid    bool
	}{
		{"Abc12345", true},
		{"Sup3rSecret", true},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoDigitsHere", false},
		{"12345678", false},
		{"", false},
		{"Pa1", true}, // length is the min tag's job, not this rule's
	}

	for _, tc := range cases {
		err := v.Var(tc.password, "strongpassword")
		if tc.valid && err != nil {
			t.Errorf("Expected %q to pass, got %v", tc.password, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("Expected %q to fail", tc.password)
		}
	}
}

func TestFormatErrors_NonValidationError(t *testing.T) {
	messages := FormatErrors(errFake{})
	if len(messages) != 1 || messages[0] != "request body is invalid" {
		t.Errorf("Expected generic message for non-validation error, got %v", messages)
	}
}

func TestFormatErrors_FieldMessages(t *testing.T) {
	v := newValidator(t)

	type form struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=8,strongpassword"`
	}

	err := v.Struct(form{Email: "not-an-email", Password: "weak"})
	if err == nil {
		t.Fatal("Expected validation to fail")
	}

	messages := FormatErrors(err)
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %v", messages)
	}
	if messages[0] != "email is not a valid address" {
		t.Errorf("Unexpected email message: %q", messages[0])
	}
	if messages[1] != "password must be at least 8 characters" {
		t.Errorf("Unexpected password message: %q", messages[1])
	}
}

type errFake struct{}

func (errFake) Error() string { return "boom" }
