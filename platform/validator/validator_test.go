package validator

import "testing"

type contactForm struct {
	FullName string `validate:"required"`
	Phone    string `validate:"required,phone"`
	Email    string `validate:"required,email"`
}

func TestStruct_PhoneTag(t *testing.T) {
	v := New()

	if err := v.Struct(contactForm{FullName: "Marie Tremblay", Phone: "450-555-1234", Email: "marie@example.com"}); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}

	err := v.Struct(contactForm{FullName: "Marie Tremblay", Phone: "abc", Email: "marie@example.com"})
	if err == nil {
		t.Fatal("expected phone validation to fail")
	}
	fields := FieldErrors(err)
	if fields["phone"] != "phone" {
		t.Fatalf("expected phone field error, got %v", fields)
	}
}

func TestFieldErrors_MissingFields(t *testing.T) {
	fields := FieldErrors(New().Struct(contactForm{}))
	for _, name := range []string{"fullName", "phone", "email"} {
		if fields[name] != "required" {
			t.Fatalf("expected %s to be required, got %v", name, fields)
		}
	}
}
