package category

import "testing"

func TestCreateCategoryRequestTrims(t *testing.T) {
	req := CreateCategoryRequest{Name: "  History  "}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Name != "History" {
		t.Fatalf("expected trimmed name, got %q", req.Name)
	}

	blank := CreateCategoryRequest{Name: "   "}
	if err := blank.Validate(); err == nil {
		t.Fatal("expected a blank name to fail")
	}
}

func TestUpdateCategoryRequestValidate(t *testing.T) {
	name := "Art"
	req := UpdateCategoryRequest{ID: "0b8c7a57-8a76-4d8b-9d39-3f0c0a3f6a10", Name: &name}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req.ID = "nope"
	if err := req.Validate(); err == nil {
		t.Fatal("expected an invalid id to fail")
	}
}
