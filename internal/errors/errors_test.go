package errors

import (
	"fmt"
	"testing"
)

func TestNutriError_Error(t *testing.T) {
	err := &NutriError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "food not found: licorne",
	}

	expected := "NOT_FOUND: food not found: licorne"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewNoQuantity(t *testing.T) {
	err := NewNoQuantity("poulet")

	if err.Code != ErrNoQuantity {
		t.Errorf("Code = %q, want %q", err.Code, ErrNoQuantity)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Details["text"] != "poulet" {
		t.Errorf("Details[text] = %v, want %q", err.Details["text"], "poulet")
	}
}

func TestNewEmptyFood(t *testing.T) {
	err := NewEmptyFood("200g")

	if err.Code != ErrEmptyFood {
		t.Errorf("Code = %q, want %q", err.Code, ErrEmptyFood)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("licorne")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["token"] != "licorne" {
		t.Errorf("Details[token] = %v, want %q", err.Details["token"], "licorne")
	}
}

func TestNewAmbiguous(t *testing.T) {
	err := NewAmbiguous("riz", []string{"riz blanc", "riz rouge"})

	if err.Code != ErrAmbiguous {
		t.Errorf("Code = %q, want %q", err.Code, ErrAmbiguous)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	candidates, ok := err.Details["candidates"].([]string)
	if !ok || len(candidates) != 2 {
		t.Errorf("Details[candidates] = %v, want 2 names", err.Details["candidates"])
	}
}

func TestNewEmptyLedger(t *testing.T) {
	err := NewEmptyLedger()

	if err.Code != ErrEmptyLedger {
		t.Errorf("Code = %q, want %q", err.Code, ErrEmptyLedger)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("text is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Message != "text is required" {
		t.Errorf("Message = %q, want %q", err.Message, "text is required")
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("database connection failed"))

	if err.Code != ErrInternal {
		t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
	}
	if err.Status != 500 {
		t.Errorf("Status = %d, want 500", err.Status)
	}
	if err.Message != "database connection failed" {
		t.Errorf("Message = %q, want %q", err.Message, "database connection failed")
	}

	errNil := NewInternal(nil)
	if errNil.Message != "internal error" {
		t.Errorf("Message = %q, want %q", errNil.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	err := NewNotFound("licorne")

	if !Is(err, ErrNotFound) {
		t.Error("Is(err, ErrNotFound) = false, want true")
	}
	if Is(err, ErrAmbiguous) {
		t.Error("Is(err, ErrAmbiguous) = true, want false")
	}
	if Is(fmt.Errorf("plain error"), ErrNotFound) {
		t.Error("Is(plainErr, ErrNotFound) = true, want false")
	}
	if Is(nil, ErrNotFound) {
		t.Error("Is(nil, ErrNotFound) = true, want false")
	}
}
