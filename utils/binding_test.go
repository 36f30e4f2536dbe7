package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type itemBody struct {
	MenuItemID string  `json:"menu_item_id" binding:"required"`
	Quantity   int     `json:"quantity" binding:"required,min=1"`
	Note       *string `json:"note"`
}

type paymentBody struct {
	Status string `json:"status" binding:"required,oneof=cash_pending paid"`
	Email  string `json:"email" binding:"omitempty,email"`
}

func TestDecodeStrict(t *testing.T) {
	var ok itemBody
	assert.NoError(t, DecodeStrict([]byte(`{"menu_item_id":"m1","quantity":2}`), &ok))
	assert.Equal(t, 2, ok.Quantity)

	tests := []struct {
		name, body, msg string
	}{
		{"empty", ``, "request body is required"},
		{"unknown field", `{"menu_item_id":"m1","quantity":1,"price_override":1}`, `unknown field "price_override"`},
		{"wrong type", `{"menu_item_id":"m1","quantity":"two"}`, `field "quantity" has the wrong type`},
		{"trailing value", `{"menu_item_id":"m1","quantity":1}{"x":1}`, "request body must contain a single JSON object"},
		{"missing required", `{"quantity":1}`, "MenuItemID is required"},
		{"below min", `{"menu_item_id":"m1","quantity":-1}`, "Quantity must be at least 1"},
		{"malformed", `{"menu_item_id":`, "malformed JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body itemBody
			err := DecodeStrict([]byte(tt.body), &body)
			assert.True(t, IsKind(err, KindValidation), "got %v", err)
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestDecodeStrictOneOfAndEmail(t *testing.T) {
	var body paymentBody
	err := DecodeStrict([]byte(`{"status":"refunded"}`), &body)
	assert.EqualError(t, err, "Status must be one of [cash_pending paid]")

	err = DecodeStrict([]byte(`{"status":"paid","email":"nope"}`), &body)
	assert.EqualError(t, err, "Email must be a valid email")
}
