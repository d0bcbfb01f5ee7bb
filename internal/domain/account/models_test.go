package account

import "testing"

func TestIsValidCurrency(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"BRL", true},
		{"USD", true},
		{"EUR", true},
		{"XYZ", false},
		{"usd", false},
		{"US", false},
		{"USDT", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := IsValidCurrency(tt.code); got != tt.want {
				t.Errorf("IsValidCurrency(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestCreateParamsValidate(t *testing.T) {
	valid := CreateParams{UserID: "user-1", Name: "Checking", Currency: "USD"}

	if err := valid.Validate(); err != nil {
		t.Errorf("valid params returned error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(p *CreateParams)
	}{
		{"missing user", func(p *CreateParams) { p.UserID = "" }},
		{"missing name", func(p *CreateParams) { p.Name = "" }},
		{"missing currency", func(p *CreateParams) { p.Currency = "" }},
		{"unknown currency", func(p *CreateParams) { p.Currency = "ABC" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
