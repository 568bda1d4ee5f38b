package services

import "testing"

func TestValidateUsername(t *testing.T) {
	valid := []string{"abc", "alice_01", "LibRarian"}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Errorf("%q должен быть валиден: %v", u, err)
		}
	}

	invalid := []string{"ab", "", "with space", "кириллица", "dash-name"}
	for _, u := range invalid {
		if err := ValidateUsername(u); err == nil {
			t.Errorf("%q должен быть отклонён", u)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	// Регистр не важен: достаточно буквы, цифры и спецсимвола
	valid := []string{"Sup3r-Secret", "password1!", "UPPER-CASE1!"}
	for _, pw := range valid {
		if err := ValidatePassword(pw); err != nil {
			t.Errorf("валидный пароль %q отклонён: %v", pw, err)
		}
	}

	invalid := map[string]string{
		"Ab1!":         "короткий",
		"12345678!":    "без буквы",
		"NoDigits-Pwd": "без цифры",
		"NoSpecial1Aa": "без спецсимвола",
	}
	for pw, why := range invalid {
		if err := ValidatePassword(pw); err == nil {
			t.Errorf("пароль %q (%s) должен быть отклонён", pw, why)
		}
	}
}

func TestNormalizeISBN(t *testing.T) {
	tests := []struct{ in, want string }{
		{"978-0-441-01359-3", "9780441013593"},
		{"0 441 01359 7", "0441013597"},
		{"155860832x", "155860832X"},
	}
	for _, tt := range tests {
		if got := NormalizeISBN(tt.in); got != tt.want {
			t.Errorf("NormalizeISBN(%q): ожидалось %q, получено %q", tt.in, tt.want, got)
		}
	}
}

func TestValidateISBN(t *testing.T) {
	if err := ValidateISBN("978-0-441-01359-3"); err != nil {
		t.Errorf("ISBN-13 отклонён: %v", err)
	}
	if err := ValidateISBN("155860832X"); err != nil {
		t.Errorf("ISBN-10 отклонён: %v", err)
	}
	if err := ValidateISBN("12345"); err == nil {
		t.Error("короткий ISBN должен быть отклонён")
	}
}
