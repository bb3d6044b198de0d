package util

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	v := NewInputValidator()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"strips angle brackets", "<script>alert(1)</script>", "scriptalert(1)/script"},
		{"strips quotes", `it"s 'fine'`, "its fine"},
		{"strips javascript protocol", "javascript:alert(1)", "alert(1)"},
		{"strips event handlers", "onclick=steal()", "steal()"},
		{"plain text untouched", "fresh tomatoes", "fresh tomatoes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, v.Sanitize(tt.input))
		})
	}
}

func TestSanitize_LengthCap(t *testing.T) {
	v := NewInputValidator()
	long := strings.Repeat("a", 2000)
	assert.Len(t, v.Sanitize(long), maxSanitizedLength)
}

func TestSanitize_LengthCapCountsCharacters(t *testing.T) {
	v := NewInputValidator()

	// 2000 арабских символов режутся до 1000 символов, а не байт
	long := strings.Repeat("س", 2000)
	out := v.Sanitize(long)

	assert.Equal(t, maxSanitizedLength, utf8.RuneCountInString(out))
	assert.True(t, utf8.ValidString(out))
}

func TestFieldLengths_CountCharactersNotBytes(t *testing.T) {
	v := NewInputValidator()

	// 80 арабских символов - 160 байт, но в пределах 100 символов
	name := strings.Repeat("ع", 80)
	assert.True(t, v.ValidateFullName(name).Valid)
	assert.False(t, v.ValidateFullName(strings.Repeat("ع", 101)).Valid)

	desc := strings.Repeat("س", 400)
	assert.True(t, v.ValidateDescription(desc).Valid)
	assert.False(t, v.ValidateDescription(strings.Repeat("س", 501)).Valid)
}

func TestValidateUsername(t *testing.T) {
	v := NewInputValidator()

	assert.True(t, v.ValidateUsername("farmer_ali").Valid)
	assert.True(t, v.ValidateUsername("Ali123").Valid)

	assert.False(t, v.ValidateUsername("").Valid)
	assert.False(t, v.ValidateUsername("ab").Valid)
	assert.False(t, v.ValidateUsername(strings.Repeat("a", 21)).Valid)
	assert.False(t, v.ValidateUsername("ali hassan").Valid)
	assert.False(t, v.ValidateUsername("ali@farm").Valid)
}

func TestValidatePassword(t *testing.T) {
	v := NewInputValidator()

	assert.True(t, v.ValidatePassword("SecurePass1").Valid)
	assert.True(t, v.ValidatePassword("Abcdef1!").Valid)

	assert.False(t, v.ValidatePassword("").Valid)
	assert.False(t, v.ValidatePassword("Short1").Valid)
	assert.False(t, v.ValidatePassword("alllowercase1").Valid)
	assert.False(t, v.ValidatePassword("ALLUPPERCASE1").Valid)
	assert.False(t, v.ValidatePassword("NoDigitsHere").Valid)
	assert.False(t, v.ValidatePassword("SecurePass1"+strings.Repeat("a", 128)).Valid)
}

func TestValidateEmail(t *testing.T) {
	v := NewInputValidator()

	// Email необязателен
	assert.True(t, v.ValidateEmail("").Valid)
	assert.True(t, v.ValidateEmail("ali@farm.eg").Valid)

	assert.False(t, v.ValidateEmail("not-an-email").Valid)
	assert.False(t, v.ValidateEmail("a@b").Valid)
	assert.False(t, v.ValidateEmail(strings.Repeat("a", 95)+"@farm.eg").Valid)
}

func TestValidatePhone(t *testing.T) {
	v := NewInputValidator()

	assert.True(t, v.ValidatePhone("").Valid)
	assert.True(t, v.ValidatePhone("+20 100 123456").Valid)
	assert.True(t, v.ValidatePhone("01001234567").Valid)

	assert.False(t, v.ValidatePhone("123").Valid)
	assert.False(t, v.ValidatePhone("phone-number").Valid)
}

func TestValidateFullName(t *testing.T) {
	v := NewInputValidator()

	assert.True(t, v.ValidateFullName("Ali Hassan").Valid)
	assert.True(t, v.ValidateFullName("Jean-Pierre").Valid)
	// Арабские имена допустимы
	assert.True(t, v.ValidateFullName("علي حسن").Valid)

	assert.False(t, v.ValidateFullName("").Valid)
	assert.False(t, v.ValidateFullName("Ali123").Valid)
}

func TestValidateProductAndLocation(t *testing.T) {
	v := NewInputValidator()

	assert.True(t, v.ValidateProduct("Fresh Tomatoes").Valid)
	assert.True(t, v.ValidateProduct("طماطم طازجة").Valid)
	assert.False(t, v.ValidateProduct("").Valid)
	assert.False(t, v.ValidateProduct("x").Valid)

	assert.True(t, v.ValidateLocation("Giza, Egypt").Valid)
	assert.False(t, v.ValidateLocation("").Valid)
}

func TestValidateQuantityAndPrice(t *testing.T) {
	v := NewInputValidator()

	assert.True(t, v.ValidateQuantity("").Valid)
	assert.True(t, v.ValidateQuantity("50 kg").Valid)
	assert.True(t, v.ValidateQuantity("2.5").Valid)
	assert.False(t, v.ValidateQuantity("lots").Valid)

	assert.True(t, v.ValidatePrice("").Valid)
	assert.True(t, v.ValidatePrice("12.50 EGP").Valid)
	assert.False(t, v.ValidatePrice("cheap").Valid)
}

func TestValidateHarvestDate(t *testing.T) {
	v := NewInputValidator()

	assert.True(t, v.ValidateHarvestDate("").Valid)
	assert.True(t, v.ValidateHarvestDate(time.Now().Format("2006-01-02")).Valid)

	assert.False(t, v.ValidateHarvestDate("not-a-date").Valid)
	assert.False(t, v.ValidateHarvestDate(time.Now().AddDate(-2, 0, 0).Format("2006-01-02")).Valid)
	assert.False(t, v.ValidateHarvestDate(time.Now().AddDate(2, 0, 0).Format("2006-01-02")).Valid)
}

func TestValidateSignUpForm(t *testing.T) {
	v := NewInputValidator()

	cleaned, errs := v.ValidateSignUpForm(SignUpForm{
		Username: "  farmer_ali ",
		Password: "SecurePass1",
		FullName: "Ali Hassan",
		Email:    "ali@farm.eg",
		Phone:    "+20 100 123456",
	})

	assert.Empty(t, errs)
	assert.Equal(t, "farmer_ali", cleaned.Username)
	assert.Equal(t, "Ali Hassan", cleaned.FullName)
}

func TestValidateSignUpForm_CollectsAllErrors(t *testing.T) {
	v := NewInputValidator()

	_, errs := v.ValidateSignUpForm(SignUpForm{
		Username: "x",
		Password: "weak",
		FullName: "",
		Email:    "bad-email",
		Phone:    "123",
	})

	assert.Len(t, errs, 5)
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "full_name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "phone")
}
