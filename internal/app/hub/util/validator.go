package util

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Максимальные длины полей форм
const (
	maxUsernameLength    = 20
	maxEmailLength       = 100
	maxPhoneLength       = 15
	maxPasswordLength    = 128
	maxProductLength     = 100
	maxLocationLength    = 100
	maxQuantityLength    = 50
	maxPriceLength       = 50
	maxDescriptionLength = 500
	maxFullNameLength    = 100
	maxSanitizedLength   = 1000
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern    = regexp.MustCompile(`^[+]?[0-9\s\-()]{8,15}$`)
	// Названия и адреса допускают латиницу и арабский алфавит
	productPattern  = regexp.MustCompile(`^[a-zA-Z0-9\s\-.,\x{0600}-\x{06FF}]{2,100}$`)
	locationPattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-.,\x{0600}-\x{06FF}]{2,100}$`)
	quantityPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?\s*[a-zA-Z\x{0600}-\x{06FF}]*$`)
	pricePattern    = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?\s*[a-zA-Z\x{0600}-\x{06FF}]*$`)
	fullNamePattern = regexp.MustCompile(`^[a-zA-Z\s\-\x{0600}-\x{06FF}]+$`)

	dangerousChars  = regexp.MustCompile(`[<>"']`)
	jsProtocol      = regexp.MustCompile(`(?i)javascript:`)
	eventHandlers   = regexp.MustCompile(`(?i)on\w+=`)
	passwordCharset = regexp.MustCompile(`^[a-zA-Z\d@$!%*?&]{8,}$`)
)

// FieldResult - результат проверки одного поля формы
type FieldResult struct {
	Valid bool
	Value string
	Error string
}

func fieldOK(value string) FieldResult {
	return FieldResult{Valid: true, Value: value}
}

func fieldErr(msg string) FieldResult {
	return FieldResult{Valid: false, Error: msg}
}

// SignUpForm - поля формы регистрации
type SignUpForm struct {
	Username string
	Password string
	FullName string
	Email    string
	Phone    string
}

// ListingForm - поля формы создания объявления
type ListingForm struct {
	Name        string
	Phone       string
	Product     string
	Location    string
	Email       string
	Quantity    string
	Price       string
	Description string
	HarvestDate string
}

// InputValidator проверяет и очищает пользовательский ввод форм
type InputValidator struct{}

func NewInputValidator() *InputValidator {
	return &InputValidator{}
}

// Sanitize очищает ввод: обрезает пробелы, удаляет опасные символы
// и ограничивает длину. Длина считается в символах, обрезка не рвет
// многобайтовые руны.
func (v *InputValidator) Sanitize(input string) string {
	s := strings.TrimSpace(input)
	s = dangerousChars.ReplaceAllString(s, "")
	s = jsProtocol.ReplaceAllString(s, "")
	s = eventHandlers.ReplaceAllString(s, "")

	if utf8.RuneCountInString(s) > maxSanitizedLength {
		s = string([]rune(s)[:maxSanitizedLength])
	}

	return s
}

// ValidateUsername проверяет имя пользователя
func (v *InputValidator) ValidateUsername(username string) FieldResult {
	s := v.Sanitize(username)

	if s == "" {
		return fieldErr("Username is required")
	}

	if utf8.RuneCountInString(s) < 3 || utf8.RuneCountInString(s) > maxUsernameLength {
		return fieldErr("Username must be 3-20 characters")
	}

	if !usernamePattern.MatchString(s) {
		return fieldErr("Username can only contain letters, numbers, and underscores")
	}

	return fieldOK(s)
}

// ValidateEmail проверяет email. Пустое значение допустимо - поле необязательное.
func (v *InputValidator) ValidateEmail(email string) FieldResult {
	if email == "" {
		return fieldOK("")
	}

	s := v.Sanitize(email)

	if utf8.RuneCountInString(s) > maxEmailLength {
		return fieldErr("Email is too long")
	}

	if !emailPattern.MatchString(s) {
		return fieldErr("Please enter a valid email address")
	}

	return fieldOK(s)
}

// ValidatePhone проверяет номер телефона. Пустое значение допустимо.
func (v *InputValidator) ValidatePhone(phone string) FieldResult {
	if phone == "" {
		return fieldOK("")
	}

	s := v.Sanitize(phone)

	if utf8.RuneCountInString(s) > maxPhoneLength {
		return fieldErr("Phone number is too long")
	}

	if !phonePattern.MatchString(s) {
		return fieldErr("Please enter a valid phone number")
	}

	return fieldOK(s)
}

// ValidatePassword проверяет пароль: длина, допустимые символы
// и обязательное наличие строчной буквы, заглавной буквы и цифры
func (v *InputValidator) ValidatePassword(password string) FieldResult {
	s := v.Sanitize(password)

	if s == "" {
		return fieldErr("Password is required")
	}

	if utf8.RuneCountInString(s) < 8 {
		return fieldErr("Password must be at least 8 characters")
	}

	if utf8.RuneCountInString(s) > maxPasswordLength {
		return fieldErr("Password is too long")
	}

	if !passwordCharset.MatchString(s) || !hasRequiredClasses(s) {
		return fieldErr("Password must contain uppercase, lowercase, and number")
	}

	return fieldOK(s)
}

// hasRequiredClasses проверяет наличие строчной буквы, заглавной буквы и цифры
func hasRequiredClasses(s string) bool {
	var hasLower, hasUpper, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLower && hasUpper && hasDigit
}

// ValidateFullName проверяет полное имя
func (v *InputValidator) ValidateFullName(fullName string) FieldResult {
	s := v.Sanitize(fullName)

	if s == "" {
		return fieldErr("Full name is required")
	}

	if utf8.RuneCountInString(s) < 2 || utf8.RuneCountInString(s) > maxFullNameLength {
		return fieldErr("Full name must be 2-100 characters")
	}

	if !fullNamePattern.MatchString(s) {
		return fieldErr("Full name can only contain letters, spaces, and hyphens")
	}

	return fieldOK(s)
}

// ValidateProduct проверяет название товара
func (v *InputValidator) ValidateProduct(product string) FieldResult {
	s := v.Sanitize(product)

	if s == "" {
		return fieldErr("Product name is required")
	}

	if !productPattern.MatchString(s) {
		return fieldErr("Product name contains invalid characters")
	}

	return fieldOK(s)
}

// ValidateLocation проверяет местоположение
func (v *InputValidator) ValidateLocation(location string) FieldResult {
	s := v.Sanitize(location)

	if s == "" {
		return fieldErr("Location is required")
	}

	if !locationPattern.MatchString(s) {
		return fieldErr("Location contains invalid characters")
	}

	return fieldOK(s)
}

// ValidateQuantity проверяет количество. Пустое значение допустимо.
func (v *InputValidator) ValidateQuantity(quantity string) FieldResult {
	if quantity == "" {
		return fieldOK("")
	}

	s := v.Sanitize(quantity)

	if utf8.RuneCountInString(s) > maxQuantityLength {
		return fieldErr("Quantity is too long")
	}

	if !quantityPattern.MatchString(s) {
		return fieldErr("Please enter a valid quantity")
	}

	return fieldOK(s)
}

// ValidatePrice проверяет цену. Пустое значение допустимо.
func (v *InputValidator) ValidatePrice(price string) FieldResult {
	if price == "" {
		return fieldOK("")
	}

	s := v.Sanitize(price)

	if utf8.RuneCountInString(s) > maxPriceLength {
		return fieldErr("Price is too long")
	}

	if !pricePattern.MatchString(s) {
		return fieldErr("Please enter a valid price")
	}

	return fieldOK(s)
}

// ValidateDescription проверяет описание. Пустое значение допустимо.
func (v *InputValidator) ValidateDescription(description string) FieldResult {
	if description == "" {
		return fieldOK("")
	}

	s := v.Sanitize(description)

	if utf8.RuneCountInString(s) > maxDescriptionLength {
		return fieldErr("Description is too long")
	}

	return fieldOK(s)
}

// ValidateHarvestDate проверяет дату сбора урожая: она должна разбираться
// и попадать в окно плюс-минус год от текущей даты. Пустое значение допустимо.
func (v *InputValidator) ValidateHarvestDate(date string) FieldResult {
	if date == "" {
		return fieldOK("")
	}

	s := v.Sanitize(date)

	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fieldErr("Please enter a valid date")
	}

	now := time.Now()
	oneYearAgo := now.AddDate(-1, 0, 0)
	oneYearFromNow := now.AddDate(1, 0, 0)

	if parsed.Before(oneYearAgo) || parsed.After(oneYearFromNow) {
		return fieldErr("Date must be within the last year or next year")
	}

	return fieldOK(s)
}

// ValidateSignUpForm проверяет форму регистрации целиком.
// Возвращает очищенную форму и ошибки по полям.
func (v *InputValidator) ValidateSignUpForm(form SignUpForm) (SignUpForm, map[string]string) {
	errs := make(map[string]string)
	var cleaned SignUpForm

	if r := v.ValidateUsername(form.Username); r.Valid {
		cleaned.Username = r.Value
	} else {
		errs["username"] = r.Error
	}

	if r := v.ValidatePassword(form.Password); r.Valid {
		cleaned.Password = r.Value
	} else {
		errs["password"] = r.Error
	}

	if r := v.ValidateFullName(form.FullName); r.Valid {
		cleaned.FullName = r.Value
	} else {
		errs["full_name"] = r.Error
	}

	if r := v.ValidateEmail(form.Email); r.Valid {
		cleaned.Email = r.Value
	} else {
		errs["email"] = r.Error
	}

	if r := v.ValidatePhone(form.Phone); r.Valid {
		cleaned.Phone = r.Value
	} else {
		errs["phone"] = r.Error
	}

	return cleaned, errs
}

// ValidateListingForm проверяет форму объявления целиком
func (v *InputValidator) ValidateListingForm(form ListingForm) (ListingForm, map[string]string) {
	errs := make(map[string]string)
	var cleaned ListingForm

	if r := v.ValidateFullName(form.Name); r.Valid {
		cleaned.Name = r.Value
	} else {
		errs["name"] = r.Error
	}

	if r := v.ValidatePhone(form.Phone); r.Valid {
		cleaned.Phone = r.Value
	} else {
		errs["phone"] = r.Error
	}

	if r := v.ValidateProduct(form.Product); r.Valid {
		cleaned.Product = r.Value
	} else {
		errs["product"] = r.Error
	}

	if r := v.ValidateLocation(form.Location); r.Valid {
		cleaned.Location = r.Value
	} else {
		errs["location"] = r.Error
	}

	if r := v.ValidateEmail(form.Email); r.Valid {
		cleaned.Email = r.Value
	} else {
		errs["email"] = r.Error
	}

	if r := v.ValidateQuantity(form.Quantity); r.Valid {
		cleaned.Quantity = r.Value
	} else {
		errs["quantity"] = r.Error
	}

	if r := v.ValidatePrice(form.Price); r.Valid {
		cleaned.Price = r.Value
	} else {
		errs["price"] = r.Error
	}

	if r := v.ValidateDescription(form.Description); r.Valid {
		cleaned.Description = r.Value
	} else {
		errs["description"] = r.Error
	}

	if r := v.ValidateHarvestDate(form.HarvestDate); r.Valid {
		cleaned.HarvestDate = r.Value
	} else {
		errs["harvest_date"] = r.Error
	}

	return cleaned, errs
}
