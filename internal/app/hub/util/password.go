package util

import (
	"golang.org/x/crypto/bcrypt"
)

// Стоимость bcrypt для хэшей паролей. Повышение не ломает
// существующие хэши: стоимость закодирована в самом хэше.
const passwordHashCost = bcrypt.DefaultCost

// HashPassword возвращает bcrypt-хэш пароля
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword сверяет пароль с сохраненным хэшем
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
