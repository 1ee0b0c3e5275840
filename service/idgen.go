package service

import "math/rand/v2"

const (
	employeeIDPrefix   = "UI"
	employeeIDLength   = 7
	employeeIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateEmployeeID returns "UI" followed by 7 random characters of [A-Z0-9].
// Uniqueness is not guaranteed here; inserts retry on conflict.
func GenerateEmployeeID() string {
	b := make([]byte, employeeIDLength)
	for i := range b {
		b[i] = employeeIDAlphabet[rand.IntN(len(employeeIDAlphabet))]
	}
	return employeeIDPrefix + string(b)
}
