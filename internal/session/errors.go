package session

// AuthenticationError reports a rejected login.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// RegistrationError reports a rejected registration, including the local
// password-length precondition.
type RegistrationError struct {
	Message string
}

func (e *RegistrationError) Error() string {
	return e.Message
}
