package services

// Status classifies the outcome of a session operation.
type Status string

const (
	StatusOK                 Status = "OK"
	StatusCreated            Status = "Created"
	StatusValidationError    Status = "ValidationError"
	StatusNotFound           Status = "NotFound"
	StatusInvalidCredentials Status = "InvalidCredentials"
	StatusInvalidToken       Status = "InvalidToken"
	StatusInvalidTicket      Status = "InvalidTicket"
	StatusMismatch           Status = "Mismatch"
	StatusSamePassword       Status = "SamePassword"
	StatusCreationError      Status = "CreationError"
)

// Result is the outcome of an operation. Expected business failures are
// reported here; the accompanying error is reserved for infrastructure
// faults.
type Result[T any] struct {
	Status  Status
	Message string
	Reasons []string
	Payload T
}

func (r Result[T]) Succeeded() bool {
	return r.Status == StatusOK || r.Status == StatusCreated
}

func succeed[T any](status Status, message string, payload T) Result[T] {
	return Result[T]{Status: status, Message: message, Payload: payload}
}

func fail[T any](status Status, message string, reasons ...string) Result[T] {
	return Result[T]{Status: status, Message: message, Reasons: reasons}
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type RegisterInput struct {
	Name     string
	UserName string
	Email    string
	Password string
}

type RegisterPayload struct {
	ID string
}

type UpdatePasswordInput struct {
	OldPassword        string
	NewPassword        string
	ConfirmNewPassword string
}

type ResetPasswordInput struct {
	Email              string
	Token              string
	NewPassword        string
	ConfirmNewPassword string
}

// Empty is the payload of operations that return nothing.
type Empty struct{}
