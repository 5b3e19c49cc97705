package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrValidation         = errors.New("validation failed")
	ErrNoSession          = errors.New("no user logged in")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrLineIndex          = errors.New("cart line index out of range")
	ErrCheckoutFailed     = errors.New("checkout failed")
)
