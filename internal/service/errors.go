package service

import "github.com/adamsuskin/grocery-sub012/internal/domain"

type ConflictError struct {
	Conflict *domain.Conflict
}

func (e *ConflictError) Error() string {
	return "conflict detected"
}
