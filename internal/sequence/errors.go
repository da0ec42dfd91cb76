package sequence

import (
	pkgerrors "github.com/rahadianwp/gudangku-backend/pkg/errors"
)

// DuplicateNumberDetails carries the rejected document number.
type DuplicateNumberDetails struct {
	Number string `json:"number"`
}

// NewDuplicateNumber builds the typed error raised when a document insert
// collides on its number. Callers holding a self-generated number retry with
// a fresh one; caller-supplied numbers surface the error unchanged.
func NewDuplicateNumber(number string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeDuplicateDocument, "document number already used").
		WithDetails(DuplicateNumberDetails{Number: number})
}
