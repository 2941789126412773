package usecases

import (
	"bytes"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	domainerrors "cardswap.backend/internal/domain/errors"
)

var hundred = decimal.NewFromInt(100)

// notFoundOr maps repository ErrNotFound to a NotFound app error and anything else to Internal.
func notFoundOr(err error, message string) error {
	if errors.Is(err, domainerrors.ErrNotFound) {
		return domainerrors.NotFound(message)
	}
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return domainerrors.InternalError(err)
}

// internalOr passes app errors through and wraps everything else.
func internalOr(err error) error {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return domainerrors.InternalError(err)
}

func calculateFee(amount, percentage decimal.Decimal) decimal.Decimal {
	return amount.Mul(percentage).Div(hundred).Round(2)
}

// notesOf keeps free text only when it is not blank.
func notesOf(s string) null.String {
	s = strings.TrimSpace(s)
	return null.NewString(s, s != "")
}

// lockOrder returns ids ascending with duplicates removed. Rows of one table
// are always locked in this order; across tables a transaction locks the deal
// row first, then users, then gift cards.
func lockOrder(ids ...uuid.UUID) []uuid.UUID {
	out := slices.Clone(ids)
	slices.SortFunc(out, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	return slices.Compact(out)
}
