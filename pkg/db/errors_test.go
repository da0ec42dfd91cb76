package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error is not a violation")
	}
	pg := errors.New(`ERROR: duplicate key value violates unique constraint "ux_transactions_trx_number" (SQLSTATE 23505)`)
	if !IsUniqueViolation(pg, "") {
		t.Fatal("expected postgres duplicate key to match")
	}
	if !IsUniqueViolation(pg, "ux_transactions_trx_number") {
		t.Fatal("expected constraint name to match")
	}
	if IsUniqueViolation(pg, "ux_other") {
		t.Fatal("unexpected constraint match")
	}
	lite := errors.New("UNIQUE constraint failed: stock_opnames.opname_number")
	if !IsUniqueViolation(lite, "") {
		t.Fatal("expected sqlite unique violation to match")
	}
}
