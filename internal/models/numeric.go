package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Widths of the NUMERIC(digits, places) columns
const (
	HoursDigits    = 5
	ProgressDigits = 5
	KPIValueDigits = 10
	DecimalPlaces  = 2
)

// CheckNumeric reports whether v fits a NUMERIC(digits, places) column
// without overflow or rounding. The error message is user facing.
func CheckNumeric(v float64, digits, places int) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("Debe ser un número válido.")
	}
	// Shortest representation that round-trips, i.e. what the client sent
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > places {
		return fmt.Errorf("Asegúrese de que no haya más de %d decimales.", places)
	}
	if whole != "0" && len(whole) > digits-places {
		return fmt.Errorf("Asegúrese de que no haya más de %d dígitos en total.", digits)
	}
	return nil
}
