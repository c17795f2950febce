package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// TransactionRecord is the immutable input of the engine.
type TransactionRecord struct {
	Description string              `json:"description"`
	Merchant    string              `json:"merchant,omitempty"`
	Amount      decimal.NullDecimal `json:"amount"`
	// Category is only set on pre-categorized records passed to insights.
	Category string `json:"category,omitempty"`
}

// TrainingExample is a record with its ground-truth label.
type TrainingExample struct {
	Record   TransactionRecord `json:"record"`
	Category CategoryLabel     `json:"category"`
}

// NewRecord builds a record; an empty amount string leaves the amount unset.
func NewRecord(description, merchant, amount string) (TransactionRecord, error) {
	amt, err := ParseAmount(amount)
	if err != nil {
		return TransactionRecord{}, err
	}
	return TransactionRecord{
		Description: description,
		Merchant:    merchant,
		Amount:      amt,
	}, nil
}

// AmountOrZero returns the amount, treating a missing amount as zero.
func (r TransactionRecord) AmountOrZero() decimal.Decimal {
	if !r.Amount.Valid {
		return decimal.Zero
	}
	return r.Amount.Decimal
}

// UnmarshalJSON accepts "merchant" or "merchant_name", and amounts given as
// numbers, plain strings or currency-formatted strings like "$1,250.00".
func (r *TransactionRecord) UnmarshalJSON(data []byte) error {
	var aux struct {
		Description  string          `json:"description"`
		Merchant     string          `json:"merchant"`
		MerchantName string          `json:"merchant_name"`
		Amount       json.RawMessage `json:"amount"`
		Category     string          `json:"category"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Description = aux.Description
	r.Merchant = aux.Merchant
	if r.Merchant == "" {
		r.Merchant = aux.MerchantName
	}
	r.Category = aux.Category
	r.Amount = decimal.NullDecimal{}

	raw := strings.TrimSpace(string(aux.Amount))
	if raw == "" || raw == "null" {
		return nil
	}
	if !strings.HasPrefix(raw, `"`) {
		dec, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid amount %s: %w", raw, err)
		}
		r.Amount = decimal.NewNullDecimal(dec)
		return nil
	}

	var s string
	if err := json.Unmarshal(aux.Amount, &s); err != nil {
		return fmt.Errorf("invalid amount %s: %w", raw, err)
	}
	amt, err := ParseAmount(s)
	if err != nil {
		return err
	}
	r.Amount = amt
	return nil
}

// ParseAmount parses an amount string such as "12.50", "$1,250.00",
// "CHF 1'000.25", "1.250,00" or "1e3". Currency symbols, whitespace-separated
// upper-case ISO codes, spaces and thousands separators are ignored; any
// other stray character is an error. A blank string yields an invalid
// (missing) amount.
func ParseAmount(amountStr string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(amountStr) == "" {
		return decimal.NullDecimal{}, nil
	}

	tokens := strings.Fields(amountStr)
	kept := tokens[:0]
	for _, tok := range tokens {
		if !isCurrencyCode(tok) {
			kept = append(kept, tok)
		}
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Sc, r) || unicode.IsSpace(r) || r == '\'' {
			return -1
		}
		return r
	}, strings.Join(kept, ""))
	cleaned = normalizeSeparators(cleaned)

	if cleaned == "" {
		return decimal.NullDecimal{}, fmt.Errorf("invalid amount string '%s': no digits", amountStr)
	}
	dec, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid amount string '%s': %w", amountStr, err)
	}
	return decimal.NewNullDecimal(dec), nil
}

func isCurrencyCode(tok string) bool {
	if len(tok) != 3 {
		return false
	}
	for _, r := range tok {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// normalizeSeparators turns the decimal separator into '.' and drops
// thousands separators. A comma is the decimal separator when it follows the
// last dot ("1.250,00") or is the only separator and is not followed by
// exactly three digits ("12,50").
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	if lastComma < 0 {
		return s
	}
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastDot >= 0 && lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case lastDot < 0 && strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3:
		return strings.Replace(s, ",", ".", 1)
	default:
		return strings.ReplaceAll(s, ",", "")
	}
}
