package models

// Currency is a row of the currencies table.
type Currency struct {
	CurrencyCode string `db:"currency_code"`
	Symbol       string `db:"symbol"`
	Name         string `db:"name"`
	IsActive     bool   `db:"is_active"`
	AuditFields
}
