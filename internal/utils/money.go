package utils

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const DateLayout = "2006-01-02"

// Money renders an amount with two decimals, e.g. "1500.00".
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Rate renders a percentage with two decimals.
func Rate(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Date renders YYYY-MM-DD.
func Date(t time.Time) string {
	return t.Format(DateLayout)
}

// DBDate renders a date column as YYYY-MM-DD.
func DBDate(d datatypes.Date) string {
	return time.Time(d).Format(DateLayout)
}

// ParseDate parses YYYY-MM-DD in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}
