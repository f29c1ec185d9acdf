package format

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Amounts are grouped by thousands with the English locale regardless of the
// bank; Indian lakh grouping is not used in any supported layout.
var amountLocale = language.English

// Amount renders a debit or credit cell. Non-positive values render as the
// empty string, meaning "not applicable" rather than zero.
func Amount(value decimal.Decimal) string {
	if !value.IsPositive() {
		return ""
	}
	return grouped(value)
}

// Balance renders a signed amount. It is always non-empty.
func Balance(value decimal.Decimal) string {
	return grouped(value)
}

func grouped(value decimal.Decimal) string {
	rounded := value.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	// values that round to zero are not negative, so -0.001 prints 0.00
	whole, frac, _ := strings.Cut(rounded.StringFixed(2), ".")
	return sign + groupThousands(whole) + "." + frac
}

// groupThousands inserts separators into an unsigned digit string. Values past
// int64 are grouped by hand so no digit is lost.
func groupThousands(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return message.NewPrinter(amountLocale).Sprint(number.Decimal(n))
	}
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	var b strings.Builder
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
