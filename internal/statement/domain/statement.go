package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// StatementMeta describes how and when a statement was produced.
type StatementMeta struct {
	Template             BankTemplate `json:"template"`
	GeneratedAt          string       `json:"generatedAt"`
	StatementPeriodStart string       `json:"statementPeriodStart,omitempty"`
	StatementPeriodEnd   string       `json:"statementPeriodEnd,omitempty"`
	UserType             string       `json:"userType,omitempty"`
	ConfigHash           string       `json:"configHash,omitempty"`
	Seed                 int64        `json:"seed,omitempty"`
}

// HasPeriod reports whether both period bounds are present.
func (m StatementMeta) HasPeriod() bool {
	return strings.TrimSpace(m.StatementPeriodStart) != "" && strings.TrimSpace(m.StatementPeriodEnd) != ""
}

// AccountHolderDetails holds the account holder and branch fields.
// Only Name and AccountNumber are required; empty strings mean absent.
type AccountHolderDetails struct {
	Name            string          `json:"name"`
	AccountNumber   string          `json:"accountNumber"`
	IFSC            string          `json:"ifsc,omitempty"`
	BankName        string          `json:"bankName,omitempty"`
	StartingBalance decimal.Decimal `json:"startingBalance"`
	Address         string          `json:"address,omitempty"`
	City            string          `json:"city,omitempty"`
	State           string          `json:"state,omitempty"`
	Pincode         string          `json:"pincode,omitempty"`
	Branch          string          `json:"branch,omitempty"`
	BankBranch      string          `json:"bankBranch,omitempty"`
	BranchAddress   string          `json:"branchAddress,omitempty"`
	PhoneNumber     string          `json:"phoneNumber,omitempty"`
	Email           string          `json:"email,omitempty"`
}

// BranchName returns the most specific branch label available.
func (d AccountHolderDetails) BranchName() string {
	return FirstNonEmpty(d.BankBranch, d.Branch, d.BankName)
}

// Transaction is a single statement line. Debit and Credit are non-negative,
// zero meaning the side does not apply. Balance is signed.
type Transaction struct {
	ID          string          `json:"id,omitempty"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// Statement is the full render input. Transactions keep caller order.
type Statement struct {
	ID           string               `json:"id,omitempty"`
	Meta         StatementMeta        `json:"meta"`
	Details      AccountHolderDetails `json:"details"`
	Transactions []Transaction        `json:"transactions"`
}

// Validate checks the fields a statement cannot be rendered without.
func (s *Statement) Validate() error {
	if s == nil {
		return ErrNilStatement
	}
	if strings.TrimSpace(s.Details.Name) == "" {
		return ErrMissingHolderName
	}
	if strings.TrimSpace(s.Details.AccountNumber) == "" {
		return ErrMissingAccountNumber
	}
	return nil
}

// ClosingBalance returns the last transaction balance, or the starting balance
// when there are no transactions.
func (s *Statement) ClosingBalance() decimal.Decimal {
	if len(s.Transactions) == 0 {
		return s.Details.StartingBalance
	}
	return s.Transactions[len(s.Transactions)-1].Balance
}

// Totals sums debits and credits and counts the rows on each side.
func (s *Statement) Totals() (debits, credits decimal.Decimal, debitCount, creditCount int) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, tx := range s.Transactions {
		if tx.Debit.IsPositive() {
			debits = debits.Add(tx.Debit)
			debitCount++
		}
		if tx.Credit.IsPositive() {
			credits = credits.Add(tx.Credit)
			creditCount++
		}
	}
	return debits, credits, debitCount, creditCount
}

// FirstNonEmpty returns the first value that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
