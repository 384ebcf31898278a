// Package ofx converts OFX/QFX bank and credit-card statements into
// ledger entries. Parsed entries carry a content hash so re-importing the
// same statement is idempotent.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
)

// Options controls how statement lines are mapped onto ledger entries.
// Every imported entry lands in one scope and category; credit-card
// statement lines are tagged to CardID when set.
type Options struct {
	Scope      model.Scope
	CategoryID string
	CardID     string
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file and returns ledger entries ready for
// the store.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader, opts Options) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList == nil {
				continue
			}
			for _, ofxTx := range stmt.BankTranList.Transactions {
				transactions = append(transactions, p.convertTransaction(ofxTx, opts, false))
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			// Card statement lines become credit_card entries, which the
			// store rejects without a card id. Fail here, before any line
			// from this file is written.
			if opts.CardID == "" {
				return nil, common.NewValidationError("card", "credit-card statement requires a card id")
			}
			if stmt.BankTranList == nil {
				continue
			}
			for _, ofxTx := range stmt.BankTranList.Transactions {
				transactions = append(transactions, p.convertTransaction(ofxTx, opts, true))
			}
		}
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

// convertTransaction maps one OFX line onto a ledger entry. OFX amounts
// are signed: negative is money out, positive money in. The ledger keeps
// amounts positive and carries direction on the type.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, opts Options, creditCard bool) model.Transaction {
	amountFloat, _ := ofxTx.TrnAmt.Float64()
	txType := model.TypeIncome
	if amountFloat < 0 {
		amountFloat = -amountFloat
		txType = model.TypeExpense
	}

	payment := model.PaymentDebit
	cardID := ""
	if creditCard {
		payment = model.PaymentCreditCard
		cardID = opts.CardID
	}

	txn := model.Transaction{
		Date:        ofxTx.DtPosted.Time.UTC(),
		Description: p.cleanDescription(ofxTx),
		Amount:      decimal.NewFromFloat(amountFloat).Round(2),
		Type:        txType,
		CategoryID:  opts.CategoryID,
		Scope:       opts.Scope,
		Payment:     payment,
		CardID:      cardID,
	}
	txn.Hash = txn.GenerateHash()
	return txn
}

// cleanDescription extracts a usable description from OFX data.
func (p *Parser) cleanDescription(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner merchant name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)

	// Use MEMO field if NAME is generic
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Strip leading "MM/DD " date fragments some banks prepend
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
