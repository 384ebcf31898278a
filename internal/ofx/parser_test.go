package ofx

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>1250.00
<FITID>2024012001
<NAME>PAYROLL DEPOSIT
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-89.99
<FITID>2024011002
<NAME>POS PURCHASE AMAZON.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-89.99
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile_BankStatement(t *testing.T) {
	parser := NewParser()

	opts := Options{Scope: model.ScopePersonal, CategoryID: "cat-misc"}
	transactions, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), opts)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	expense := transactions[0]
	assert.Equal(t, model.TypeExpense, expense.Type)
	assert.True(t, expense.Amount.Equal(decimal.RequireFromString("25.50")),
		"expected 25.50, got %s", expense.Amount)
	assert.Equal(t, "STARBUCKS STORE #1234", expense.Description)
	assert.Equal(t, model.PaymentDebit, expense.Payment)
	assert.Equal(t, model.ScopePersonal, expense.Scope)
	assert.Equal(t, "cat-misc", expense.CategoryID)
	assert.NotEmpty(t, expense.Hash)

	income := transactions[1]
	assert.Equal(t, model.TypeIncome, income.Type)
	assert.True(t, income.Amount.Equal(decimal.RequireFromString("1250")),
		"expected 1250, got %s", income.Amount)
}

func TestParseFile_CreditCardStatement(t *testing.T) {
	parser := NewParser()

	opts := Options{Scope: model.ScopePersonal, CategoryID: "cat-misc", CardID: "card-1"}
	transactions, err := parser.ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX), opts)
	require.NoError(t, err)
	require.Len(t, transactions, 1)

	txn := transactions[0]
	assert.Equal(t, model.PaymentCreditCard, txn.Payment)
	assert.Equal(t, "card-1", txn.CardID)
	assert.Equal(t, model.TypeExpense, txn.Type)
	// "POS PURCHASE " prefix is stripped
	assert.Equal(t, "AMAZON.COM", txn.Description)
}

func TestParseFile_CreditCardStatementRequiresCardID(t *testing.T) {
	parser := NewParser()

	// Without a card id every parsed line would fail storage validation
	// partway through a bulk import, so the parse itself must refuse.
	opts := Options{Scope: model.ScopePersonal, CategoryID: "cat-misc"}
	_, err := parser.ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX), opts)
	require.Error(t, err)

	var validationErr *common.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestParseFile_HashIsStable(t *testing.T) {
	parser := NewParser()
	opts := Options{Scope: model.ScopePersonal, CategoryID: "cat-misc"}

	first, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), opts)
	require.NoError(t, err)
	second, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), opts)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Hash, second[i].Hash, "hash changed between parses at index %d", i)
	}
}

func TestParseFile_InvalidData(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseFile(context.Background(), strings.NewReader("not an ofx file"), Options{})
	assert.Error(t, err)
}

func TestCleanDescription_GenericNameFallsBackToMemo(t *testing.T) {
	assert.True(t, isGenericDescription("DEBIT"))
	assert.True(t, isGenericDescription("card purchase"))
	assert.False(t, isGenericDescription("STARBUCKS"))
}
