package importer

import (
	"strings"
	"testing"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ofxHeader = `OFXHEADER:100
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
<DTSERVER>20240401120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
`

const sampleSavingsOFX = ofxHeader + `<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>CAD
<BANKACCTFROM>
<BANKID>000300012
<ACCTID>55-0043219
<ACCTTYPE>SAVINGS
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301120000[0:GMT]
<DTEND>20240331120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240305120000[0:GMT]
<TRNAMT>1500.00
<FITID>SV0305
<NAME>TRANSFER FROM CHEQUING
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240312120000[0:GMT]
<TRNAMT>-60.25
<FITID>SV0312
<NAME>PURCHASE
<MEMO>CITY PARKING LOT 7
</STMTTRN>
<STMTTRN>
<TRNTYPE>INT
<DTPOSTED>20240331120000[0:GMT]
<TRNAMT>2.14
<FITID>SV0331
<NAME>INTEREST PAID
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>4210.00
<DTASOF>20240331120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleVisaOFX = ofxHeader + `<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>CAD
<CCACCTFROM>
<ACCTID>4520880012345678
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301120000[0:GMT]
<DTEND>20240331120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240318120000[0:GMT]
<TRNAMT>-34.10
<FITID>CC0318
<NAME>CINEPLEX ONLINE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-34.10
<DTASOF>20240331120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestOFXNormalizer_BankStatement(t *testing.T) {
	payloads, err := (&OFXNormalizer{}).Normalize(strings.NewReader(sampleSavingsOFX))
	require.NoError(t, err)
	require.Len(t, payloads, 3)

	transfer := payloads[0]
	assert.Equal(t, "Savings", transfer.AccountType)
	assert.Equal(t, int64(550043219), transfer.AccountNumber)
	assert.Equal(t, "03/05/2024", transfer.Date)
	assert.Equal(t, "TRANSFER FROM CHEQUING", transfer.Description)
	assert.True(t, transfer.Amount.Equal(decimal.NewFromInt(1500)))

	parking := payloads[1]
	assert.Equal(t, "CITY PARKING LOT 7", parking.Description, "memo replaces a generic name")
	assert.True(t, parking.Amount.Equal(decimal.RequireFromString("-60.25")))

	interest := payloads[2]
	assert.Equal(t, "INTEREST PAID", interest.Description)
	assert.Equal(t, "03/31/2024", interest.Date)
}

func TestOFXNormalizer_CreditCardStatement(t *testing.T) {
	payloads, err := (&OFXNormalizer{}).Normalize(strings.NewReader(sampleVisaOFX))
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	assert.Equal(t, "Credit Card", payloads[0].AccountType)
	assert.Equal(t, int64(4520880012345678), payloads[0].AccountNumber)
	assert.Equal(t, "CINEPLEX ONLINE", payloads[0].Description)
	assert.True(t, payloads[0].Amount.Equal(decimal.RequireFromString("-34.10")))
}

func TestOFXNormalizer_Invalid(t *testing.T) {
	for _, input := range []string{"", "not an ofx file"} {
		_, err := (&OFXNormalizer{}).Normalize(strings.NewReader(input))
		assert.Error(t, err)
	}
}

func TestPreprocessOFX(t *testing.T) {
	in := "\n\n<OFX>\n<SEVERITY>Info</SEVERITY>\n<BANKMSGSRSV1\n</OFX>"
	out := preprocessOFX(in)
	assert.True(t, strings.HasPrefix(out, "<OFX>"))
	assert.Contains(t, out, "<SEVERITY>INFO</SEVERITY>")
	assert.Contains(t, out, "<BANKMSGSRSV1>\n")
}

func TestAccountTypeName(t *testing.T) {
	assert.Equal(t, "Checking", accountTypeName(ofxgo.AcctTypeChecking))
	assert.Equal(t, "Savings", accountTypeName(ofxgo.AcctTypeSavings))
	assert.Equal(t, "Bank", accountTypeName(ofxgo.BankAcct{}.AcctType))
}

func TestOFXDescription(t *testing.T) {
	withPayee := ofxgo.Transaction{Name: "POS", Payee: &ofxgo.Payee{Name: "CORNER STORE"}}
	assert.Equal(t, "CORNER STORE", ofxDescription(withPayee))

	generic := ofxgo.Transaction{Name: "debit", Memo: " VENDING MACHINE "}
	assert.Equal(t, "VENDING MACHINE", ofxDescription(generic))

	specific := ofxgo.Transaction{Name: "BAKERY", Memo: "ref 123"}
	assert.Equal(t, "BAKERY", ofxDescription(specific))

	unnamed := ofxgo.Transaction{TrnType: ofxgo.TrnTypeInt}
	assert.Equal(t, "INT", ofxDescription(unnamed), "transaction type is the last resort")
}
