package sepa

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/sepa-export/internal/models"
)

func sampleDirectDebit(t *testing.T) *Document {
	t.Helper()
	b := NewBuilder(DirectDebit, testNow)
	require.NoError(t, b.Header(Header{BatchCreatedAt: testCreated, InitiatingParty: "Club <Nord>"}))
	require.NoError(t, b.PaymentInfo(PaymentInfo{RequestedDate: testPayDate, OriginatorName: "Club <Nord>", IBAN: originatorIBAN, BIC: "COBADEFF", Scheme: models.SchemeB2B, Sequence: models.SequenceRecurring}))
	for _, tx := range []Transaction{
		{EndToEndID: "R-1", Amount: eur("12.30"), Counterparty: "Anna \"Nana\" Groß", IBAN: payeeIBAN, Remittance: "Miete März", Mandate: &Mandate{ID: "M1", SignedOn: testCreated, CreditorIdentifier: "DE98ZZZ09999999999"}},
		{EndToEndID: "R-2", Amount: eur("7.70"), Counterparty: "Ben", IBAN: otherIBAN, BIC: "ABNANL2A", Remittance: "Miete", Mandate: &Mandate{ID: "M2", SignedOn: testCreated, CreditorIdentifier: "DE98ZZZ09999999999"}},
	} {
		require.NoError(t, b.Transaction(tx))
	}
	doc, err := b.Done()
	require.NoError(t, err)
	return doc
}

func TestMarshal_DirectDebitLayout(t *testing.T) {
	out, err := Marshal(sampleDirectDebit(t))
	require.NoError(t, err)
	xml := string(out)

	assert.True(t, strings.HasPrefix(xml, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, xml, `<Document xmlns="urn:iso:std:iso:20022:tech:xsd:pain.008.003.02"`)
	assert.Contains(t, xml, `xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"`)
	assert.Contains(t, xml, `xsi:schemaLocation="urn:iso:std:iso:20022:tech:xsd:pain.008.003.02 pain.008.003.02.xsd"`)
	assert.Contains(t, xml, "\n  <CstmrDrctDbtInitn>")
	assert.Contains(t, xml, "<Nm>Club &lt;Nord&gt;</Nm>")
	assert.Contains(t, xml, "<Nm>Anna &quot;Nana&quot; Gross</Nm>")
	assert.Contains(t, xml, "<Ustrd>Miete Maerz</Ustrd>")
	assert.Contains(t, xml, `<InstdAmt Ccy="EUR">12.30</InstdAmt>`)
	assert.Contains(t, xml, "<CtrlSum>20.00</CtrlSum>")
	assert.Contains(t, xml, "<Othr>\n")
	assert.Contains(t, xml, "<Id>NOTPROVIDED</Id>")
	assert.Contains(t, xml, "<Prtry>SEPA</Prtry>")
	assert.NotContains(t, xml, "&amp;")

	order := []string{"<GrpHdr>", "<MsgId>", "<CreDtTm>", "<NbOfTxs>", "<CtrlSum>", "<InitgPty>", "<PmtInf>", "<PmtInfId>", "<PmtMtd>DD</PmtMtd>", "<BtchBookg>true</BtchBookg>", "<PmtTpInf>", "<SvcLvl>", "<LclInstrm>", "<SeqTp>RCUR</SeqTp>", "<ReqdColltnDt>2024-03-04</ReqdColltnDt>", "<Cdtr>", "<CdtrAcct>", "<CdtrAgt>", "<ChrgBr>SLEV</ChrgBr>", "<DrctDbtTxInf>", "<PmtId>", "<InstdAmt", "<DrctDbtTx>", "<MndtRltdInf>", "<MndtId>M1</MndtId>", "<DtOfSgntr>2024-02-28</DtOfSgntr>", "<AmdmntInd>false</AmdmntInd>", "<CdtrSchmeId>", "<DbtrAgt>", "<Dbtr>", "<DbtrAcct>", "<RmtInf>"}
	pos := 0
	for _, tag := range order {
		idx := strings.Index(xml[pos:], tag)
		require.GreaterOrEqual(t, idx, 0, "missing or out of order: %s", tag)
		pos += idx
	}
}

func TestMarshal_CreditTransferRoot(t *testing.T) {
	doc := buildCreditTransfer(t, Transaction{EndToEndID: "E", Amount: eur("5"), Counterparty: "C", IBAN: payeeIBAN})
	out, err := Marshal(doc)
	require.NoError(t, err)
	xml := string(out)

	assert.Contains(t, xml, `<Document xmlns="urn:iso:std:iso:20022:tech:xsd:pain.001.003.03"`)
	assert.Contains(t, xml, "<CstmrCdtTrfInitn>")
	assert.Contains(t, xml, "<ReqdExctnDt>2024-03-04</ReqdExctnDt>")
	assert.Contains(t, xml, "<Amt>")
	assert.NotContains(t, xml, "<SeqTp>")
	assert.NotContains(t, xml, "<LclInstrm>")
}

func TestRoundTrip(t *testing.T) {
	for _, doc := range []*Document{
		sampleDirectDebit(t),
		buildCreditTransfer(t,
			Transaction{EndToEndID: "A/B", Amount: eur("1.99"), Counterparty: "Zoë's Café", IBAN: payeeIBAN, BIC: "WESTGB2L", Remittance: "15.02.2024 A 1,99"},
			Transaction{EndToEndID: "C", Amount: eur("2"), Counterparty: "Ü", IBAN: otherIBAN}),
	} {
		out, err := Marshal(doc)
		require.NoError(t, err)

		back, err := Unmarshal(out)
		require.NoError(t, err)
		assert.Equal(t, doc.Type(), back.Type())
		assert.Equal(t, doc.CreditTransfer, back.CreditTransfer)
		assert.Equal(t, doc.DirectDebit, back.DirectDebit)
		assert.Equal(t, doc.Xmlns, back.Xmlns)
	}
}

func TestRoundTrip_ControlCharacters(t *testing.T) {
	doc := buildCreditTransfer(t, Transaction{
		EndToEndID:   "E\x02",
		Amount:       eur("3"),
		Counterparty: "Acme\x0cGmbH",
		IBAN:         payeeIBAN,
		Remittance:   "bad\x01text\xff",
	})

	out, err := Marshal(doc)
	require.NoError(t, err)
	back, err := Unmarshal(out)
	require.NoError(t, err)

	tx := back.CreditTransfer.PaymentInfo.Transactions[0]
	assert.Equal(t, "E", tx.EndToEndID.Value)
	assert.Equal(t, "AcmeGmbH", tx.Creditor.Name.Value)
	assert.Equal(t, "badtext", tx.Remittance.Unstructured.Value)
}

func TestUnmarshal_Rejects(t *testing.T) {
	_, err := Unmarshal([]byte("<Document></Document>"))
	assert.ErrorContains(t, err, "neither")
	_, err = Unmarshal([]byte("not xml"))
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	out, err := Marshal(sampleDirectDebit(t))
	require.NoError(t, err)

	summary, err := Verify(out)
	require.NoError(t, err)
	assert.Equal(t, DirectDebit, summary.Type)
	assert.Equal(t, "2024-02-28 17:00:00", summary.MessageID)
	assert.Equal(t, "Club <Nord>", summary.InitiatingParty)
	assert.Equal(t, 2, summary.Transactions)
	assert.Equal(t, "20.00", summary.ControlSum.StringFixed(2))
	require.Len(t, summary.Payments, 1)
	assert.Equal(t, "B2B", summary.Payments[0].LocalInstrument)
	assert.Equal(t, "RCUR", summary.Payments[0].SequenceType)
	assert.Equal(t, "2024-03-04", summary.Payments[0].RequestedDate)
}

func TestVerify_DetectsTampering(t *testing.T) {
	out, err := Marshal(buildCreditTransfer(t,
		Transaction{EndToEndID: "E1", Amount: eur("10"), Counterparty: "C", IBAN: payeeIBAN},
		Transaction{EndToEndID: "E2", Amount: eur("5"), Counterparty: "C", IBAN: payeeIBAN}))
	require.NoError(t, err)
	xml := string(out)

	summary, err := Verify(out)
	require.NoError(t, err)
	assert.Equal(t, CreditTransfer, summary.Type)

	tests := []struct {
		name string
		doc  string
	}{
		{name: "amount changed", doc: strings.Replace(xml, ">5.00<", ">6.00<", 1)},
		{name: "header count", doc: strings.Replace(xml, "<NbOfTxs>2</NbOfTxs>", "<NbOfTxs>3</NbOfTxs>", 1)},
		{name: "not a pain document", doc: "<Document><Other/></Document>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Verify([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDocumentMismatch))
		})
	}
}

func TestMessageType(t *testing.T) {
	assert.Equal(t, "pain.001.003.03", CreditTransfer.Pain())
	assert.Equal(t, "pain.008.003.02", DirectDebit.Pain())
	assert.Equal(t, "TRF", CreditTransfer.PaymentMethod())
	assert.Equal(t, "DD", DirectDebit.PaymentMethod())
	assert.Equal(t, "direct-debit", DirectDebit.String())
}
