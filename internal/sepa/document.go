// Package sepa models pain.001.003.03 (credit transfer) and
// pain.008.003.02 (direct debit) initiation messages and builds them
// through a small state machine.
package sepa

import (
	"encoding/xml"
	"fmt"
)

// MessageType is one of the two supported pain messages.
type MessageType int

const (
	CreditTransfer MessageType = iota
	DirectDebit
)

const (
	painCreditTransfer = "pain.001.003.03"
	painDirectDebit    = "pain.008.003.02"
	namespacePrefix    = "urn:iso:std:iso:20022:tech:xsd:"
	xsiNamespace       = "http://www.w3.org/2001/XMLSchema-instance"
	xsdNamespace       = "http://www.w3.org/2001/XMLSchema"
)

// Pain returns the message identifier, e.g. "pain.001.003.03".
func (t MessageType) Pain() string {
	if t == DirectDebit {
		return painDirectDebit
	}
	return painCreditTransfer
}

// Namespace returns the default namespace of the document.
func (t MessageType) Namespace() string {
	return namespacePrefix + t.Pain()
}

// PaymentMethod is TRF or DD.
func (t MessageType) PaymentMethod() string {
	if t == DirectDebit {
		return "DD"
	}
	return "TRF"
}

func (t MessageType) String() string {
	if t == DirectDebit {
		return "direct-debit"
	}
	return "credit-transfer"
}

// SafeText is character content already sanitized for SEPA. It is
// written verbatim so the escapes produced by the sanitizer are the
// only escaping layer.
type SafeText struct {
	Value string `xml:",innerxml"`
}

// Document is the root element of both message types.
type Document struct {
	XMLName        xml.Name `xml:"Document"`
	Xmlns          string   `xml:"xmlns,attr,omitempty"`
	XmlnsXsi       string   `xml:"xmlns:xsi,attr,omitempty"`
	XmlnsXsd       string   `xml:"xmlns:xsd,attr,omitempty"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr,omitempty"`

	CreditTransfer *CreditTransferInitiation `xml:"CstmrCdtTrfInitn,omitempty"`
	DirectDebit    *DirectDebitInitiation    `xml:"CstmrDrctDbtInitn,omitempty"`
}

func newDocument(t MessageType) *Document {
	return &Document{
		Xmlns:          t.Namespace(),
		XmlnsXsi:       xsiNamespace,
		XmlnsXsd:       xsdNamespace,
		SchemaLocation: fmt.Sprintf("%s %s.xsd", t.Namespace(), t.Pain()),
	}
}

// Type reports which initiation the document carries.
func (d *Document) Type() MessageType {
	if d.DirectDebit != nil {
		return DirectDebit
	}
	return CreditTransfer
}

// GroupHeader returns the header of whichever initiation is present.
func (d *Document) GroupHeader() *GroupHeader {
	switch {
	case d.DirectDebit != nil:
		return &d.DirectDebit.GroupHeader
	case d.CreditTransfer != nil:
		return &d.CreditTransfer.GroupHeader
	}
	return nil
}

// GroupHeader is GrpHdr.
type GroupHeader struct {
	MessageID            string    `xml:"MsgId"`
	CreationDateTime     string    `xml:"CreDtTm"`
	NumberOfTransactions int       `xml:"NbOfTxs"`
	ControlSum           string    `xml:"CtrlSum"`
	InitiatingParty      PartyName `xml:"InitgPty"`
}

// PartyName is an element holding only Nm.
type PartyName struct {
	Name SafeText `xml:"Nm"`
}

// Account is a CashAccount identified by IBAN.
type Account struct {
	IBAN string `xml:"Id>IBAN"`
}

// Agent is a financial institution identified by BIC, or by
// Othr/Id NOTPROVIDED when no BIC is known.
type Agent struct {
	BIC   string `xml:"FinInstnId>BIC,omitempty"`
	Other string `xml:"FinInstnId>Othr>Id,omitempty"`
}

// NotProvided is the Othr/Id value of an agent without BIC.
const NotProvided = "NOTPROVIDED"

func newAgent(bic string) Agent {
	if bic == "" {
		return Agent{Other: NotProvided}
	}
	return Agent{BIC: bic}
}

// PaymentTypeInfo is PmtTpInf. Local instrument and sequence type are
// only used by direct debits.
type PaymentTypeInfo struct {
	ServiceLevel    string `xml:"SvcLvl>Cd"`
	LocalInstrument string `xml:"LclInstrm>Cd,omitempty"`
	SequenceType    string `xml:"SeqTp,omitempty"`
}

// Amount is an amount with its currency attribute.
type Amount struct {
	Currency string `xml:"Ccy,attr"`
	Value    string `xml:",chardata"`
}

// Remittance is RmtInf with unstructured text.
type Remittance struct {
	Unstructured SafeText `xml:"Ustrd"`
}

// CreditTransferInitiation is CstmrCdtTrfInitn.
type CreditTransferInitiation struct {
	GroupHeader GroupHeader               `xml:"GrpHdr"`
	PaymentInfo CreditTransferPaymentInfo `xml:"PmtInf"`
}

// CreditTransferPaymentInfo is the PmtInf block of pain.001.
type CreditTransferPaymentInfo struct {
	PaymentInfoID        string                `xml:"PmtInfId"`
	PaymentMethod        string                `xml:"PmtMtd"`
	BatchBooking         bool                  `xml:"BtchBookg"`
	NumberOfTransactions int                   `xml:"NbOfTxs"`
	ControlSum           string                `xml:"CtrlSum"`
	PaymentTypeInfo      PaymentTypeInfo       `xml:"PmtTpInf"`
	RequestedDate        string                `xml:"ReqdExctnDt"`
	Debtor               PartyName             `xml:"Dbtr"`
	DebtorAccount        Account               `xml:"DbtrAcct"`
	DebtorAgent          Agent                 `xml:"DbtrAgt"`
	ChargeBearer         string                `xml:"ChrgBr"`
	Transactions         []CreditTransferTxInf `xml:"CdtTrfTxInf"`
}

// CreditTransferTxInf is one CdtTrfTxInf.
type CreditTransferTxInf struct {
	EndToEndID      SafeText   `xml:"PmtId>EndToEndId"`
	Amount          Amount     `xml:"Amt>InstdAmt"`
	CreditorAgent   Agent      `xml:"CdtrAgt"`
	Creditor        PartyName  `xml:"Cdtr"`
	CreditorAccount Account    `xml:"CdtrAcct"`
	Remittance      Remittance `xml:"RmtInf"`
}

// DirectDebitInitiation is CstmrDrctDbtInitn.
type DirectDebitInitiation struct {
	GroupHeader GroupHeader            `xml:"GrpHdr"`
	PaymentInfo DirectDebitPaymentInfo `xml:"PmtInf"`
}

// DirectDebitPaymentInfo is the PmtInf block of pain.008.
type DirectDebitPaymentInfo struct {
	PaymentInfoID        string             `xml:"PmtInfId"`
	PaymentMethod        string             `xml:"PmtMtd"`
	BatchBooking         bool               `xml:"BtchBookg"`
	NumberOfTransactions int                `xml:"NbOfTxs"`
	ControlSum           string             `xml:"CtrlSum"`
	PaymentTypeInfo      PaymentTypeInfo    `xml:"PmtTpInf"`
	RequestedDate        string             `xml:"ReqdColltnDt"`
	Creditor             PartyName          `xml:"Cdtr"`
	CreditorAccount      Account            `xml:"CdtrAcct"`
	CreditorAgent        Agent              `xml:"CdtrAgt"`
	ChargeBearer         string             `xml:"ChrgBr"`
	Transactions         []DirectDebitTxInf `xml:"DrctDbtTxInf"`
}

// DirectDebitTxInf is one DrctDbtTxInf.
type DirectDebitTxInf struct {
	EndToEndID    SafeText      `xml:"PmtId>EndToEndId"`
	Amount        Amount        `xml:"InstdAmt"`
	DirectDebit   DirectDebitTx `xml:"DrctDbtTx"`
	DebtorAgent   Agent         `xml:"DbtrAgt"`
	Debtor        PartyName     `xml:"Dbtr"`
	DebtorAccount Account       `xml:"DbtrAcct"`
	Remittance    Remittance    `xml:"RmtInf"`
}

// DirectDebitTx carries mandate and creditor scheme identification.
type DirectDebitTx struct {
	Mandate          MandateInfo      `xml:"MndtRltdInf"`
	CreditorSchemeID CreditorSchemeID `xml:"CdtrSchmeId"`
}

// MandateInfo is MndtRltdInf.
type MandateInfo struct {
	MandateID       SafeText `xml:"MndtId"`
	DateOfSignature string   `xml:"DtOfSgntr"`
	Amendment       bool     `xml:"AmdmntInd"`
}

// CreditorSchemeID is CdtrSchmeId/Id/PrvtId/Othr.
type CreditorSchemeID struct {
	ID         SafeText `xml:"Id>PrvtId>Othr>Id"`
	SchemeName string   `xml:"Id>PrvtId>Othr>SchmeNm>Prtry"`
}
