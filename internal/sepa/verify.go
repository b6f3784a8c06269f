package sepa

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/xmlpath.v2"

	"fjacquet/sepa-export/internal/xmlutils"
)

// ErrDocumentMismatch is returned when a document's declared counts or
// control sums disagree with its transactions.
var ErrDocumentMismatch = errors.New("document totals mismatch")

// PaymentSummary describes one PmtInf block as read back from XML.
type PaymentSummary struct {
	ID              string
	LocalInstrument string
	SequenceType    string
	RequestedDate   string
	Transactions    int
	ControlSum      decimal.Decimal
}

// Summary describes a document as read back from XML.
type Summary struct {
	Type            MessageType
	MessageID       string
	InitiatingParty string
	Transactions    int
	ControlSum      decimal.Decimal
	Payments        []PaymentSummary
}

// Verify re-reads data with XPath and checks that NbOfTxs and CtrlSum
// of the group header and every payment-information block match the
// transactions they contain.
func Verify(data []byte) (*Summary, error) {
	root, err := xmlutils.ParseBytes(data)
	if err != nil {
		return nil, err
	}

	s := &Summary{}
	isDD, err := xmlutils.Exists(root, xmlutils.XPathDirectDebitRoot)
	if err != nil {
		return nil, err
	}
	isCT, err := xmlutils.Exists(root, xmlutils.XPathCreditTransferRoot)
	if err != nil {
		return nil, err
	}
	switch {
	case isDD:
		s.Type = DirectDebit
	case isCT:
		s.Type = CreditTransfer
	default:
		return nil, fmt.Errorf("%w: not a pain.001 or pain.008 document", ErrDocumentMismatch)
	}

	if s.MessageID, err = xmlutils.FirstValue(root, xmlutils.XPathMessageID); err != nil {
		return nil, err
	}
	if s.InitiatingParty, err = xmlutils.FirstValue(root, xmlutils.XPathInitiatingName); err != nil {
		return nil, err
	}
	headerCount, err := intValue(root, xmlutils.XPathHeaderCount)
	if err != nil {
		return nil, err
	}
	headerSum, err := decimalValue(root, xmlutils.XPathHeaderSum)
	if err != nil {
		return nil, err
	}

	infos, err := xmlutils.Nodes(root, xmlutils.XPathPaymentInfos)
	if err != nil {
		return nil, err
	}
	s.ControlSum = decimal.Zero
	for _, node := range infos {
		p, err := verifyPaymentInfo(node, s.Type)
		if err != nil {
			return nil, err
		}
		s.Payments = append(s.Payments, p)
		s.Transactions += p.Transactions
		s.ControlSum = s.ControlSum.Add(p.ControlSum)
	}

	if headerCount != s.Transactions {
		return nil, fmt.Errorf("%w: GrpHdr/NbOfTxs is %d, document holds %d transactions", ErrDocumentMismatch, headerCount, s.Transactions)
	}
	if !headerSum.Equal(s.ControlSum) {
		return nil, fmt.Errorf("%w: GrpHdr/CtrlSum is %s, transactions add up to %s", ErrDocumentMismatch, headerSum.StringFixed(2), s.ControlSum.StringFixed(2))
	}
	return s, nil
}

func verifyPaymentInfo(node *xmlpath.Node, kind MessageType) (PaymentSummary, error) {
	var p PaymentSummary
	var err error

	if p.ID, err = xmlutils.FirstValue(node, xmlutils.XPathPaymentInfoID); err != nil {
		return p, err
	}
	amountPath, datePath := xmlutils.XPathTransferAmount, xmlutils.XPathExecutionDate
	if kind == DirectDebit {
		amountPath, datePath = xmlutils.XPathDebitAmount, xmlutils.XPathCollectionDate
		if p.LocalInstrument, err = xmlutils.FirstValue(node, xmlutils.XPathLocalInstr); err != nil {
			return p, err
		}
		if p.SequenceType, err = xmlutils.FirstValue(node, xmlutils.XPathSequenceType); err != nil {
			return p, err
		}
	}
	if p.RequestedDate, err = xmlutils.FirstValue(node, datePath); err != nil {
		return p, err
	}

	declaredCount, err := intValue(node, xmlutils.XPathPaymentCount)
	if err != nil {
		return p, err
	}
	declaredSum, err := decimalValue(node, xmlutils.XPathPaymentSum)
	if err != nil {
		return p, err
	}

	amounts, err := xmlutils.ExtractFromXML(node, amountPath)
	if err != nil {
		return p, err
	}
	p.ControlSum = decimal.Zero
	for _, a := range amounts {
		d, err := decimal.NewFromString(a)
		if err != nil {
			return p, fmt.Errorf("payment %s: invalid amount %q: %w", p.ID, a, err)
		}
		p.ControlSum = p.ControlSum.Add(d)
	}
	p.Transactions = len(amounts)

	if declaredCount != p.Transactions {
		return p, fmt.Errorf("%w: payment %s declares %d transactions, holds %d", ErrDocumentMismatch, p.ID, declaredCount, p.Transactions)
	}
	if !declaredSum.Equal(p.ControlSum) {
		return p, fmt.Errorf("%w: payment %s declares control sum %s, amounts add up to %s", ErrDocumentMismatch, p.ID, declaredSum.StringFixed(2), p.ControlSum.StringFixed(2))
	}
	return p, nil
}

func intValue(node *xmlpath.Node, path string) (int, error) {
	v, err := xmlutils.FirstValue(node, path)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a number: %q", ErrDocumentMismatch, path, v)
	}
	return n, nil
}

func decimalValue(node *xmlpath.Node, path string) (decimal.Decimal, error) {
	v, err := xmlutils.FirstValue(node, path)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s is not an amount: %q", ErrDocumentMismatch, path, v)
	}
	return d, nil
}
