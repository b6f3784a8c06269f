package sepa

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/sepa-export/internal/dateutils"
	"fjacquet/sepa-export/internal/exporterror"
	"fjacquet/sepa-export/internal/models"
	"fjacquet/sepa-export/internal/textutils"
	"fjacquet/sepa-export/internal/validation"
)

const (
	serviceLevelSEPA   = "SEPA"
	chargeBearerSLEV   = "SLEV"
	creditorSchemeSEPA = "SEPA"
)

// ErrOutOfOrder is returned when builder steps are called out of
// sequence (Header, PaymentInfo, Transaction..., Done).
var ErrOutOfOrder = errors.New("message builder step out of order")

type state int

const (
	stateHeader state = iota
	statePaymentInfo
	stateTransactions
	stateDone
)

var stateNames = map[state]string{
	stateHeader:       "Header",
	statePaymentInfo:  "PaymentInfo",
	stateTransactions: "Transaction",
	stateDone:         "Done",
}

// Header carries the group header inputs.
type Header struct {
	// BatchCreatedAt becomes MsgId.
	BatchCreatedAt  time.Time
	InitiatingParty string
}

// PaymentInfo carries the payment-information inputs. RequestedDate is
// expected to be a settlement date already shifted onto a banking day.
type PaymentInfo struct {
	RequestedDate  time.Time
	OriginatorName string
	IBAN           string
	BIC            string
	Scheme         models.Scheme
	Sequence       models.SequenceType
}

// Mandate carries the direct-debit mandate of one transaction.
type Mandate struct {
	ID                 string
	SignedOn           time.Time
	CreditorIdentifier string
}

// Transaction carries one transaction block. Mandate is required for
// direct debits and ignored for credit transfers.
type Transaction struct {
	EndToEndID   string
	Amount       models.Money
	Counterparty string
	IBAN         string
	BIC          string
	Remittance   string
	Mandate      *Mandate
}

// Builder assembles one message: Header, PaymentInfo, any number of
// Transaction calls, then Done. The first error is sticky.
type Builder struct {
	kind     MessageType
	now      time.Time
	state    state
	err      error
	doc      *Document
	header   *GroupHeader
	currency string
	total    decimal.Decimal
	count    int
}

// NewBuilder starts a message of kind stamped with now (CreDtTm and
// PmtInfId).
func NewBuilder(kind MessageType, now time.Time) *Builder {
	doc := newDocument(kind)
	b := &Builder{kind: kind, now: now, doc: doc, total: decimal.Zero}
	if kind == DirectDebit {
		doc.DirectDebit = &DirectDebitInitiation{}
		b.header = &doc.DirectDebit.GroupHeader
	} else {
		doc.CreditTransfer = &CreditTransferInitiation{}
		b.header = &doc.CreditTransfer.GroupHeader
	}
	return b
}

func (b *Builder) step(expected state, next state) error {
	if b.err != nil {
		return b.err
	}
	if b.state != expected {
		b.err = fmt.Errorf("%w: %s called in state %s", ErrOutOfOrder, stateNames[next], stateNames[b.state])
		return b.err
	}
	return nil
}

func (b *Builder) fail(err error) error {
	b.err = err
	return err
}

// Header fills GrpHdr. Counts and sums are filled by Done.
func (b *Builder) Header(h Header) error {
	if err := b.step(stateHeader, stateHeader); err != nil {
		return err
	}
	b.header.MessageID = textutils.Truncate(h.BatchCreatedAt.Format(dateutils.DateLayoutMessageID), textutils.MaxIDLength)
	b.header.CreationDateTime = dateutils.CreationTimestamp(b.now)
	b.header.InitiatingParty = PartyName{Name: safe(h.InitiatingParty, textutils.MaxNameLength)}
	b.state = statePaymentInfo
	return nil
}

// PaymentInfo fills PmtInf and validates the originator account.
func (b *Builder) PaymentInfo(p PaymentInfo) error {
	if err := b.step(statePaymentInfo, statePaymentInfo); err != nil {
		return err
	}
	iban, bic, err := validation.ValidateAccount("originator "+p.OriginatorName, p.IBAN, p.BIC)
	if err != nil {
		return b.fail(err)
	}

	name := safe(p.OriginatorName, textutils.MaxNameLength)
	date := dateutils.ToISODate(p.RequestedDate)
	stamp := b.now.Format(dateutils.DateLayoutMessageID)

	if b.kind == DirectDebit {
		if p.Scheme == "" || p.Sequence == "" {
			return b.fail(&exporterror.ExportError{Kind: exporterror.ErrMissingScheme, Subject: "payment information", Reason: "scheme and sequence are required for direct debits"})
		}
		b.doc.DirectDebit.PaymentInfo = DirectDebitPaymentInfo{
			PaymentInfoID: textutils.Truncate(fmt.Sprintf("%s /%s-%s", stamp, p.Scheme, p.Sequence), textutils.MaxIDLength),
			PaymentMethod: b.kind.PaymentMethod(),
			BatchBooking:  true,
			PaymentTypeInfo: PaymentTypeInfo{
				ServiceLevel:    serviceLevelSEPA,
				LocalInstrument: string(p.Scheme),
				SequenceType:    string(p.Sequence),
			},
			RequestedDate:   date,
			Creditor:        PartyName{Name: name},
			CreditorAccount: Account{IBAN: iban},
			CreditorAgent:   newAgent(bic),
			ChargeBearer:    chargeBearerSLEV,
		}
	} else {
		b.doc.CreditTransfer.PaymentInfo = CreditTransferPaymentInfo{
			PaymentInfoID:   textutils.Truncate(stamp+"/TRF", textutils.MaxIDLength),
			PaymentMethod:   b.kind.PaymentMethod(),
			BatchBooking:    true,
			PaymentTypeInfo: PaymentTypeInfo{ServiceLevel: serviceLevelSEPA},
			RequestedDate:   date,
			Debtor:          PartyName{Name: name},
			DebtorAccount:   Account{IBAN: iban},
			DebtorAgent:     newAgent(bic),
			ChargeBearer:    chargeBearerSLEV,
		}
	}
	b.state = stateTransactions
	return nil
}

// Transaction appends one transaction block in call order.
func (b *Builder) Transaction(tx Transaction) error {
	if err := b.step(stateTransactions, stateTransactions); err != nil {
		return err
	}
	if !tx.Amount.IsPositive() {
		return b.fail(&exporterror.ExportError{Kind: exporterror.ErrInconsistentBatch, Subject: tx.EndToEndID, Value: tx.Amount.String(), Reason: "amount must be positive"})
	}
	// CtrlSum must equal the sum of the InstdAmt values as written.
	if !tx.Amount.HasWholeCents() {
		return b.fail(&exporterror.ExportError{Kind: exporterror.ErrInconsistentBatch, Subject: tx.EndToEndID, Value: tx.Amount.Amount.String(), Reason: "amount has more than two fraction digits"})
	}
	if b.currency == "" {
		b.currency = tx.Amount.Currency
	} else if tx.Amount.Currency != b.currency {
		return b.fail(&exporterror.ExportError{Kind: exporterror.ErrInconsistentBatch, Subject: tx.EndToEndID, Value: tx.Amount.Currency, Reason: "currency differs from " + b.currency})
	}

	iban, bic, err := validation.ValidateAccount(tx.Counterparty, tx.IBAN, tx.BIC)
	if err != nil {
		return b.fail(err)
	}

	amount := Amount{Currency: tx.Amount.Currency, Value: tx.Amount.SEPAAmount()}
	e2e := safe(tx.EndToEndID, textutils.MaxIDLength)
	name := PartyName{Name: safe(tx.Counterparty, textutils.MaxNameLength)}
	rmt := Remittance{Unstructured: safe(tx.Remittance, textutils.MaxRemittanceLength)}

	if b.kind == DirectDebit {
		if tx.Mandate == nil || tx.Mandate.ID == "" {
			return b.fail(&exporterror.ExportError{Kind: exporterror.ErrMissingScheme, Subject: tx.Counterparty, Reason: "direct debit without mandate"})
		}
		pi := &b.doc.DirectDebit.PaymentInfo
		pi.Transactions = append(pi.Transactions, DirectDebitTxInf{
			EndToEndID: e2e,
			Amount:     amount,
			DirectDebit: DirectDebitTx{
				Mandate: MandateInfo{
					MandateID:       safe(tx.Mandate.ID, textutils.MaxIDLength),
					DateOfSignature: dateutils.ToISODate(tx.Mandate.SignedOn),
					Amendment:       false,
				},
				CreditorSchemeID: CreditorSchemeID{
					ID:         safe(tx.Mandate.CreditorIdentifier, textutils.MaxIDLength),
					SchemeName: creditorSchemeSEPA,
				},
			},
			DebtorAgent:   newAgent(bic),
			Debtor:        name,
			DebtorAccount: Account{IBAN: iban},
			Remittance:    rmt,
		})
	} else {
		pi := &b.doc.CreditTransfer.PaymentInfo
		pi.Transactions = append(pi.Transactions, CreditTransferTxInf{
			EndToEndID:      e2e,
			Amount:          amount,
			CreditorAgent:   newAgent(bic),
			Creditor:        name,
			CreditorAccount: Account{IBAN: iban},
			Remittance:      rmt,
		})
	}

	b.total = b.total.Add(tx.Amount.Amount)
	b.count++
	return nil
}

// Done fills NbOfTxs and CtrlSum in header and payment information and
// returns the finished document.
func (b *Builder) Done() (*Document, error) {
	if err := b.step(stateTransactions, stateDone); err != nil {
		return nil, err
	}
	if b.count == 0 {
		return nil, b.fail(&exporterror.ExportError{Kind: exporterror.ErrEmptyBatch, Subject: b.kind.String() + " message"})
	}

	sum := b.total.StringFixed(2)
	b.header.NumberOfTransactions = b.count
	b.header.ControlSum = sum
	if b.kind == DirectDebit {
		b.doc.DirectDebit.PaymentInfo.NumberOfTransactions = b.count
		b.doc.DirectDebit.PaymentInfo.ControlSum = sum
	} else {
		b.doc.CreditTransfer.PaymentInfo.NumberOfTransactions = b.count
		b.doc.CreditTransfer.PaymentInfo.ControlSum = sum
	}
	b.state = stateDone
	return b.doc, nil
}

// Count is the number of transactions added so far.
func (b *Builder) Count() int {
	return b.count
}

// ControlSum is the exact sum of the amounts added so far.
func (b *Builder) ControlSum() decimal.Decimal {
	return b.total
}

func safe(text string, max int) SafeText {
	return SafeText{Value: textutils.SepaSafeMax(text, max)}
}
