package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/sepa-export/internal/dateutils"
	"fjacquet/sepa-export/internal/logging"
	"fjacquet/sepa-export/internal/models"
	"fjacquet/sepa-export/internal/store"
	"fjacquet/sepa-export/internal/textutils"
)

// Repository is a store.Source backed by SQLite.
type Repository struct {
	db     *sql.DB
	path   string
	logger logging.Logger
}

// Open connects to the SQLite file at path, creating and migrating it
// as needed.
func Open(ctx context.Context, path string, logger logging.Logger) (*Repository, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	logger = logger.WithField(logging.FieldStore, "sqlite")

	db, err := connect(ctx, path, logger)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	return &Repository{db: db, path: path, logger: logger}, nil
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Batch loads a batch and its instructions in stored order. An empty id
// selects the only batch in the database.
func (r *Repository) Batch(id string) (models.BatchMetadata, []models.PaymentInstruction, error) {
	if id == "" {
		var err error
		if id, err = r.onlyBatchID(); err != nil {
			return models.BatchMetadata{}, nil, err
		}
	}

	var (
		meta             models.BatchMetadata
		createdAt, payOn string
		orgName, client  sql.NullString
		bic              sql.NullString
	)
	row := r.db.QueryRow(`select batch_id, created_at, org_id, org_name, client_name, pay_date, currency, originator_iban, originator_bic from batches where batch_id = ?`, id)
	err := row.Scan(&meta.ID, &createdAt, &meta.OrgID, &orgName, &client, &payOn, &meta.Currency, &meta.Originator.IBAN, &bic)
	if err == sql.ErrNoRows {
		return models.BatchMetadata{}, nil, fmt.Errorf("batch %s not found", id)
	}
	if err != nil {
		return models.BatchMetadata{}, nil, fmt.Errorf("loading batch %s: %w", id, err)
	}
	meta.OrgName = orgName.String
	meta.ClientName = client.String
	meta.Originator.BIC = bic.String
	if meta.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return models.BatchMetadata{}, nil, fmt.Errorf("batch %s created_at: %w", id, err)
	}
	if meta.PayDate, err = dateutils.ParseDate(payOn); err != nil {
		return models.BatchMetadata{}, nil, fmt.Errorf("batch %s pay_date: %w", id, err)
	}

	rows, err := r.db.Query(`select instruction_id, counterparty_id, amount_value, amount_currency from payment_instructions where batch_id = ? order by position`, id)
	if err != nil {
		return models.BatchMetadata{}, nil, fmt.Errorf("loading instructions of batch %s: %w", id, err)
	}
	defer rows.Close()

	var instructions []models.PaymentInstruction
	for rows.Next() {
		var (
			instructionID, counterpartyID, currency string
			amount                                  decimal.Decimal
		)
		if err := rows.Scan(&instructionID, &counterpartyID, &amount, &currency); err != nil {
			return models.BatchMetadata{}, nil, fmt.Errorf("scanning instruction: %w", err)
		}
		pi, err := models.NewInstructionBuilder().
			WithID(instructionID).
			WithAmount(amount, currency).
			WithCounterparty(counterpartyID).
			WithOrg(meta.OrgID).
			WithBatch(meta.ID).
			Build()
		if err != nil {
			return models.BatchMetadata{}, nil, fmt.Errorf("batch %s: %w", id, err)
		}
		instructions = append(instructions, pi)
	}
	return meta, instructions, rows.Err()
}

func (r *Repository) onlyBatchID() (string, error) {
	rows, err := r.db.Query(`select batch_id from batches limit 2`)
	if err != nil {
		return "", fmt.Errorf("listing batches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", errors.New("database holds no batch")
	case 1:
		return ids[0], nil
	}
	return "", errors.New("database holds several batches, select one by id")
}

// Counterparty loads a counterparty with its accounts in stored order.
func (r *Repository) Counterparty(id string) (*models.Counterparty, error) {
	cp := &models.Counterparty{ID: id}
	var ref sql.NullString
	err := r.db.QueryRow(`select name, reference_no from counterparties where counterparty_id = ?`, id).Scan(&cp.Name, &ref)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("counterparty %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading counterparty %s: %w", id, err)
	}
	cp.ReferenceNo = ref.String

	rows, err := r.db.Query(`select account_id, active, iban, bic, supports_direct_debit, supports_direct_deposit, scheme, mandate_id, mandate_signed_on, already_used
from bank_accounts where counterparty_id = ? order by position`, id)
	if err != nil {
		return nil, fmt.Errorf("loading accounts of %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		acct := &models.BankAccount{}
		var iban, bic, scheme, mandateID, signedOn sql.NullString
		if err := rows.Scan(&acct.ID, &acct.Active, &iban, &bic, &acct.SupportsDirectDebit, &acct.SupportsDirectDeposit, &scheme, &mandateID, &signedOn, &acct.AlreadyUsed); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		acct.IBAN = iban.String
		acct.BIC = bic.String
		acct.Scheme = scheme.String
		acct.MandateID = mandateID.String
		if signedOn.String != "" {
			if acct.MandateSignedOn, err = dateutils.ParseDate(signedOn.String); err != nil {
				return nil, fmt.Errorf("account %s mandate_signed_on: %w", acct.ID, err)
			}
		}
		cp.Accounts = append(cp.Accounts, acct)
	}
	return cp, rows.Err()
}

// LineItems loads the items of an instruction in stored order.
func (r *Repository) LineItems(instructionID string) ([]models.LineItem, error) {
	rows, err := r.db.Query(`select document_no, document_date, order_no, po_reference, line_amount, discount_amount, grand_total
from line_items where instruction_id = ? order by position`, instructionID)
	if err != nil {
		return nil, fmt.Errorf("loading line items of %s: %w", instructionID, err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var li models.LineItem
		var docNo, docDate, orderNo, po sql.NullString
		if err := rows.Scan(&docNo, &docDate, &orderNo, &po, &li.LineAmount, &li.DiscountAmount, &li.GrandTotal); err != nil {
			return nil, fmt.Errorf("scanning line item: %w", err)
		}
		li.DocumentNo = docNo.String
		li.OrderNo = orderNo.String
		li.POReference = po.String
		if docDate.String != "" {
			if li.DocumentDate, err = dateutils.ParseDate(docDate.String); err != nil {
				return nil, fmt.Errorf("line item document_date: %w", err)
			}
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

// CreditorIdentifier returns the creditor id of an organization or "".
func (r *Repository) CreditorIdentifier(orgID string) (string, error) {
	var id string
	err := r.db.QueryRow(`select creditor_identifier from organizations where org_id = ?`, orgID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading creditor identifier of %s: %w", orgID, err)
	}
	return id, nil
}

// MarkMandateUsed sets already_used on the account.
func (r *Repository) MarkMandateUsed(accountID string) error {
	res, err := r.db.Exec(`update bank_accounts set already_used = 1 where account_id = ?`, accountID)
	if err != nil {
		return fmt.Errorf("marking account %s: %w", accountID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %s not found", accountID)
	}
	r.logger.Debug("Persisted mandate flag", logging.F(logging.FieldAccountID, accountID))
	return nil
}

// HolidayLookup returns the non-business days named LIKE keyword. An
// empty keyword matches nothing and yields a nil lookup.
func (r *Repository) HolidayLookup(keyword string) (dateutils.NonBusinessDayLookup, error) {
	if keyword == "" {
		return nil, nil
	}
	rows, err := r.db.Query(`select date, name from non_business_days where name like ?`, keyword)
	if err != nil {
		return nil, fmt.Errorf("loading non-business days: %w", err)
	}
	defer rows.Close()

	// SQLite LIKE ignores ASCII case; filter again so both stores agree.
	pattern := textutils.CompileLike(keyword)
	var dates []time.Time
	for rows.Next() {
		var day, name string
		if err := rows.Scan(&day, &name); err != nil {
			return nil, err
		}
		if !pattern.Match(name) {
			continue
		}
		d, err := dateutils.ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("non-business day %q: %w", day, err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dateutils.NewHolidaySet(dates...).Lookup(), nil
}

// Import writes a batch file into the database in one transaction.
// Existing rows with the same keys are replaced.
func (r *Repository) Import(ctx context.Context, file *store.BatchFile) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b := file.Batch
	if _, err = tx.Exec(`insert or replace into batches(batch_id, created_at, org_id, org_name, client_name, pay_date, currency, originator_iban, originator_bic) values (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.CreatedAt.UTC().Format(time.RFC3339), b.OrgID, b.OrgName, b.ClientName, dateutils.ToISODate(b.PayDate), b.Currency, b.Originator.IBAN, b.Originator.BIC); err != nil {
		return fmt.Errorf("importing batch %s: %w", b.ID, err)
	}

	for org, id := range file.CreditorIdentifiers {
		if _, err = tx.Exec(`insert or replace into organizations(org_id, creditor_identifier) values (?, ?)`, org, id); err != nil {
			return fmt.Errorf("importing organization %s: %w", org, err)
		}
	}

	for _, d := range file.NonBusinessDays {
		if _, err = tx.Exec(`insert into non_business_days(date, name) values (?, ?)`, dateutils.ToISODate(d.Date), d.Name); err != nil {
			return fmt.Errorf("importing non-business day: %w", err)
		}
	}

	for _, cp := range file.Counterparties {
		if _, err = tx.Exec(`insert or replace into counterparties(counterparty_id, name, reference_no) values (?, ?, ?)`, cp.ID, cp.Name, cp.ReferenceNo); err != nil {
			return fmt.Errorf("importing counterparty %s: %w", cp.ID, err)
		}
		for pos, a := range cp.Accounts {
			if _, err = tx.Exec(`insert or replace into bank_accounts(account_id, counterparty_id, position, active, iban, bic, supports_direct_debit, supports_direct_deposit, scheme, mandate_id, mandate_signed_on, already_used) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				a.ID, cp.ID, pos, a.Active, a.IBAN, a.BIC, a.SupportsDirectDebit, a.SupportsDirectDeposit, a.Scheme, a.MandateID, optionalDate(a.MandateSignedOn), a.AlreadyUsed); err != nil {
				return fmt.Errorf("importing account %s: %w", a.ID, err)
			}
		}
	}

	for pos, rec := range file.Instructions {
		currency := rec.Currency
		if currency == "" {
			currency = b.Currency
		}
		if _, err = tx.Exec(`insert or replace into payment_instructions(instruction_id, batch_id, position, counterparty_id, amount_value, amount_currency) values (?, ?, ?, ?, ?, ?)`,
			rec.ID, b.ID, pos, rec.CounterpartyID, rec.Amount.String(), currency); err != nil {
			return fmt.Errorf("importing instruction %s: %w", rec.ID, err)
		}
		if _, err = tx.Exec(`delete from line_items where instruction_id = ?`, rec.ID); err != nil {
			return err
		}
		for i, li := range rec.LineItems {
			if _, err = tx.Exec(`insert into line_items(instruction_id, position, document_no, document_date, order_no, po_reference, line_amount, discount_amount, grand_total) values (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				rec.ID, i, li.DocumentNo, optionalDate(li.DocumentDate), li.OrderNo, li.POReference, li.LineAmount.String(), li.DiscountAmount.String(), li.GrandTotal.String()); err != nil {
				return fmt.Errorf("importing line item of %s: %w", rec.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	r.logger.Info("Imported batch",
		logging.F("batch_id", b.ID),
		logging.F(logging.FieldCount, len(file.Instructions)))
	return nil
}

func optionalDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return dateutils.ToISODate(t)
}

var _ store.Source = (*Repository)(nil)
