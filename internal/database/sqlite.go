// Package database serves payment batches from a SQLite database and
// persists mandate flags there.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/lopezator/migrator"
	"github.com/mattn/go-sqlite3"

	"fjacquet/sepa-export/internal/logging"
)

var (
	sqliteVersionLogOnce sync.Once

	sqliteMigrations = migrator.Migrations(
		execsql(
			"create_organizations",
			`create table if not exists organizations(org_id primary key not null, creditor_identifier not null default '');`,
		),
		execsql(
			"create_batches",
			`create table if not exists batches(batch_id primary key not null, created_at not null, org_id not null, org_name, client_name, pay_date not null, currency not null, originator_iban not null, originator_bic);`,
		),
		execsql(
			"create_counterparties",
			`create table if not exists counterparties(counterparty_id primary key not null, name not null, reference_no);`,
		),
		execsql(
			"create_bank_accounts",
			`create table if not exists bank_accounts(account_id primary key not null, counterparty_id not null, position integer not null, active integer not null, iban, bic, supports_direct_debit integer not null, supports_direct_deposit integer not null, scheme, mandate_id, mandate_signed_on, already_used integer not null default 0);`,
		),
		execsql(
			"create_bank_accounts__counterparty_idx",
			`create index if not exists bank_accounts_counterparty on bank_accounts (counterparty_id);`,
		),
		execsql(
			"create_payment_instructions",
			`create table if not exists payment_instructions(instruction_id primary key not null, batch_id not null, position integer not null, counterparty_id not null, amount_value not null, amount_currency not null);`,
		),
		execsql(
			"create_line_items",
			`create table if not exists line_items(instruction_id not null, position integer not null, document_no, document_date, order_no, po_reference, line_amount not null, discount_amount not null, grand_total not null, unique(instruction_id, position));`,
		),
		execsql(
			"create_non_business_days",
			`create table if not exists non_business_days(date not null, name not null);`,
		),
	)
)

func execsql(name, raw string) *migrator.MigrationNoTx {
	return &migrator.MigrationNoTx{
		Name: name,
		Func: func(db *sql.DB) error {
			_, err := db.Exec(raw)
			return err
		},
	}
}

// connect opens path and runs the migrations.
func connect(ctx context.Context, path string, logger logging.Logger) (*sql.DB, error) {
	sqliteVersionLogOnce.Do(func() {
		if v, _, _ := sqlite3.Version(); v != "" {
			logger.Debug(fmt.Sprintf("sqlite version %s", v))
		}
	})

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	m, err := migrator.New(sqliteMigrations)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := m.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return db, nil
}
