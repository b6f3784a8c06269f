package logging

// Field names shared by every component so that export runs can be
// filtered by run id, rule or output file.
const (
	FieldRunID        = "run_id"
	FieldRule         = "payment_rule"
	FieldScheme       = "scheme"
	FieldSequence     = "sequence"
	FieldVariant      = "message_type"
	FieldCount        = "count"
	FieldControlSum   = "control_sum"
	FieldAccountID    = "account_id"
	FieldCounterparty = "counterparty_id"
	FieldInstruction  = "instruction_id"
	FieldMandateID    = "mandate_id"
	FieldSettlement   = "settlement_date"
	FieldStore        = "store"
	FieldInputFile    = "input_file"
	FieldOutputFile   = "output_file"
	FieldReason       = "reason"
	FieldError        = "error"
	FieldDuration     = "duration_ms"
)
