package xmlutils

// XPath expressions over pain.001 and pain.008 documents. Element names
// match on local name, so the default namespace does not matter.
const (
	XPathCreditTransferRoot = "/Document/CstmrCdtTrfInitn"
	XPathDirectDebitRoot    = "/Document/CstmrDrctDbtInitn"

	XPathMessageID      = "/Document/*/GrpHdr/MsgId"
	XPathHeaderCount    = "/Document/*/GrpHdr/NbOfTxs"
	XPathHeaderSum      = "/Document/*/GrpHdr/CtrlSum"
	XPathInitiatingName = "/Document/*/GrpHdr/InitgPty/Nm"
	XPathPaymentInfos   = "/Document/*/PmtInf"

	// Relative to a PmtInf node.
	XPathPaymentInfoID  = "PmtInfId"
	XPathPaymentCount   = "NbOfTxs"
	XPathPaymentSum     = "CtrlSum"
	XPathLocalInstr     = "PmtTpInf/LclInstrm/Cd"
	XPathSequenceType   = "PmtTpInf/SeqTp"
	XPathExecutionDate  = "ReqdExctnDt"
	XPathCollectionDate = "ReqdColltnDt"
	XPathTransferAmount = "CdtTrfTxInf/Amt/InstdAmt"
	XPathDebitAmount    = "DrctDbtTxInf/InstdAmt"
	XPathTransferIDs    = "CdtTrfTxInf/PmtId/EndToEndId"
	XPathDebitIDs       = "DrctDbtTxInf/PmtId/EndToEndId"
)
