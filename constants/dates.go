package constants

// Date layouts used across extraction, the review ledger, and annotation.
// Sheets write dates as MM/DD/YYYY; the OCR may drop zero padding or use a
// two-digit year, so both families are tried.
const (
	DateLayout      = "01/02/2006" // canonical zero-padded form
	DateLayoutShort = "01/02/06"
)

// FileExtPDF is the only input format; everything else is skipped at intake.
const FileExtPDF = ".pdf"
