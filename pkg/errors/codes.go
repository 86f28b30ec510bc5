package errors

// ErrorCode is a string identifier for a specific failure category.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
const (
	ErrCodeInternal       ErrorCode = "COMMON_001"
	ErrCodeBadRequest     ErrorCode = "COMMON_002"
	ErrCodeNotFound       ErrorCode = "COMMON_003"
	ErrCodeValidation     ErrorCode = "COMMON_004"
	ErrCodeSerialization  ErrorCode = "COMMON_005"
	ErrCodeDatabaseError  ErrorCode = "COMMON_006"
	ErrCodeCacheError     ErrorCode = "COMMON_007"
	ErrCodeStorageError   ErrorCode = "COMMON_008"
	ErrCodeMessagingError ErrorCode = "COMMON_009"
	ErrCodeNotImplemented ErrorCode = "COMMON_010"
)

// Chemistry oracle error codes.  Parse and standardization failures are
// recorded per molecule and never abort a pipeline run.
const (
	ErrCodeChemParseFailed       ErrorCode = "CHEM_001"
	ErrCodeChemUnknownElement    ErrorCode = "CHEM_002"
	ErrCodeChemKekulizeFailed    ErrorCode = "CHEM_003"
	ErrCodeChemCapabilityMissing ErrorCode = "CHEM_004"
	ErrCodeChemWriteFailed       ErrorCode = "CHEM_005"
)

// Filter pipeline error codes.
const (
	ErrCodeFilterCriteriaInvalid ErrorCode = "FLT_001"
	ErrCodeFilterRejected        ErrorCode = "FLT_002"
)

// Tokenizer error codes.  An unrecognized token is a tokenizer/configuration
// alignment defect, never a chemistry rejection; it always aborts the run.
const (
	ErrCodeTokenUnrecognized ErrorCode = "TOK_001"
	ErrCodeTokenConfigEmpty  ErrorCode = "TOK_002"
)

// Vocabulary error codes.  A vocabulary mismatch is fatal and must abort a
// downstream stage before any partial state is created.
const (
	ErrCodeVocabularyMismatch       ErrorCode = "VOC_001"
	ErrCodeVocabularySourceMismatch ErrorCode = "VOC_002"
	ErrCodeVocabularyCorrupt        ErrorCode = "VOC_003"
	ErrCodeVocabularyRingOverflow   ErrorCode = "VOC_004"
)

// Aliases kept short for the most frequent call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// ErrorCodeMessage maps codes to default human-readable messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:       "internal error",
	ErrCodeBadRequest:     "bad request",
	ErrCodeNotFound:       "resource not found",
	ErrCodeValidation:     "validation failed",
	ErrCodeSerialization:  "serialization failed",
	ErrCodeDatabaseError:  "database error",
	ErrCodeCacheError:     "cache error",
	ErrCodeStorageError:   "object storage error",
	ErrCodeMessagingError: "message broker error",
	ErrCodeNotImplemented: "not implemented",

	ErrCodeChemParseFailed:       "failed to parse SMILES",
	ErrCodeChemUnknownElement:    "unknown chemical element",
	ErrCodeChemKekulizeFailed:    "kekulization failed",
	ErrCodeChemCapabilityMissing: "chemistry oracle capability missing",
	ErrCodeChemWriteFailed:       "failed to write SMILES",

	ErrCodeFilterCriteriaInvalid: "invalid filter criteria",
	ErrCodeFilterRejected:        "molecule rejected by filter criteria",

	ErrCodeTokenUnrecognized: "unrecognized token in SMILES",
	ErrCodeTokenConfigEmpty:  "tokenizer element table is empty",

	ErrCodeVocabularyMismatch:       "token missing from vocabulary",
	ErrCodeVocabularySourceMismatch: "vocabulary source reference mismatch",
	ErrCodeVocabularyCorrupt:        "vocabulary artifact corrupt",
	ErrCodeVocabularyRingOverflow:   "ring-closure number exceeds %99",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsFatalCode reports whether the code belongs to the fatal error classes.
// Tokenizer misconfiguration and vocabulary mismatches are configuration
// invariant violations that must propagate to the operator, while parse and
// criterion failures are recorded per molecule and the run continues.
func IsFatalCode(code ErrorCode) bool {
	switch code {
	case ErrCodeTokenUnrecognized, ErrCodeTokenConfigEmpty,
		ErrCodeVocabularyMismatch, ErrCodeVocabularySourceMismatch,
		ErrCodeVocabularyCorrupt, ErrCodeVocabularyRingOverflow,
		ErrCodeChemCapabilityMissing:
		return true
	}
	return false
}
