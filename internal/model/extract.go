package model

// ExtractMethod records which heuristic tier produced a value, for
// diagnostics and tie-breaking.
type ExtractMethod string

const (
	MethodMailtoLink    ExtractMethod = "mailto_link"
	MethodDataAttribute ExtractMethod = "data_attribute"
	MethodScopedRegion  ExtractMethod = "scoped_region"
	MethodObfuscated    ExtractMethod = "obfuscated"
	MethodDocumentScan  ExtractMethod = "document_scan"
	MethodTelLink       ExtractMethod = "tel_link"
	MethodNone          ExtractMethod = ""
)

// ExtractionOutcome is the best-effort result of running the extraction
// cascades over one HTML document.
type ExtractionOutcome struct {
	BusinessName string
	Email        string
	EmailMethod  ExtractMethod
	Phone        string
	PhoneMethod  ExtractMethod
	Website      string
}
