package analyzer

// Kind classifies why an analysis failed.
type Kind int

const (
	KindNone Kind = iota
	KindURLNotFound
	KindURLNotValid
	KindHTMLNotValid
	KindLoginDetectionFailed
)

func (k Kind) String() string {
	switch k {
	case KindURLNotFound:
		return "URL_NOT_FOUND"
	case KindURLNotValid:
		return "URL_NOT_VALID"
	case KindHTMLNotValid:
		return "HTML_NOT_VALID"
	case KindLoginDetectionFailed:
		return "LOGIN_DETECTION_FAILED"
	default:
		return ""
	}
}

// Description is the text shown to users for a failed analysis.
func (k Kind) Description() string {
	switch k {
	case KindURLNotFound:
		return "The given url is not found"
	case KindURLNotValid:
		return "The given url is not valid"
	case KindHTMLNotValid:
		return "The given url is not a valid html document"
	case KindLoginDetectionFailed:
		return "The login form detection is failed"
	default:
		return ""
	}
}

type LinkSums struct {
	Internal int `json:"internal"`
	External int `json:"external"`
}

// AnalysisResult is the report for one page. Empty DocumentType and Title
// mean the value was not determined. On failure the fields set by the steps
// that completed are kept.
type AnalysisResult struct {
	URL          string         `json:"url"`
	Succeeded    bool           `json:"succeeded"`
	Message      string         `json:"message,omitempty"`
	Failure      Kind           `json:"-"`
	DocumentType string         `json:"documentType,omitempty"`
	Title        string         `json:"title,omitempty"`
	Headings     map[string]int `json:"headingCounts"`
	Links        LinkSums       `json:"linkSums"`
	HasLoginForm bool           `json:"hasLoginForm"`
}

func (r *AnalysisResult) fail(kind Kind) {
	r.Succeeded = false
	r.Failure = kind
	r.Message = kind.String()
}

func (r *AnalysisResult) succeed() {
	r.Succeeded = true
	r.Failure = KindNone
	r.Message = ""
}
