package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AuditIDPrefix starts every audit identifier.
const AuditIDPrefix = "VCH-"

// ReportTitle heads every rendered report.
const ReportTitle = "Vouch.ai Liability Report"

// Result is the report envelope handed to renderers. ReportText is the model
// output exactly as received.
type Result struct {
	ReportText  string    `json:"report_text"`
	EngineUsed  string    `json:"engine_used"`
	GeneratedAt time.Time `json:"generated_at"`
	AuditID     string    `json:"audit_id"`
}

// Presenter stamps raw reports with an identifier and timestamp.
type Presenter struct {
	now   func() time.Time
	newID func() (uuid.UUID, error)
}

// NewPresenter returns a Presenter using the wall clock and UUIDv7 ids.
func NewPresenter() *Presenter {
	return &Presenter{now: time.Now, newID: uuid.NewV7}
}

// NewAuditID returns a fresh, time-ordered audit identifier.
func (p *Presenter) NewAuditID() string {
	id, err := p.newID()
	if err != nil {
		id = uuid.New()
	}
	return AuditIDPrefix + strings.ToUpper(id.String())
}

// Wrap builds the envelope for rawText under a fresh audit identifier.
func (p *Presenter) Wrap(rawText, engineUsed string) Result {
	return p.WrapWithID(p.NewAuditID(), rawText, engineUsed)
}

// WrapWithID builds the envelope under an identifier issued earlier in the run.
func (p *Presenter) WrapWithID(auditID, rawText, engineUsed string) Result {
	if auditID == "" {
		auditID = p.NewAuditID()
	}
	return Result{
		ReportText:  rawText,
		EngineUsed:  engineUsed,
		GeneratedAt: p.now().UTC(),
		AuditID:     auditID,
	}
}

// Render formats the envelope header as Markdown followed by the untouched
// report body.
func Render(result Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", ReportTitle)
	fmt.Fprintf(&b, "- **Audit ID:** %s\n", result.AuditID)
	fmt.Fprintf(&b, "- **Generated:** %s\n", result.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Engine:** %s (`%s`)\n\n", EngineLabel(result.EngineUsed), result.EngineUsed)
	b.WriteString("---\n\n")
	b.WriteString(result.ReportText)
	return b.String()
}

// EngineLabel turns a model identifier such as "gemini-2.5-flash" into
// "Gemini 2.5 Flash".
func EngineLabel(engine string) string {
	engine = strings.TrimSpace(strings.TrimPrefix(engine, "models/"))
	if engine == "" {
		return "Unknown"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(engine, "-", " "))
}
