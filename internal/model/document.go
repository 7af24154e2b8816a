package model

// DocumentSource records which path produced a document.
type DocumentSource string

const (
	SourceAI       DocumentSource = "ai"       // verbatim model output
	SourceFallback DocumentSource = "fallback" // deterministic template
)

// GeneratedDocument is the output of one generation run. Body is never empty
// for a valid descriptor: if the AI backend fails, the deterministic
// fallback fills it instead.
type GeneratedDocument struct {
	Body   string         `json:"body"`
	Source DocumentSource `json:"source"`
	Length int            `json:"length"` // len(Body) in bytes
}
