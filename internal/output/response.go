package output

import (
	"encoding/json"
	"io"

	"github.com/inodb/vibe-risk/internal/risk"
	"github.com/inodb/vibe-risk/internal/variant"
)

// NoVariantsMessage marks a successful run with zero findings.
const NoVariantsMessage = "No pathogenic variants found"

// Response is the display-ready result of one analysis.
type Response struct {
	File            string            `json:"file,omitempty"`
	Variants        []risk.Classified `json:"pathogenic_variants"`
	TotalAnalyzed   int               `json:"total_variants_analyzed"`
	Method          variant.Method    `json:"analysis_method"`
	ModelConfidence float64           `json:"model_confidence"`
	ProcessingTime  string            `json:"processing_time"`
	FileFormat      string            `json:"file_format,omitempty"`
	Summary         risk.Summary      `json:"summary"`
	Message         string            `json:"message,omitempty"`
}

// NewResponse builds the response for one result and its classification.
func NewResponse(file string, res *variant.Result, classified []risk.Classified) *Response {
	if classified == nil {
		classified = []risk.Classified{}
	}
	r := &Response{
		File:            file,
		Variants:        classified,
		TotalAnalyzed:   res.TotalAnalyzed,
		Method:          res.Method,
		ModelConfidence: res.ModelConfidence,
		ProcessingTime:  res.FormatProcessingTime(),
		FileFormat:      res.FileFormat,
		Summary:         risk.Summarize(classified),
	}
	if len(classified) == 0 {
		r.Message = NoVariantsMessage
	}
	return r
}

// JSONWriter writes one JSON document per response, newline separated.
type JSONWriter struct {
	enc *json.Encoder
}

// NewJSONWriter creates a JSON writer. indent enables pretty printing.
func NewJSONWriter(w io.Writer, indent bool) *JSONWriter {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return &JSONWriter{enc: enc}
}

// Write encodes one response.
func (jw *JSONWriter) Write(r *Response) error {
	return jw.enc.Encode(r)
}
