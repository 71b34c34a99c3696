package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-risk/internal/risk"
	"github.com/inodb/vibe-risk/internal/variant"
)

func TestNewResponse(t *testing.T) {
	res := &variant.Result{
		TotalAnalyzed:   10,
		Method:          variant.MethodHeuristic,
		ModelConfidence: 0.72,
		ProcessingTime:  1500 * time.Millisecond,
		FileFormat:      "VCF",
	}
	r := NewResponse("a.vcf", res, []risk.Classified{brca1()})

	assert.Equal(t, "1.5s", r.ProcessingTime)
	assert.Equal(t, risk.Summary{Total: 1, Medium: 1}, r.Summary)
	assert.Empty(t, r.Message)
}

func TestNewResponse_Empty(t *testing.T) {
	r := NewResponse("", &variant.Result{Method: variant.MethodHeuristic, ModelConfidence: 0.7}, nil)

	assert.Equal(t, NoVariantsMessage, r.Message)

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, []any{}, m["pathogenic_variants"])
	assert.Equal(t, "heuristic-fallback", m["analysis_method"])
	assert.Equal(t, NoVariantsMessage, m["message"])
	assert.NotContains(t, m, "file")
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf, false)

	res := &variant.Result{Method: variant.MethodExternal}
	require.NoError(t, w.Write(NewResponse("a", res, nil)))
	require.NoError(t, w.Write(NewResponse("b", res, []risk.Classified{brca1()})))

	dec := json.NewDecoder(&buf)
	var first, second Response
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "a", first.File)
	assert.Equal(t, "b", second.File)
	require.Len(t, second.Variants, 1)
	assert.Equal(t, "BRCA1", second.Variants[0].Gene)
}
