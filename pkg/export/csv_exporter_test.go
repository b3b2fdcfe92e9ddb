package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderQuotesTextFieldsUnconditionally(t *testing.T) {
	body, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Assignment", "Strengths", "Clarity"},
		Rows: []map[string]string{
			{"Assignment": "Essay One", "Strengths": "clear structure", "Clarity": "4"},
			{"Assignment": "Essay Two", "Strengths": `He said "great"`, "Clarity": "5"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Assignment,Strengths,Clarity", lines[0])
	assert.Equal(t, `"Essay One","clear structure",4`, lines[1])
	assert.Equal(t, `"Essay Two","He said ""great""",5`, lines[2])
}

func TestCSVRenderQuotesEmptyTextFields(t *testing.T) {
	body, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Assignment", "Weaknesses"},
		Rows:    []map[string]string{{"Assignment": "Essay", "Weaknesses": ""}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"Essay",""`)
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	body, err := NewPDFExporter().Render(Dataset{
		Headers: []string{"Assignment", "Reviewer"},
		Rows:    []map[string]string{{"Assignment": "Essay One", "Reviewer": "Alice"}},
	}, "Essay One")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))
}
