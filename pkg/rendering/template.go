// Package rendering provides text reports over schedules and action outcomes
package rendering

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/ethpandaops/schedeck/pkg/schedule"
)

// ScheduleTemplate lists the blocks of a schedule, one per line
const ScheduleTemplate = `Schedule with {{ .total }} blocks
{{- if .restart.offset }} (restart at report step {{ .restart.offset }}){{ end }}
{{ range .blocks -}}
{{ printf "%4d" .index }}  {{ printf "%-7s" .type }}  {{ dateInZone "2006-01-02 15:04" .start "UTC" }}  {{ if .open }}{{ printf "%10s" "open" }}{{ else }}{{ printf "%5.2f days" .days | printf "%10s" }}{{ end }}  {{ default "-" (join " " .keywords) }}
{{ end -}}
`

// OutcomeTemplate lists the actions evaluated at one report step
const OutcomeTemplate = `Report step {{ .step }} ({{ dateInZone "2006-01-02" .time "UTC" }}): {{ len .outcomes }} actions evaluated
{{ range .outcomes -}}
{{ printf "%-12s" .action }}  {{ if .satisfied }}satisfied{{ else }}not satisfied{{ end }}{{ with .wells }}  wells: {{ join "," . }}{{ end }}
{{ end -}}
`

// OutcomeRow is one evaluated action in an outcome report
type OutcomeRow struct {
	Action    string
	Satisfied bool
	Wells     []string
}

// TemplateEngine provides template rendering with Sprig functions
type TemplateEngine struct {
	funcMap template.FuncMap
}

// NewTemplateEngine creates a new template engine with Sprig functions
func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{
		funcMap: sprig.TxtFuncMap(),
	}
}

// Render renders a template with the given variables
func (t *TemplateEngine) Render(content string, variables map[string]interface{}) (string, error) {
	tmpl, err := template.New("report").Funcs(t.funcMap).Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, variables); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// BuildScheduleVariables builds template variables describing every block
// of a schedule
func (t *TemplateEngine) BuildScheduleVariables(s *schedule.Deck) map[string]interface{} {
	blocks := make([]map[string]interface{}, 0, s.Size())

	for index, block := range s.All() {
		keywords := make([]string, 0, block.Size())
		for _, kw := range block.Keywords() {
			keywords = append(keywords, kw.Name)
		}

		end, closed := block.EndTime()

		var days float64
		if closed {
			days = end.Sub(block.StartTime()).Hours() / 24
		}

		blocks = append(blocks, map[string]interface{}{
			"index":    index,
			"type":     block.TimeType().String(),
			"start":    block.StartTime(),
			"end":      end,
			"open":     !closed,
			"days":     days,
			"keywords": keywords,
		})
	}

	return map[string]interface{}{
		"total":  s.Size(),
		"blocks": blocks,
		"restart": map[string]interface{}{
			"offset": s.RestartOffset(),
			"time":   s.RestartTime(),
		},
		"location": s.Location().String(),
	}
}

// BuildOutcomeVariables builds template variables for the actions evaluated
// at report step step
func (t *TemplateEngine) BuildOutcomeVariables(step int, simTime time.Time, rows []OutcomeRow) map[string]interface{} {
	outcomes := make([]map[string]interface{}, 0, len(rows))

	for _, row := range rows {
		outcomes = append(outcomes, map[string]interface{}{
			"action":    row.Action,
			"satisfied": row.Satisfied,
			"wells":     row.Wells,
		})
	}

	return map[string]interface{}{
		"step":     step,
		"time":     simTime,
		"outcomes": outcomes,
	}
}
