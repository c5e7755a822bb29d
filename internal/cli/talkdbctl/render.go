package talkdbctl

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

type banner struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type outcome struct {
	Status   string   `json:"status"`
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
	Banner   banner   `json:"banner"`
}

type renderer struct {
	out     io.Writer
	success *color.Color
	warning *color.Color
	failure *color.Color
	code    *color.Color
}

func newRenderer(out io.Writer, noColor bool) *renderer {
	r := &renderer{
		out:     out,
		success: color.New(color.FgGreen, color.Bold),
		warning: color.New(color.FgYellow, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
		code:    color.New(color.FgCyan),
	}
	if noColor {
		for _, c := range []*color.Color{r.success, r.warning, r.failure, r.code} {
			c.DisableColor()
		}
	}
	return r
}

func (r *renderer) schema(raw []byte) error {
	var body struct {
		Schema string `json:"schema"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(r.out, strings.TrimSpace(body.Schema))
	return nil
}

func (r *renderer) translation(raw []byte) error {
	var body struct {
		SQL string `json:"sql"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return err
	}
	r.sql(body.SQL)
	return nil
}

func (r *renderer) outcome(raw []byte) error {
	var body outcome
	if err := json.Unmarshal(raw, &body); err != nil {
		return err
	}
	r.result(body)
	return nil
}

func (r *renderer) ask(raw []byte) error {
	var body struct {
		SQL     string  `json:"sql"`
		Outcome outcome `json:"outcome"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return err
	}
	r.sql(body.SQL)
	r.result(body.Outcome)
	return nil
}

func (r *renderer) sql(statement string) {
	_, _ = r.code.Fprintln(r.out, statement)
}

func (r *renderer) result(o outcome) {
	r.banner(o.Banner)
	if len(o.Columns) == 0 || len(o.Rows) == 0 {
		return
	}
	table := tablewriter.NewWriter(r.out)
	table.SetHeader(o.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, row := range o.Rows {
		cells := make([]string, len(row))
		for i, value := range row {
			cells[i] = formatCell(value)
		}
		table.Append(cells)
	}
	table.Render()
}

func (r *renderer) banner(b banner) {
	c := r.failure
	switch b.Level {
	case "success":
		c = r.success
	case "warning":
		c = r.warning
	}
	if b.Message != "" {
		_, _ = c.Fprintln(r.out, b.Message)
	}
}

// httpError prints the API error envelope. A translation failure is shown
// as the same banner the UI uses.
func (r *renderer) httpError(w io.Writer, code int, raw []byte) {
	var envelope struct {
		ErrorCode string         `json:"error_code"`
		Message   string         `json:"message"`
		Context   map[string]any `json:"context"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.ErrorCode == "" {
		_, _ = fmt.Fprintf(w, "http %d: %s\n", code, strings.TrimSpace(string(raw)))
		return
	}
	message := envelope.Message
	if details, ok := envelope.Context["details"].(string); ok && details != "" {
		message = details
	}
	if envelope.ErrorCode == "TRANSLATE_FAILED" {
		_, _ = r.failure.Fprintln(w, "Translation failed: "+message)
		return
	}
	_, _ = fmt.Fprintf(w, "http %d %s: %s\n", code, envelope.ErrorCode, message)
}

func formatCell(value any) string {
	switch typed := value.(type) {
	case nil:
		return "NULL"
	case float64:
		// Integers are exact in a float64 only below 2^53.
		if math.Abs(typed) < 1<<53 && typed == math.Trunc(typed) {
			return fmt.Sprintf("%d", int64(typed))
		}
		return fmt.Sprintf("%g", typed)
	default:
		return fmt.Sprint(typed)
	}
}
