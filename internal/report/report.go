// Package report renders solved designs: the one-line gain output, a styled
// terminal summary, and YAML/JSON documents.
package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/lqrgain/internal/config"
	"github.com/san-kum/lqrgain/internal/design"
)

type Format string

const (
	FormatText   Format = "text"
	FormatPretty Format = "pretty"
	FormatYAML   Format = "yaml"
	FormatJSON   Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatPretty, FormatYAML, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown format %q (available: text, pretty, yaml, json)", s)
}

// Render formats an outcome in the requested format.
func Render(out *design.Outcome, f Format) (string, error) {
	switch f {
	case FormatText, "":
		return Lines(out.Result.K), nil
	case FormatPretty:
		return Pretty(out), nil
	case FormatYAML:
		return YAML(out)
	case FormatJSON:
		return JSON(out)
	}
	return "", fmt.Errorf("unknown format %q", f)
}

// Line formats one gain row as "K [k1, k2, ...]".
func Line(row []float64) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = formatFloat(v)
	}
	return "K [" + strings.Join(parts, ", ") + "]"
}

// Lines formats every row of K, one line per control input.
func Lines(k mat.Matrix) string {
	r, _ := k.Dims()
	lines := make([]string, r)
	for i := 0; i < r; i++ {
		lines[i] = Line(mat.Row(nil, i, k))
	}
	return strings.Join(lines, "\n")
}

// formatFloat prints the shortest exact representation, always with a
// fractional part or exponent.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

type Pole struct {
	Re float64 `json:"re" yaml:"re"`
	Im float64 `json:"im" yaml:"im"`
}

// Document is the serializable form of a solved design.
type Document struct {
	Model       string               `json:"model" yaml:"model"`
	Method      string               `json:"method" yaml:"method"`
	Params      config.ParamsConfig  `json:"params" yaml:"params"`
	Weights     config.WeightsConfig `json:"weights" yaml:"weights"`
	A           [][]float64          `json:"a" yaml:"a"`
	B           [][]float64          `json:"b" yaml:"b"`
	P           [][]float64          `json:"p" yaml:"p"`
	K           [][]float64          `json:"k" yaml:"k"`
	Poles       []Pole               `json:"poles" yaml:"poles"`
	Residual    float64              `json:"residual" yaml:"residual"`
	RelResidual float64              `json:"rel_residual" yaml:"rel_residual"`
	Margin      float64              `json:"margin" yaml:"margin"`
	Stable      bool                 `json:"stable" yaml:"stable"`
}

func NewDocument(out *design.Outcome) Document {
	res := out.Result
	poles := make([]Pole, len(res.ClosedLoop))
	for i, v := range res.ClosedLoop {
		poles[i] = Pole{Re: real(v), Im: imag(v)}
	}
	return Document{
		Model:       out.Config.Model,
		Method:      string(res.Method),
		Params:      out.Config.Params,
		Weights:     out.Config.Weights,
		A:           Rows(out.Problem.A),
		B:           Rows(out.Problem.B),
		P:           Rows(res.P),
		K:           Rows(res.K),
		Poles:       poles,
		Residual:    res.Residual,
		RelResidual: res.RelResidual,
		Margin:      res.Margin(),
		Stable:      res.Stable(),
	}
}

func YAML(out *design.Outcome) (string, error) {
	data, err := yaml.Marshal(NewDocument(out))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func JSON(out *design.Outcome) (string, error) {
	data, err := json.MarshalIndent(NewDocument(out), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Pretty renders a styled summary panel for terminals.
func Pretty(out *design.Outcome) string {
	res := out.Result
	p := out.Config.Params

	field := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, Label.Render(label), Value.Render(value))
	}
	matrix := func(label string, m mat.Matrix) string {
		body := fmt.Sprintf("%.6g", mat.Formatted(m, mat.Squeeze()))
		return lipgloss.JoinHorizontal(lipgloss.Top, Label.Render(label), body)
	}

	verdict := StatusStable.Render("stable")
	if !res.Stable() {
		verdict = StatusUnstable.Render("unstable")
	}

	poles := make([]string, len(res.ClosedLoop))
	for i, v := range res.ClosedLoop {
		poles[i] = fmt.Sprintf("%.4f%+.4fi", real(v), imag(v))
	}

	sections := []string{
		Title.Render("cart-pole LQR design"),
		"",
		Header.Render("parameters"),
		field("gravity", formatFloat(p.Gravity)),
		field("length", formatFloat(p.Length)),
		field("cart mass", formatFloat(p.CartMass)),
		field("pole mass", formatFloat(p.PoleMass)),
		field("friction", formatFloat(p.Friction)),
		"",
		Header.Render("model"),
		matrix("A", out.Problem.A),
		matrix("B", out.Problem.B),
		matrix("Q", out.Problem.Q),
		matrix("R", out.Problem.R),
		"",
		Header.Render("solution"),
		field("method", string(res.Method)),
		matrix("P", res.P),
		field("gain", Lines(res.K)),
		field("poles", strings.Join(poles, "  ")),
		field("residual", fmt.Sprintf("%.3e (relative %.1e)", res.Residual, res.RelResidual)),
		field("margin", fmt.Sprintf("%.4f", res.Margin())),
		field("closed loop", verdict),
	}
	if res.Iterations > 0 {
		sections = append(sections, Subtle.Render(fmt.Sprintf("newton iterations: %d", res.Iterations)))
	}

	return Panel.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// Rows copies a matrix into nested slices.
func Rows(m mat.Matrix) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
