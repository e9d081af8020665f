package plan

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pgschema/pgdelta/internal/change"
	"github.com/pgschema/pgdelta/internal/color"
	"github.com/pgschema/pgdelta/internal/version"
)

// Plan is an ordered migration script
type Plan struct {
	Steps     []Step    `json:"steps"`
	CreatedAt time.Time `json:"created_at"`
}

// Step is one change in its final position
type Step struct {
	Position   int               `json:"position"`
	Operation  change.Operation  `json:"operation"`
	ObjectType change.ObjectType `json:"object_type"`
	Scope      change.Scope      `json:"scope"`
	Target     string            `json:"target"`
	Identity   string            `json:"identity"`
	SQL        string            `json:"sql"`
}

// PlanJSON is the structured JSON output format
type PlanJSON struct {
	Version        string    `json:"version"`
	PgdeltaVersion string    `json:"pgdelta_version"`
	CreatedAt      time.Time `json:"created_at"`
	Fingerprint    string    `json:"fingerprint"`
	Summary        Summary   `json:"summary"`
	Steps          []Step    `json:"steps"`
}

// Summary counts steps by action
type Summary struct {
	Add     int                    `json:"add"`
	Change  int                    `json:"change"`
	Destroy int                    `json:"destroy"`
	Total   int                    `json:"total"`
	ByType  map[string]TypeSummary `json:"by_type"`
}

// TypeSummary counts steps of one object type
type TypeSummary struct {
	Add     int `json:"add"`
	Change  int `json:"change"`
	Destroy int `json:"destroy"`
}

// objectOrder is the display order of object types in the human summary
var objectOrder = []change.ObjectType{
	change.ObjectTypeRole,
	change.ObjectTypeSchema,
	change.ObjectTypeExtension,
	change.ObjectTypeType,
	change.ObjectTypeFunction,
	change.ObjectTypeProcedure,
	change.ObjectTypeSequence,
	change.ObjectTypeTable,
	change.ObjectTypeView,
	change.ObjectTypeMaterializedView,
	change.ObjectTypeIndex,
	change.ObjectTypeTrigger,
}

// New creates a plan from changes that are already ordered
func New(changes []change.Change) *Plan {
	p := &Plan{
		Steps:     make([]Step, len(changes)),
		CreatedAt: time.Now(),
	}
	for i, c := range changes {
		p.Steps[i] = Step{
			Position:   i + 1,
			Operation:  c.Operation(),
			ObjectType: c.ObjectType(),
			Scope:      c.Scope(),
			Target:     c.Target().String(),
			Identity:   change.ShortIdentity(c),
			SQL:        c.SQL(),
		}
	}
	return p
}

// SQL returns the script, one statement block per step separated by a blank line
func (p *Plan) SQL() string {
	if len(p.Steps) == 0 {
		return ""
	}
	blocks := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		blocks[i] = strings.TrimSpace(s.SQL)
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// JSON returns the plan in the structured JSON format
func (p *Plan) JSON() (string, error) {
	out := &PlanJSON{
		Version:        version.PlanFormat(),
		PgdeltaVersion: version.App(),
		CreatedAt:      p.CreatedAt.Truncate(time.Second),
		Fingerprint:    p.Fingerprint().Hash,
		Summary:        p.Summary(),
		Steps:          p.Steps,
	}
	if out.Steps == nil {
		out.Steps = []Step{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan to JSON: %w", err)
	}
	return string(data), nil
}

// Summary counts the plan's steps
func (p *Plan) Summary() Summary {
	s := Summary{ByType: make(map[string]TypeSummary)}
	for _, step := range p.Steps {
		ts := s.ByType[string(step.ObjectType)]
		switch action(step.Operation) {
		case "create":
			s.Add++
			ts.Add++
		case "delete":
			s.Destroy++
			ts.Destroy++
		default:
			s.Change++
			ts.Change++
		}
		s.ByType[string(step.ObjectType)] = ts
		s.Total++
	}
	return s
}

// action maps an operation to a plan action
func action(op change.Operation) string {
	switch op {
	case change.OperationCreate:
		return "create"
	case change.OperationDrop:
		return "delete"
	}
	return "update"
}

// HumanColored returns a readable summary followed by the script
func (p *Plan) HumanColored(enableColor bool) string {
	c := color.New(enableColor)
	var sb strings.Builder

	summary := p.Summary()
	if summary.Total == 0 {
		sb.WriteString("No changes detected.\n")
		return sb.String()
	}

	sb.WriteString(c.FormatPlanHeader(summary.Add, summary.Change, summary.Destroy) + "\n\n")

	sb.WriteString(c.Bold("Summary by type:") + "\n")
	for _, objType := range objectOrder {
		if ts, ok := summary.ByType[string(objType)]; ok {
			sb.WriteString(c.FormatSummaryLine(string(objType), ts.Add, ts.Change, ts.Destroy) + "\n")
		}
	}
	sb.WriteString("\n")

	sb.WriteString(c.Bold("Steps:") + "\n")
	for _, step := range p.Steps {
		target := step.Target
		if step.Scope != change.ScopeObject {
			target += " (" + string(step.Scope) + ")"
		}
		fmt.Fprintf(&sb, "  %3d %s %s %s\n", step.Position, c.PlanSymbol(action(step.Operation)), target, c.Cyan(step.Identity))
	}
	sb.WriteString("\n")

	sb.WriteString(c.Bold("DDL to be executed:") + "\n")
	sb.WriteString(strings.Repeat("-", 50) + "\n\n")
	sb.WriteString(p.SQL())
	return sb.String()
}
