package catalog

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/fieldside/rtp/internal/protocol"
)

//go:embed stages.cue
var stagesCUE []byte

// StageCount is the number of graduated stages before clearance.
const StageCount = 6

// StageDefinition describes one catalog stage: what the athlete may do
// and how long the stage must last before advancement is considered.
type StageDefinition struct {
	Key                  protocol.Stage `json:"key"`
	Order                int            `json:"order"`
	Label                string         `json:"label"`
	Description          string         `json:"description"`
	AllowedActivities    string         `json:"allowed_activities"`
	MinimumDurationHours int            `json:"minimum_duration_hours"`
	ProgressionCriteria  string         `json:"progression_criteria"`
}

// table is the compiled catalog, keyed lookup built once at init.
var (
	table   []StageDefinition
	byStage map[protocol.Stage]StageDefinition
)

func init() {
	defs, err := compile(stagesCUE)
	if err != nil {
		// The catalog is an embedded asset; failing to compile it is a
		// build defect, not a runtime condition.
		panic(fmt.Sprintf("catalog: %v", err))
	}
	table = defs
	byStage = make(map[protocol.Stage]StageDefinition, len(defs))
	for _, d := range defs {
		byStage[d.Key] = d
	}
}

// Definitions returns all six stage definitions in order.
func Definitions() []StageDefinition {
	out := make([]StageDefinition, len(table))
	copy(out, table)
	return out
}

// Definition returns the catalog entry for a stage.
// Returns UnknownStageError for keys outside the six-stage set,
// including "cleared", which has no catalog entry.
func Definition(stage protocol.Stage) (StageDefinition, error) {
	d, ok := byStage[stage]
	if !ok {
		return StageDefinition{}, &protocol.UnknownStageError{Stage: stage}
	}
	return d, nil
}

// Order returns the 1-based position of a stage in the progression.
func Order(stage protocol.Stage) (int, error) {
	d, err := Definition(stage)
	if err != nil {
		return 0, err
	}
	return d.Order, nil
}

// Next returns the stage that follows the given one in forward
// progression. The successor of stage_6 is the terminal "cleared"
// pseudo-stage. "cleared" itself has no successor.
func Next(stage protocol.Stage) (protocol.Stage, error) {
	d, err := Definition(stage)
	if err != nil {
		return "", err
	}
	if d.Order == StageCount {
		return protocol.StageCleared, nil
	}
	return table[d.Order].Key, nil
}

// rawStage mirrors the CUE stage shape for decoding.
type rawStage struct {
	Key                  string `json:"key"`
	Order                int    `json:"order"`
	Label                string `json:"label"`
	Description          string `json:"description"`
	AllowedActivities    string `json:"allowed_activities"`
	MinimumDurationHours int    `json:"minimum_duration_hours"`
	ProgressionCriteria  string `json:"progression_criteria"`
}

// compile parses CUE catalog source into an ordered definition table.
// CUE constraints in the source handle field-level validation; the Go
// side checks the cross-stage rules CUE cannot express locally.
func compile(src []byte) ([]StageDefinition, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile stages: %s", cueerrors.Details(err, nil))
	}

	stagesVal := v.LookupPath(cue.ParsePath("stages"))
	if !stagesVal.Exists() {
		return nil, fmt.Errorf("catalog source has no \"stages\" list")
	}
	if err := stagesVal.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate stages: %s", cueerrors.Details(err, nil))
	}

	var raw []rawStage
	if err := stagesVal.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode stages: %s", cueerrors.Details(err, nil))
	}

	if len(raw) != StageCount {
		return nil, fmt.Errorf("catalog must define exactly %d stages, found %d", StageCount, len(raw))
	}

	defs := make([]StageDefinition, len(raw))
	for i, r := range raw {
		if r.Order != i+1 {
			return nil, fmt.Errorf("stage %q: order %d out of sequence (want %d)", r.Key, r.Order, i+1)
		}
		if want := fmt.Sprintf("stage_%d", r.Order); r.Key != want {
			return nil, fmt.Errorf("stage order %d: key %q does not match position (want %q)", r.Order, r.Key, want)
		}
		defs[i] = StageDefinition{
			Key:                  protocol.Stage(r.Key),
			Order:                r.Order,
			Label:                r.Label,
			Description:          r.Description,
			AllowedActivities:    r.AllowedActivities,
			MinimumDurationHours: r.MinimumDurationHours,
			ProgressionCriteria:  r.ProgressionCriteria,
		}
	}

	if last := defs[StageCount-1]; last.MinimumDurationHours != 0 {
		return nil, fmt.Errorf("stage %q: final stage must have zero minimum duration, found %d",
			last.Key, last.MinimumDurationHours)
	}

	return defs, nil
}
