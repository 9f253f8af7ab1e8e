package tisweb

import (
	"tis100.dev/superopt"
	"tis100.dev/superopt/isa"
	"tis100.dev/superopt/search"
	"tis100.dev/superopt/solvedb"
	"tis100.dev/superopt/tisvm"
)

// SolutionInfo is the JSON form of a solvedb.Solution.
type SolutionInfo struct {
	ProblemID superopt.ID `json:"problem_id"`
	Name      string      `json:"name,omitempty"`
	Input     []int32     `json:"input"`
	Output    []int32     `json:"output"`
	MaxCycles uint64      `json:"max_cycles"`
	MaxLength int         `json:"max_length"`

	Found   bool   `json:"found"`
	Program string `json:"program"`
	Length  int    `json:"length"`
	Content uint32 `json:"content"`
	Index   uint64 `json:"index"`
	Tried   uint64 `json:"tried"`

	SolvedAt string `json:"solved_at"`
}

func NewSolutionInfo(sol solvedb.Solution) SolutionInfo {
	return SolutionInfo{
		ProblemID: sol.ProblemID,
		Name:      sol.Name,
		Input:     nonNil(sol.Input),
		Output:    nonNil(sol.Output),
		MaxCycles: sol.MaxCycles,
		MaxLength: sol.MaxLength,

		Found:   sol.Found,
		Program: sol.Program.String(),
		Length:  len(sol.Program),
		Content: sol.Program.Content(),
		Index:   sol.Index,
		Tried:   sol.Tried,

		SolvedAt: sol.SolvedAt.String(),
	}
}

type RunRequest struct {
	Program   string  `json:"program"`
	Input     []int32 `json:"input"`
	MaxCycles *uint64 `json:"max_cycles,omitempty"`
}

type RunResponse struct {
	Outcome string  `json:"outcome"`
	Output  []int32 `json:"output"`
	// Remaining is the input which was not read.
	Remaining []int32 `json:"remaining"`
	ACC       int32   `json:"acc"`
	PC        uint32  `json:"pc"`
}

// Run runs prog on a fresh node with input queued on its up port.
func Run(prog isa.Program, input []int32, maxCycles uint64) RunResponse {
	end, err := tisvm.New().Prime(input...).Load(prog).Run(maxCycles)
	return RunResponse{
		Outcome:   tisvm.OutcomeOf(err).String(),
		Output:    nonNil(end.Down().Output()),
		Remaining: nonNil(end.Up().Input()),
		ACC:       end.ACC(),
		PC:        end.PC(),
	}
}

// WSMessage is sent to websocket clients.
type WSMessage struct {
	// Type is one of "progress", "result" or "error".
	Type     string           `json:"type"`
	Progress *search.Progress `json:"progress,omitempty"`
	Result   *SolutionInfo    `json:"result,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func nonNil(xs []int32) []int32 {
	if xs == nil {
		return []int32{}
	}
	return xs
}
