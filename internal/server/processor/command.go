// FILE: internal/server/processor/command.go
package processor

import (
	"golf/internal/server/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdListInstances CommandType = iota
	CmdCreateInstance
	CmdGetInstance
	CmdListBounds
	CmdSubmitBound
	CmdSubmitSolution
	CmdGetSolution
	CmdRenderHistory
	CmdExportTable
	CmdRunConstructions
	CmdGetJob
)

// Command is a unified structure for all processor operations
type Command struct {
	Type     CommandType
	Instance string // Instance name for instance-specific commands
	Args     any    // Command-specific arguments
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Pending bool                `json:"pending,omitempty"` // For async operations
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewListInstancesCommand() Command {
	return Command{Type: CmdListInstances}
}

func NewCreateInstanceCommand(req core.CreateInstanceRequest) Command {
	return Command{
		Type: CmdCreateInstance,
		Args: req,
	}
}

func NewGetInstanceCommand(name string) Command {
	return Command{
		Type:     CmdGetInstance,
		Instance: name,
	}
}

func NewListBoundsCommand(name string) Command {
	return Command{
		Type:     CmdListBounds,
		Instance: name,
	}
}

func NewSubmitBoundCommand(name string, req core.SubmitBoundRequest) Command {
	return Command{
		Type:     CmdSubmitBound,
		Instance: name,
		Args:     req,
	}
}

func NewSubmitSolutionCommand(name string, req core.SubmitSolutionRequest) Command {
	return Command{
		Type:     CmdSubmitSolution,
		Instance: name,
		Args:     req,
	}
}

func NewGetSolutionCommand(name string) Command {
	return Command{
		Type:     CmdGetSolution,
		Instance: name,
	}
}

func NewRenderHistoryCommand(name string) Command {
	return Command{
		Type:     CmdRenderHistory,
		Instance: name,
	}
}

func NewExportTableCommand() Command {
	return Command{Type: CmdExportTable}
}

func NewRunConstructionsCommand(req core.RunConstructionsRequest) Command {
	return Command{
		Type: CmdRunConstructions,
		Args: req,
	}
}

func NewGetJobCommand(jobID string) Command {
	return Command{
		Type: CmdGetJob,
		Args: jobID,
	}
}
