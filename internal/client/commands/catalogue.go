package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golf/internal/client/display"
	"golf/internal/server/core"
)

func (r *Registry) registerCatalogueCommands() {
	r.Register(&Command{
		Name:        "list",
		ShortName:   "l",
		Description: "List instances with their bounds",
		Usage:       "list",
		Handler:     listHandler,
	})

	r.Register(&Command{
		Name:        "create",
		ShortName:   "n",
		Description: "Create an instance and make it current",
		Usage:       "create <numGroups> <groupSize>",
		Handler:     createHandler,
	})

	r.Register(&Command{
		Name:        "use",
		ShortName:   "u",
		Description: "Set the current instance",
		Usage:       "use <instance>",
		Handler:     useHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "h",
		Description: "Show resolved bounds of an instance",
		Usage:       "show [instance]",
		Handler:     showHandler,
	})

	r.Register(&Command{
		Name:        "bounds",
		ShortName:   "b",
		Description: "List every recorded bound of an instance",
		Usage:       "bounds [instance]",
		Handler:     boundsHandler,
	})

	r.Register(&Command{
		Name:        "bound",
		ShortName:   "d",
		Description: "Submit an upper or lower bound for the current instance",
		Usage:       "bound <upper|lower> <rounds> <citation...>",
		Handler:     boundHandler,
	})

	r.Register(&Command{
		Name:        "solve",
		ShortName:   "s",
		Description: "Submit a schedule file as a solution for the current instance",
		Usage:       "solve <rounds> <file> <citation...>",
		Handler:     solveHandler,
	})

	r.Register(&Command{
		Name:        "solution",
		ShortName:   "o",
		Description: "Print the best known schedule",
		Usage:       "solution [instance]",
		Handler:     solutionHandler,
	})

	r.Register(&Command{
		Name:        "chart",
		ShortName:   "c",
		Description: "Save the bound history chart as PNG",
		Usage:       "chart <file> [instance]",
		Handler:     chartHandler,
	})

	r.Register(&Command{
		Name:        "table",
		ShortName:   "t",
		Description: "Save the bounds table as XLSX",
		Usage:       "table <file>",
		Handler:     tableHandler,
	})

	r.Register(&Command{
		Name:        "submitter",
		ShortName:   "i",
		Description: "Show or set the name and email attached to submissions",
		Usage:       "submitter [name] [email]",
		Handler:     submitterHandler,
	})
}

// target returns args[i] when present, otherwise the current instance
func target(s Session, args []string, i int) (string, error) {
	if len(args) > i {
		return args[i], nil
	}
	if cur := s.GetCurrentInstance(); cur != "" {
		return cur, nil
	}
	return "", fmt.Errorf("no instance given and none selected; use 'use <instance>'")
}

// submission builds provenance from the session submitter and a citation
func submission(s Session, citation []string) (core.SubmissionRequest, error) {
	name, email := s.GetSubmitter()
	if name == "" {
		return core.SubmissionRequest{}, fmt.Errorf("no submitter set; use 'submitter <name> [email]'")
	}
	if len(citation) == 0 {
		return core.SubmissionRequest{}, fmt.Errorf("citation required")
	}
	return core.SubmissionRequest{
		Citation:       strings.Join(citation, " "),
		SubmitterName:  name,
		SubmitterEmail: email,
	}, nil
}

func listHandler(s Session, args []string) error {
	resp, err := s.GetClient().ListInstances()
	if err != nil {
		return err
	}
	if resp.Total == 0 {
		fmt.Fprintln(s.Out(), "No instances recorded")
		return nil
	}
	display.InstanceTable(s.Out(), resp.Instances)
	return nil
}

func createHandler(s Session, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: create <numGroups> <groupSize>")
	}
	numGroups, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid number of groups: %s", args[0])
	}
	groupSize, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid group size: %s", args[1])
	}

	inst, err := s.GetClient().CreateInstance(numGroups, groupSize)
	if err != nil {
		return err
	}
	s.SetCurrentInstance(inst.Name)
	display.Instance(s.Out(), inst)
	return nil
}

func useHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: use <instance>")
	}
	inst, err := s.GetClient().GetInstance(args[0])
	if err != nil {
		return err
	}
	s.SetCurrentInstance(inst.Name)
	fmt.Fprintf(s.Out(), "%sCurrent instance: %s%s\n", display.Cyan, inst.Name, display.Reset)
	return nil
}

func showHandler(s Session, args []string) error {
	name, err := target(s, args, 0)
	if err != nil {
		return err
	}
	inst, err := s.GetClient().GetInstance(name)
	if err != nil {
		return err
	}
	display.Instance(s.Out(), inst)
	return nil
}

func boundsHandler(s Session, args []string) error {
	name, err := target(s, args, 0)
	if err != nil {
		return err
	}
	resp, err := s.GetClient().ListBounds(name)
	if err != nil {
		return err
	}
	if len(resp.Bounds) == 0 {
		fmt.Fprintf(s.Out(), "No bounds recorded for %s\n", resp.Instance)
		return nil
	}
	for _, b := range resp.Bounds {
		fmt.Fprintf(s.Out(), "  #%d %s (%s)\n", b.ID, display.Bound(&b), b.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func boundHandler(s Session, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: bound <upper|lower> <rounds> <citation...>")
	}
	name, err := target(s, nil, 0)
	if err != nil {
		return err
	}
	rounds, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid number of rounds: %s", args[1])
	}
	sub, err := submission(s, args[2:])
	if err != nil {
		return err
	}

	b, err := s.GetClient().SubmitBound(name, &core.SubmitBoundRequest{
		SubmissionRequest: sub,
		Kind:              strings.ToLower(args[0]),
		NumRounds:         rounds,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.Out(), "%sRecorded #%d: %s%s\n", display.Green, b.ID, display.Bound(b), display.Reset)
	return nil
}

func solveHandler(s Session, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: solve <rounds> <file> <citation...>")
	}
	name, err := target(s, nil, 0)
	if err != nil {
		return err
	}
	rounds, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid number of rounds: %s", args[0])
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("cannot read schedule: %w", err)
	}
	sub, err := submission(s, args[2:])
	if err != nil {
		return err
	}

	// Files usually end with a newline the schedule format does not allow
	text := strings.TrimRight(string(data), "\r\n")

	b, err := s.GetClient().SubmitSolution(name, &core.SubmitSolutionRequest{
		SubmissionRequest: sub,
		NumRounds:         rounds,
		Solution:          text,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.Out(), "%sAccepted #%d: %s%s\n", display.Green, b.ID, display.Bound(b), display.Reset)
	return nil
}

func solutionHandler(s Session, args []string) error {
	name, err := target(s, args, 0)
	if err != nil {
		return err
	}
	text, err := s.GetClient().GetSolution(name)
	if err != nil {
		return err
	}
	display.Schedule(s.Out(), text)
	return nil
}

func chartHandler(s Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: chart <file> [instance]")
	}
	name, err := target(s, args, 1)
	if err != nil {
		return err
	}
	return download(s, "/api/v1/instances/"+name+"/history.png", args[0])
}

func tableHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: table <file>")
	}
	return download(s, "/api/v1/table.xlsx", args[0])
}

func download(s Session, path, file string) error {
	data, err := s.GetClient().Download(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, data, 0644); err != nil {
		return err
	}
	fmt.Fprintf(s.Out(), "%sSaved %d bytes to %s%s\n", display.Cyan, len(data), file, display.Reset)
	return nil
}

func submitterHandler(s Session, args []string) error {
	switch len(args) {
	case 0:
		name, email := s.GetSubmitter()
		if name == "" {
			fmt.Fprintln(s.Out(), "No submitter set")
			return nil
		}
		fmt.Fprintf(s.Out(), "Submitter: %s %s\n", name, email)
	case 1:
		s.SetSubmitter(args[0], "")
	case 2:
		s.SetSubmitter(args[0], args[1])
	default:
		return fmt.Errorf("usage: submitter [name] [email]")
	}
	return nil
}
