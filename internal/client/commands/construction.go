package commands

import (
	"fmt"
	"time"

	"golf/internal/client/display"
	"golf/internal/server/core"
)

func (r *Registry) registerConstructionCommands() {
	r.Register(&Command{
		Name:        "run",
		ShortName:   "r",
		Description: "Queue a construction sweep",
		Usage:       "run [constructionId]",
		Handler:     runHandler,
	})

	r.Register(&Command{
		Name:        "job",
		ShortName:   "j",
		Description: "Show the state of a construction job",
		Usage:       "job [jobId]",
		Handler:     jobHandler,
	})
}

func runHandler(s Session, args []string) error {
	construction := ""
	if len(args) > 0 {
		construction = args[0]
	}
	job, err := s.GetClient().RunConstructions(construction)
	if err != nil {
		return err
	}
	s.SetLastJob(job.JobID)
	printJob(s, job)
	return nil
}

func jobHandler(s Session, args []string) error {
	id := s.GetLastJob()
	if len(args) > 0 {
		id = args[0]
	}
	if id == "" {
		return fmt.Errorf("no job given and none queued in this session")
	}
	job, err := s.GetClient().GetJob(id)
	if err != nil {
		return err
	}
	printJob(s, job)
	return nil
}

func printJob(s Session, job *core.JobResponse) {
	out := s.Out()
	color := display.Yellow
	switch job.State {
	case "done":
		color = display.Green
	case "failed":
		color = display.Red
	}
	fmt.Fprintf(out, "%sJob %s: %s%s%s\n", display.Cyan, job.JobID, color, job.State, display.Reset)
	fmt.Fprintf(out, "  Queued: %s\n", job.QueuedAt.Local().Format(time.DateTime))
	if job.DoneAt != nil {
		fmt.Fprintf(out, "  Done:   %s\n", job.DoneAt.Local().Format(time.DateTime))
	}
	if job.Error != "" {
		fmt.Fprintf(out, "  %sError: %s%s\n", display.Red, job.Error, display.Reset)
	}
	for _, sum := range job.Summaries {
		fmt.Fprintf(out, "  %s v%d: cleared %d, created %d, skipped %d\n",
			sum.Construction, sum.Version, sum.Cleared, sum.Created, sum.Skipped)
	}
}
