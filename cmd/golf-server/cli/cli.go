// Package cli implements the "golf-server db" administration commands
package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"golf/internal/server/construct"
	"golf/internal/server/core"
	"golf/internal/server/export"
	"golf/internal/server/golf"
	"golf/internal/server/service"
	"golf/internal/server/storage"
)

// Run is the entry point for the CLI mini-app
func Run(args []string) error {
	return newApp(os.Stdout, os.Stdin).Run(append([]string{"golf-server db"}, args...))
}

func pathFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "path",
		Usage:    "Database file path",
		Required: true,
		EnvVars:  []string{"GOLF_STORAGE_PATH"},
	}
}

func newApp(out io.Writer, in io.Reader) *cli.App {
	return &cli.App{
		Name:      "golf-server db",
		Usage:     "administer the golf catalogue database",
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "create the database schema",
				Flags:  []cli.Flag{pathFlag()},
				Action: runInit,
			},
			{
				Name:  "delete",
				Usage: "delete the database file",
				Flags: []cli.Flag{
					pathFlag(),
					&cli.BoolFlag{Name: "force", Usage: "skip the confirmation prompt"},
				},
				Action: func(c *cli.Context) error {
					return runDelete(c, in)
				},
			},
			{
				Name:    "instances",
				Aliases: []string{"query"},
				Usage:   "list instances with their resolved bounds",
				Flags:   []cli.Flag{pathFlag()},
				Action:  runInstances,
			},
			{
				Name:  "construct",
				Usage: "run construction sweeps synchronously",
				Flags: []cli.Flag{
					pathFlag(),
					&cli.StringFlag{Name: "construction", Usage: "construction id (all when empty)"},
					&cli.IntFlag{Name: "max-groups", Value: construct.MaxNumGroups, Usage: "largest number of groups swept"},
					&cli.IntFlag{Name: "max-size", Value: construct.MaxGroupSize, Usage: "largest group size swept"},
					&cli.StringFlag{Name: "contact", Usage: "maintainer email recorded on generated bounds", EnvVars: []string{"GOLF_CONSTRUCTIONS_CONTACT"}},
				},
				Action: runConstruct,
			},
			{
				Name:      "clear",
				Usage:     "remove every bound produced by a construction",
				ArgsUsage: "<construction-id>",
				Flags:     []cli.Flag{pathFlag()},
				Action:    runClear,
			},
			{
				Name:  "export",
				Usage: "write the bounds table as an xlsx workbook",
				Flags: []cli.Flag{
					pathFlag(),
					&cli.StringFlag{Name: "out", Value: "golf.xlsx", Usage: "output file"},
				},
				Action: runExport,
			},
			{
				Name:  "rejections",
				Usage: "list rejected solution submissions",
				Flags: []cli.Flag{
					pathFlag(),
					&cli.StringFlag{Name: "instance", Usage: "instance name such as 4x3 (all when empty)"},
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum rows, 0 for all"},
				},
				Action: runRejections,
			},
		},
	}
}

// quietLogger keeps store and service chatter off the terminal
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openStore(c *cli.Context) (*storage.Store, error) {
	store, err := storage.NewStore(c.String("path"), false, quietLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

// openService opens the store, ensures the schema and wraps it in a service
func openService(c *cli.Context) (*service.Service, *storage.Store, error) {
	store, err := openStore(c)
	if err != nil {
		return nil, nil, err
	}
	if err := store.InitDB(); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return service.New(store, quietLogger(), nil, nil), store, nil
}

func runInit(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Database initialized at: %s\n", c.String("path"))
	return nil
}

func runDelete(c *cli.Context, in io.Reader) error {
	path := c.String("path")

	if !c.Bool("force") {
		if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
			return fmt.Errorf("refusing to delete without a terminal; use --force")
		}
		fmt.Fprintf(c.App.Writer, "Delete %s and every recorded bound? [y/N]: ", path)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(c.App.Writer, "Aborted")
			return nil
		}
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Database deleted: %s\n", path)
	return nil
}

func runInstances(c *cli.Context) error {
	svc, store, err := openService(c)
	if err != nil {
		return err
	}
	defer store.Close()

	states, err := svc.ListInstances(c.Context)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(states) == 0 {
		fmt.Fprintln(c.App.Writer, "No instances found")
		return nil
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Instance\tPlayers\tLower\tUpper\tRange\tStatus\tSolution")
	fmt.Fprintln(w, strings.Repeat("-", 72))

	for _, st := range states {
		r := st.Resolution
		solution := "-"
		if r.Solution() != nil {
			solution = "yes"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			st.Instance.Name(),
			st.Instance.NumPlayers(),
			rounds(r.Lower),
			rounds(r.Upper),
			r.Range(),
			core.StatusOf(r),
			solution,
		)
	}
	w.Flush()

	fmt.Fprintf(c.App.Writer, "\nFound %d instance(s)\n", len(states))
	return nil
}

func rounds(b *golf.Bound) string {
	if b == nil {
		return golf.Unknown
	}
	return fmt.Sprintf("%d", b.NumRounds)
}

func runConstruct(c *cli.Context) error {
	svc, store, err := openService(c)
	if err != nil {
		return err
	}
	defer store.Close()

	registry := construct.NewRegistry(svc, quietLogger(),
		construct.WithLimits(c.Int("max-groups"), c.Int("max-size")),
		construct.WithContact(c.String("contact")))

	var summaries []construct.Summary
	if id := c.String("construction"); id != "" {
		summary, err := registry.Run(c.Context, id)
		if err != nil {
			return err
		}
		summaries = []construct.Summary{summary}
	} else {
		summaries, err = registry.RunAll(c.Context)
		if err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Construction\tVersion\tCleared\tCreated\tSkipped")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", s.ID, s.Version, s.Cleared, s.Created, s.Skipped)
	}
	return w.Flush()
}

func runClear(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("construction id required")
	}

	svc, store, err := openService(c)
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := svc.ClearConstruction(c.Context, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Removed %d bound(s) of %s\n", removed, id)
	return nil
}

func runExport(c *cli.Context) error {
	svc, store, err := openService(c)
	if err != nil {
		return err
	}
	defer store.Close()

	states, err := svc.ListInstances(c.Context)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	out := c.String("out")
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := export.WriteTable(f, states); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Wrote %d instance(s) to %s\n", len(states), out)
	return nil
}

func runRejections(c *cli.Context) error {
	svc, store, err := openService(c)
	if err != nil {
		return err
	}
	defer store.Close()

	var inst *golf.Instance
	if name := c.String("instance"); name != "" {
		found, err := svc.GetInstanceByName(c.Context, name)
		if err != nil {
			return err
		}
		inst = &found
	}

	records, err := svc.Rejections(c.Context, inst, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(c.App.Writer, "No rejections found")
		return nil
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "When\tInstance\tRounds\tKind\tSubmitter\tMessage")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.InstanceID,
			r.NumRounds,
			r.ErrorKind,
			r.SubmitterRef,
			r.Message,
		)
	}
	return w.Flush()
}
