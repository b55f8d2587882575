package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/starford/cutline/internal"
	"github.com/starford/cutline/internal/interval"
	"github.com/starford/cutline/internal/models"
	"github.com/starford/cutline/internal/parser"
	"github.com/starford/cutline/internal/timeline"
)

func projectFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "project",
		Aliases:  []string{"p"},
		Usage:    "Project ID",
		Required: required,
	}
}

func newShowCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "List projects, or print a project's stored timeline",
		Flags: []cli.Flag{
			projectFlag(false),
			&cli.StringFlag{
				Name:  "at",
				Usage: "Only show clips under this time (M:SS or H:MM:SS)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			out := cmd.Root().Writer
			return withCore(cmd, func(core *internal.Core) error {
				id := cmd.String("project")
				if id == "" {
					return showProjects(ctx, out, core)
				}
				p, err := core.Service.GetProject(ctx, id)
				if err != nil {
					return fmt.Errorf("show %s: %w", id, err)
				}
				return showTimeline(out, p, cmd.String("at"))
			})
		},
	}
}

func showProjects(ctx context.Context, out io.Writer, core *internal.Core) error {
	projects, total, err := core.Service.ListProjects(ctx, 100, 0)
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Fprintln(out, "No projects")
		return nil
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.ID,
			p.Name,
			interval.FormatTime(p.Duration),
			p.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Name", "Duration", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
	if total > len(projects) {
		fmt.Fprintf(out, "%d of %d projects\n", len(projects), total)
	}
	return nil
}

func showTimeline(out io.Writer, p *models.Project, at string) error {
	var snap models.Snapshot
	if p.Timeline != nil {
		snap = *p.Timeline
	}
	fmt.Fprintf(out, "%s (%s)  duration %s  %d clips\n",
		p.Name, p.ID, interval.FormatTime(snap.Duration), snap.ClipCount())

	tl := timeline.New()
	tl.InitializeFrom(&snap)

	var hits []timeline.Hit
	if at != "" {
		secs, err := interval.ParseTime(at)
		if err != nil {
			return err
		}
		hits = tl.ClipsAt(secs)
	} else {
		hits = tl.ClipsInRange(0, max(tl.Duration(), snap.MaxEnd())+1)
	}
	if len(hits) == 0 {
		fmt.Fprintln(out, "No clips")
		return nil
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Track", "Type", "Clip", "Start", "End", "Length", "Name"},
		clipRows(hits),
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}

func clipRows(hits []timeline.Hit) [][]string {
	rows := make([][]string, 0, len(hits))
	for _, h := range hits {
		rows = append(rows, []string{
			h.Track.Name,
			string(h.Track.Type),
			h.Clip.ID,
			interval.FormatTime(h.Clip.StartTime),
			interval.FormatTime(h.Clip.EndTime),
			strconv.FormatFloat(h.Clip.Length(), 'f', 2, 64) + "s",
			h.Clip.Payload.Name(),
		})
	}
	return rows
}

func newExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write a project's stored timeline into the library",
		Flags: []cli.Flag{
			projectFlag(true),
			&cli.StringFlag{
				Name:  "format",
				Usage: "File format (json or yaml)",
				Value: string(parser.FormatJSON),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format := parser.Format(cmd.String("format"))
			if format != parser.FormatJSON && format != parser.FormatYAML {
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
			return withCore(cmd, func(core *internal.Core) error {
				path, err := core.Service.Export(ctx, cmd.String("project"), format)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.Root().Writer, "exported: %s\n", path)
				return nil
			})
		},
	}
}

func newImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Replace a project's timeline from a timeline file, creating the project if needed",
		ArgsUsage: "FILE",
		Flags:     []cli.Flag{projectFlag(true)},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			file := cmd.Args().First()
			if file == "" {
				return fmt.Errorf("import: FILE is required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			return withCore(cmd, func(core *internal.Core) error {
				p, err := core.Service.Import(ctx, cmd.String("project"), data)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.Root().Writer, "imported: %s (%s)\n", p.ID, p.Name)
				return nil
			})
		},
	}
}
