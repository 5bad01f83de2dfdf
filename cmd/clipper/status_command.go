package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clipper/internal/ipc"
)

const (
	ansiReset = "\x1b[0m"
	ansiGreen = "\x1b[32m"
	ansiBlue  = "\x1b[34m"
)

var titleCaser = cases.Title(language.English)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and in-flight runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				state := "stopped"
				if status.Running {
					state = "running"
				}
				header := fmt.Sprintf("Daemon %s (pid %d)", state, status.PID)
				if colorize && status.Running {
					header = ansiGreen + header + ansiReset
				}
				fmt.Fprintln(out, header)
				fmt.Fprintf(out, "  Socket:   %s\n", status.SocketPath)
				fmt.Fprintf(out, "  Registry: %s\n", status.RegistryPath)
				fmt.Fprintf(out, "  Lock:     %s\n", status.LockPath)

				for _, dep := range status.Dependencies {
					if dep.Available {
						continue
					}
					note := "required"
					if dep.Optional {
						note = "optional"
					}
					fmt.Fprintf(out, "  Missing %s tool %s: %s\n", note, dep.Name, dep.Detail)
				}

				if len(status.Runs) == 0 {
					fmt.Fprintln(out, "No runs registered.")
					return nil
				}

				title := "Runs"
				if colorize {
					title = ansiBlue + title + ansiReset
				}
				fmt.Fprintln(out, title)
				rows := make([][]string, 0, len(status.Runs))
				for _, run := range status.Runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.SessionID,
						run.Window,
						titleCaser.String(run.Status),
						run.Message,
					})
				}
				fmt.Fprintln(out, renderRunsTable(rows))
				return nil
			})
		},
	}
}

var runsTableHeader = table.Row{"Run", "Session", "Window", "Status", "Message"}

// renderRunsTable lays the run rows out in a rounded go-pretty table. Rows
// shorter than the header are padded so a missing message never shifts
// columns.
func renderRunsTable(rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(runsTableHeader)
	for _, row := range rows {
		r := make(table.Row, len(runsTableHeader))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

func shortID(id string) string {
	if idx := strings.IndexByte(id, '-'); idx > 0 {
		return id[:idx]
	}
	return id
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
