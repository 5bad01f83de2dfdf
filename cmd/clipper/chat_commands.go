package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipper/internal/ipc"
	"clipper/internal/runs"
)

const awaitStep = 2 * time.Second

func newSayCommand(ctx *commandContext) *cobra.Command {
	var sessionID string
	var wait bool

	cmd := &cobra.Command{
		Use:   "say [text...]",
		Short: "Send one line to a conversation session",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Say(sessionID, text)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, resp.Reply)
				if resp.RunID == "" {
					return nil
				}
				if !wait {
					fmt.Fprintf(out, "Run %s launched. Use --wait to block for the result.\n", resp.RunID)
					return nil
				}
				return awaitRun(cmd, client, resp.RunID)
			})
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "local", "Conversation session ID")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Block until the launched run finishes")
	return cmd
}

func newChatCommand(ctx *commandContext) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive conversation with the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				out := cmd.OutOrStdout()

				greeting, err := client.Say(sessionID, "")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, greeting.Reply)

				scanner := bufio.NewScanner(cmd.InOrStdin())
				for {
					fmt.Fprint(out, "> ")
					if !scanner.Scan() {
						return scanner.Err()
					}
					line := scanner.Text()
					if strings.TrimSpace(line) == "/quit" {
						return nil
					}
					resp, err := client.Say(sessionID, line)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, resp.Reply)
					if resp.RunID != "" {
						if err := awaitRun(cmd, client, resp.RunID); err != nil {
							return err
						}
					}
				}
			})
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "local", "Conversation session ID")
	return cmd
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Discard a session's collected request state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Cancel(sessionID)
				if err != nil {
					return err
				}
				if resp.Cancelled {
					fmt.Fprintln(cmd.OutOrStdout(), "Session cancelled.")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "No such session.")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "local", "Conversation session ID")
	return cmd
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Ask the daemon to shut down",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Stop(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Stop requested.")
				return nil
			})
		},
	}
}

// awaitRun polls the daemon until the run reaches a terminal status and
// prints its disposition.
func awaitRun(cmd *cobra.Command, client *ipc.Client, runID string) error {
	out := cmd.OutOrStdout()
	for {
		resp, err := client.Await(runID, awaitStep)
		if err != nil {
			return err
		}
		if !resp.Done {
			continue
		}
		if resp.Status == string(runs.StatusCompleted) {
			fmt.Fprintf(out, "%s (%s, %s)\n", resp.Message, resp.Destination, formatSize(resp.SizeBytes))
		} else {
			fmt.Fprintln(out, resp.Message)
		}
		return nil
	}
}

func formatSize(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return fmt.Sprintf("%.1f MiB", float64(n)/float64(mb))
	}
	return fmt.Sprintf("%d B", n)
}
