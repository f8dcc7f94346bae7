package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dgallion1/paperdigest/internal/digest"
	"github.com/spf13/cobra"
)

func summarizeCmd(g *globalFlags) *cobra.Command {
	var title string
	var noExtract bool

	cmd := &cobra.Command{
		Use:   "summarize <file>",
		Short: "Summarize a paper and extract its key information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := g.service(cmd)
			if err != nil {
				return err
			}
			in, err := readInput(args[0], title)
			if err != nil {
				return err
			}
			in.SkipExtract = noExtract

			res, err := svc.Run(cmd.Context(), in, progressHooks(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			if res.Summary == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: summary generation produced no output")
			}
			return writeResult(cmd.OutOrStdout(), res, g.jsonOut, !noExtract)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "override the document title")
	cmd.Flags().BoolVar(&noExtract, "no-extract", false, "skip the key information section")
	return cmd
}

func extractCmd(g *globalFlags) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract main contributions, methodology and results only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := g.service(cmd)
			if err != nil {
				return err
			}
			in, err := readInput(args[0], title)
			if err != nil {
				return err
			}
			in.SkipSummary = true

			res, err := svc.Run(cmd.Context(), in, progressHooks(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			if g.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"title":    res.Title,
					"key_info": res.KeyInfo,
				})
			}
			_, err = io.WriteString(cmd.OutOrStdout(), renderKeyInfo(res.Title, res.KeyInfo))
			return err
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "override the document title")
	return cmd
}

func readInput(path, title string) (digest.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return digest.Input{}, fmt.Errorf("read %s: %w", path, err)
	}
	return digest.Input{Data: data, Filename: filepath.Base(path), Title: title}, nil
}

// progressHooks reports phases and reducer progress on w.
func progressHooks(w io.Writer) digest.Hooks {
	return digest.Hooks{
		OnPhase: func(p digest.Phase) {
			fmt.Fprintf(w, "[%s]\n", p)
		},
		OnProgress: func(msg string) {
			fmt.Fprintln(w, msg)
		},
	}
}

func writeResult(w io.Writer, res *digest.Result, asJSON, withKeyInfo bool) error {
	if asJSON {
		return writeJSON(w, res)
	}
	_, err := io.WriteString(w, renderMarkdown(res, withKeyInfo))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
