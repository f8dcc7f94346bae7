package main

import (
	"fmt"
	"strings"

	"github.com/dgallion1/paperdigest/internal/app"
	"github.com/dgallion1/paperdigest/internal/chunker"
	"github.com/dgallion1/paperdigest/internal/digest"
	"github.com/dgallion1/paperdigest/internal/summarize"
	"github.com/spf13/cobra"
)

// chunksCmd needs no credentials: it never reaches the model.
func chunksCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chunks <file>",
		Short: "Show how a document would be chunked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			svc := digest.New(nil, app.DigestOptions(cfg), g.logger(cfg))

			in, err := readInput(args[0], "")
			if err != nil {
				return err
			}
			chunks, err := svc.Chunks(in.Data, in.Filename, 0)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if g.jsonOut {
				words := make([]int, len(chunks))
				for i, c := range chunks {
					words[i] = chunker.CountWords(c)
				}
				return writeJSON(out, map[string]any{
					"count":  len(chunks),
					"words":  words,
					"chunks": chunks,
				})
			}
			fmt.Fprintf(out, "%d chunks (max %d words each)\n", len(chunks), cfg.Summary.MaxWordsPerChunk)
			for i, c := range chunks {
				fmt.Fprintf(out, "  %3d: %d words, ~%d tokens  %s\n",
					i+1, chunker.CountWords(c), chunker.EstimateTokens(c), preview(c))
			}
			return nil
		},
	}
}

const previewBytes = 60

// preview flattens a chunk onto one line and shortens it.
func preview(chunk string) string {
	line := strings.Join(strings.Fields(chunk), " ")
	short := summarize.TruncateText(line, previewBytes)
	if short != line {
		short += " ..."
	}
	return short
}
