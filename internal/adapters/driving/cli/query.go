package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rackmesa/ragstack/internal/core/domain"
)

var (
	queryTopK     int
	queryProvider string
	queryJSON     bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about the ingested documentation",
	Long: `Embeds the question, retrieves the most similar chunks and asks the
configured AI provider to answer from them. The answer cites which files and
chunks it drew on.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (default 5)")
	queryCmd.Flags().StringVarP(&queryProvider, "provider", "p", "", "generation provider to use (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := args[0]

	if queryService == nil {
		return errors.New("query service not configured")
	}

	answer, err := queryService.Answer(context.Background(), question, domain.QueryOptions{
		TopK:     queryTopK,
		Provider: queryProvider,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Answer)

	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, source := range answer.Sources {
			cmd.Printf("  [%d] %s (chunk %d)\n", i+1, source.FileName, source.ChunkIndex)
		}
	}
	if answer.ProviderUsed != "" {
		cmd.Println()
		cmd.Printf("Answered by %s using %d chunks\n", answer.ProviderUsed, answer.ChunksUsed)
	}
	return nil
}
