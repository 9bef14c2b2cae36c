package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentsJSON bool

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage ingested documents",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

func init() {
	documentsListCmd.Flags().BoolVar(&documentsJSON, "json", false, "output documents as JSON")
	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	docs, err := ingestionService.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if documentsJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested.")
		return nil
	}

	for _, doc := range docs {
		cmd.Printf("  %s  %s  (%d chunks, ingested %s)\n",
			doc.ID, doc.FileName, doc.ChunkCount, doc.IngestedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	id := args[0]
	if err := ingestionService.Delete(context.Background(), id); err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}

	cmd.Printf("Deleted %s\n", id)
	return nil
}
