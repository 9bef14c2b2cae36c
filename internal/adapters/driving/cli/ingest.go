package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rackmesa/ragstack/internal/logger"
)

// ingestExtensions lists the file types picked up from a directory.
var ingestExtensions = map[string]bool{
	".md":  true,
	".txt": true,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest a documentation file or directory",
	Long: `Splits the given file into chunks, embeds them and stores them for
retrieval. Pass a directory to ingest every .md and .txt file in it,
recursively. Files already ingested (by file name) are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	ctx := context.Background()
	if !info.IsDir() {
		return ingestFile(ctx, cmd, path)
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories like .git.
			if strings.HasPrefix(d.Name(), ".") && p != path {
				return filepath.SkipDir
			}
			return nil
		}
		if ingestExtensions[strings.ToLower(filepath.Ext(p))] {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", path, err)
	}

	if len(files) == 0 {
		cmd.Println("No .md or .txt files found.")
		return nil
	}

	var failed int
	for _, file := range files {
		if err := ingestFile(ctx, cmd, file); err != nil {
			failed++
			cmd.PrintErrf("  %s: %v\n", file, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func ingestFile(ctx context.Context, cmd *cobra.Command, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	fileName := filepath.Base(path)
	logger.Debug("ingesting %s (%d bytes)", fileName, len(content))

	result, err := ingestionService.Ingest(ctx, fileName, path, string(content))
	if err != nil {
		return err
	}

	if result.AlreadyExisted {
		cmd.Printf("Skipped %s (already ingested)\n", result.FileName)
	} else {
		cmd.Printf("Ingested %s: %d chunks\n", result.FileName, result.ChunkCount)
	}
	return nil
}
