package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"depletions/storage"

	"github.com/spf13/cobra"
)

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

const (
	deleteScopeFile        = "file"
	deleteScopeWorkingList = "working-list"
	deleteScopeCatalog     = "catalog"
	deleteScopeSubmitted   = "submitted"
	deleteScopeAll         = "all"
)

var deleteScope string

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the database file or clear part of it",
	Long: `Destructive database cleanup command.

--scope selects what is removed:
  file          the complete SQLite file (default)
  working-list  pending depletions and the validated account
  catalog       products, sellers, accounts and movement types
  submitted     depletions already sent to the local store
  all           every table, keeping the file and its schema

Before deletion, an interactive security prompt requires typing exactly "Y".`,
	Example: `
  # Delete the complete SQLite file
  depletions delete --db ./depletions.db

  # Drop the pending working list but keep the catalog
  depletions delete --scope working-list
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := deleteTarget(deleteScope, dbPath)
		if err != nil {
			return err
		}

		confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, target)
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("delete aborted: confirmation was not 'Y'")
		}

		if deleteScope == deleteScopeFile {
			if err := removeDatabaseFile(dbPath); err != nil {
				return err
			}
			fmt.Printf("Deleted database file: %s\n", dbPath)
			return nil
		}

		deleted, err := clearDatabaseScope(dbPath, deleteScope)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d rows (%s) from %s\n", deleted, deleteScope, dbPath)
		return nil
	},
}

func init() {
	deleteCmd.Flags().StringVar(&deleteScope, "scope", deleteScopeFile, "What to delete: file, working-list, catalog, submitted, all")
	rootCmd.AddCommand(deleteCmd)
}

func deleteTarget(scope, path string) (string, error) {
	switch scope {
	case deleteScopeFile:
		return fmt.Sprintf("database file %q", path), nil
	case deleteScopeWorkingList:
		return fmt.Sprintf("the working list in %q", path), nil
	case deleteScopeCatalog:
		return fmt.Sprintf("the catalog in %q", path), nil
	case deleteScopeSubmitted:
		return fmt.Sprintf("submitted depletions in %q", path), nil
	case deleteScopeAll:
		return fmt.Sprintf("every row in %q", path), nil
	default:
		return "", fmt.Errorf("unknown delete scope %q (use file, working-list, catalog, submitted, all)", scope)
	}
}

// clearDatabaseScope empties the tables behind scope and keeps the file.
func clearDatabaseScope(path, scope string) (int64, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("database file not found: %s", path)
		}
		return 0, fmt.Errorf("stat database file: %w", err)
	}

	store, err := storage.OpenSQLite(path)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	switch scope {
	case deleteScopeWorkingList:
		return store.DeleteWorkingList()
	case deleteScopeCatalog:
		return store.DeleteCatalog()
	case deleteScopeSubmitted:
		return store.DeleteSubmitted()
	case deleteScopeAll:
		return store.DeleteAll()
	default:
		return 0, fmt.Errorf("unknown delete scope %q", scope)
	}
}

func confirmDeletePrompt(input io.Reader, output io.Writer, target string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Delete %s? Type Y to confirm: ", target); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

func removeDatabaseFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("database file not found: %s", path)
		}
		return fmt.Errorf("stat database file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("database path is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete database file: %w", err)
	}
	return nil
}
