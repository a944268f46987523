package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"depletions/config"
	"depletions/directory"
	"depletions/session"
	"depletions/storage"
)

const directoryUserAgent = "depletions-cli/1.0"

// app bundles the state most commands share.
type app struct {
	cfg     *config.Config
	store   *storage.SQLiteStore
	dir     directory.Directory
	session *session.Session
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, err
	}

	store, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, store: store, dir: store}
	if cfg.Directory.Mode == config.DirectoryModeHTTP {
		client, err := newDirectoryClient(cfg.Directory)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		a.dir = client
	}

	a.session = session.New(a.dir, sessionOptions(cfg))
	accountID, records, err := store.LoadWorkingList()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	a.session.Restore(accountID, records)

	zerolog.Ctx(ctx).Debug().
		Str("mode", cfg.Directory.Mode).
		Str("db", dbPath).
		Int("records", len(records)).
		Msg("working list restored")
	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// save persists the working list after a mutating command.
func (a *app) save() error {
	if err := a.store.SaveWorkingList(a.session.AccountID(), a.session.Records()); err != nil {
		return fmt.Errorf("save working list: %w", err)
	}
	return nil
}

func newDirectoryClient(cfg config.DirectoryConfig) (*directory.HTTPClient, error) {
	return directory.NewClient(directory.ClientConfig{
		BaseURL:   cfg.URL,
		Token:     cfg.Token,
		UserAgent: directoryUserAgent,
		Timeout:   cfg.Timeout,
	})
}

func sessionOptions(cfg *config.Config) session.Options {
	return session.Options{
		Columns:          cfg.Import.Columns,
		QuantityMin:      cfg.Import.QuantityMin,
		QuantityMax:      cfg.Import.QuantityMax,
		BlockInvalidType: cfg.Import.BlockInvalidType,
		BatchSize:        cfg.Submit.BatchSize,
	}
}

// parseAssignments splits repeated key=value flags.
func parseAssignments(values []string) ([][2]string, error) {
	out := make([][2]string, 0, len(values))
	for _, value := range values {
		key, val, ok := strings.Cut(value, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected key=value", value)
		}
		out = append(out, [2]string{key, strings.TrimSpace(val)})
	}
	return out, nil
}
