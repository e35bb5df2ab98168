package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wordmatch-service/internal/config"
	"wordmatch-service/internal/game"
	"wordmatch-service/internal/infra/xlsx"
	"wordmatch-service/internal/logging"
	"wordmatch-service/internal/lookup"
)

// NewImportCmd loads xlsx workbooks into Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	var (
		setID   string
		title   string
		lexicon string
	)
	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import a matching set or lexicon rows from an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if lexicon != "" {
				return importLexicon(cmd.Context(), cfg, logger, args[0], lexicon)
			}
			return importSet(cmd.Context(), cfg, logger, args[0], setID, title)
		},
	}
	cmd.Flags().StringVar(&setID, "set-id", "", "id of the imported set (default: file name)")
	cmd.Flags().StringVar(&title, "title", "", "title of the imported set")
	cmd.Flags().StringVar(&lexicon, "lexicon", "", "import lexicon rows of this kind (word or grammar) instead of a set")
	return cmd
}

func importSet(ctx context.Context, cfg config.Config, logger *zap.Logger, path, setID, title string) error {
	if setID == "" {
		setID = setIDFromPath(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	set, err := xlsx.ReadSet(f, setID)
	if err != nil {
		return err
	}
	if title != "" {
		set.Title = title
	}
	if err := game.ValidateItems(set.Items); err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()
	if st.pgSets == nil {
		logger.Warn("postgres not configured; the set only lives until exit")
	}
	if err := st.sets.SaveSet(ctx, set); err != nil {
		return err
	}
	logger.Info("set imported", zap.String("set", set.ID), zap.Int("items", len(set.Items)))
	return nil
}

func importLexicon(ctx context.Context, cfg config.Config, logger *zap.Logger, path, kind string) error {
	if kind != lookup.TypeWord && kind != lookup.TypeGrammar {
		return fmt.Errorf("unknown lexicon kind %q", kind)
	}
	entries, err := readLexiconFile(path, kind)
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()
	if st.pgLex == nil {
		return errors.New("importing a lexicon requires postgres")
	}
	if err := st.pgLex.InsertEntries(ctx, entries); err != nil {
		return err
	}
	logger.Info("lexicon imported", zap.String("kind", kind), zap.Int("entries", len(entries)))
	return nil
}
