package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wordmatch-service/internal/config"
	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/infra/xlsx"
	"wordmatch-service/internal/logging"
	"wordmatch-service/internal/tui"
)

// NewPlayCmd plays a set in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "play [set-id]",
		Short: "Play a matching set in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setID := "places"
			if len(args) == 1 {
				setID = args[0]
			}
			return runPlay(cmd.Context(), *configPath, setID, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "play a set straight from an xlsx workbook")
	return cmd
}

func runPlay(ctx context.Context, configPath, setID, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// The screen owns the terminal, so only warnings reach stderr.
	cfg.Logging.Level = "warn"
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	set, err := loadPlaySet(ctx, cfg, logger, setID, file)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	player, err := tui.NewPlayer(screen, set, logger)
	if err != nil {
		return err
	}
	return player.Run(ctx)
}

func loadPlaySet(ctx context.Context, cfg config.Config, logger *zap.Logger, setID, file string) (domain.MatchingSet, error) {
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return domain.MatchingSet{}, err
		}
		defer f.Close()
		return xlsx.ReadSet(f, setIDFromPath(file))
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return domain.MatchingSet{}, err
	}
	defer st.Close()
	set, err := st.sets.GetSet(ctx, setID)
	if err != nil {
		return domain.MatchingSet{}, fmt.Errorf("load set %s: %w", setID, err)
	}
	return set, nil
}
