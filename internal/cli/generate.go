package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wordmatch-service/internal/app"
	"wordmatch-service/internal/config"
	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/infra/gemini"
	"wordmatch-service/internal/infra/xlsx"
	"wordmatch-service/internal/logging"
)

// NewGenerateCmd drafts a set with Gemini.
func NewGenerateCmd(configPath *string) *cobra.Command {
	var (
		save bool
		out  string
	)
	cmd := &cobra.Command{
		Use:   "generate <word>...",
		Short: "Draft a matching set around seed words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.GenAI.APIKey == "" {
				return errors.New("GENAI_API_KEY is not set")
			}
			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			gen, err := gemini.NewGenerator(ctx, cfg.GenAI.APIKey, cfg.GenAI.Model, logger)
			if err != nil {
				return err
			}

			opts := []app.ServiceOption{app.WithLogger(logger), app.WithGenerator(gen)}
			var sets app.SetRepository
			if save {
				st, err := openStores(ctx, cfg, logger)
				if err != nil {
					return err
				}
				defer st.Close()
				sets = st.sets
				opts = append(opts, app.WithSetWriter(st.sets))
			} else {
				opts = append(opts, app.WithSetWriter(discardSets{}))
			}
			service := app.NewGameService(nil, sets, opts...)

			set, err := service.GenerateSet(ctx, args)
			if err != nil {
				return err
			}
			logger.Debug("generated", zap.String("set", set.ID))

			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				return xlsx.WriteSet(f, set)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(set)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "store the generated set")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the set to an xlsx workbook instead of stdout")
	return cmd
}

// discardSets accepts sets without storing them, for dry runs.
type discardSets struct{}

func (discardSets) SaveSet(context.Context, domain.MatchingSet) error { return nil }
