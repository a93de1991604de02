package main

import (
	"github.com/spf13/cobra"

	"github.com/jayantk/jklol-sub002/arith"
	"github.com/jayantk/jklol-sub002/config"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath  string
	lexiconPath string
}

func newRootCmd() *cobra.Command {
	var gf globalFlags

	root := &cobra.Command{
		Use:           "gparse",
		Short:         "Incremental grounded semantic parser",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&gf.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&gf.lexiconPath, "lexicon", "", "arith lexicon file (default: built-in)")

	root.AddCommand(
		newParseCmd(&gf),
		newLexiconCmd(&gf),
		newConfigCmd(&gf),
	)
	return root
}

// load reads the config and applies the global flag overrides.
func (gf *globalFlags) load() (*config.Config, error) {
	cfg, err := config.Load(gf.configPath)
	if err != nil {
		return nil, err
	}
	if gf.lexiconPath != "" {
		cfg.Lexicon = gf.lexiconPath
	}
	return cfg, nil
}

func loadLexicon(cfg *config.Config) (*arith.Lexicon, error) {
	if cfg.Lexicon == "" {
		return arith.DefaultLexicon(), nil
	}
	return arith.LoadLexicon(cfg.Lexicon)
}

func newLexiconCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lexicon",
		Short: "Print the active lexicon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := gf.load()
			if err != nil {
				return err
			}
			lex, err := loadLexicon(cfg)
			if err != nil {
				return err
			}
			data, err := lex.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := gf.load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
