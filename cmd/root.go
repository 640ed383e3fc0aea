package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/config"
)

func NewRootCmd() *cobra.Command {
	v := config.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "pubdatecheck",
		Short: "Cross-check printed publication dates of newspaper pages against their metadata",
		Long: `pubdatecheck audits digitized newspaper batches.

It finds the publication date printed on each page in the ALTO OCR text, scores the
candidates by where they sit on the page, and compares the best ones with the date
recorded in the METS/MODS metadata. Pages whose dates disagree by a small amount are
reported as likely metadata errors.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	cmd.PersistentFlags().String("log", "", "Log file (default logs/publicatiedatumcontrole.log)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose logging")
	bindFlag(v, "log_file", cmd.PersistentFlags().Lookup("log"))
	bindFlag(v, "verbose", cmd.PersistentFlags().Lookup("verbose"))

	cmd.AddCommand(newCheckCmd(v, &configFile))
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
