package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/teamconstructor/internal/config"
	"github.com/ZanzyTHEbar/teamconstructor/internal/database"
	"github.com/ZanzyTHEbar/teamconstructor/internal/encoding"
	"github.com/ZanzyTHEbar/teamconstructor/internal/export"
	"github.com/ZanzyTHEbar/teamconstructor/internal/journal"
	"github.com/ZanzyTHEbar/teamconstructor/internal/psychology"
)

// options are the scoring knobs shared by every command. Flags left unset
// fall back to the environment configuration.
type options struct {
	diff      float64
	threshold float64
	dataDir   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "cti",
		Short:         "Score CTI questionnaires, pairs and teams",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.applyConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.Float64Var(&opts.diff, "diff", psychology.DefaultDiff, "closeness threshold for the dominant lists")
	flags.Float64Var(&opts.threshold, "threshold", psychology.TestThreshold, "main octant value a passed test must exceed")
	flags.StringVar(&opts.dataDir, "data-dir", "./data", "directory with the results database and staff journal")

	rootCmd.AddCommand(
		newAnswersCmd(opts),
		newScoreCmd(opts),
		newPairCmd(),
		newTeamCmd(),
		newEncodeCmd(),
		newDecodeCmd(),
		newExportCmd(opts),
		newJournalCmd(opts),
		newPurgeCmd(opts),
	)
	return rootCmd
}

func (o *options) applyConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("diff") {
		o.diff = cfg.Diff
	}
	if !flags.Changed("threshold") {
		o.threshold = cfg.TestThreshold
	}
	if !flags.Changed("data-dir") {
		o.dataDir = cfg.DataDir
	}
	return nil
}

func newAnswersCmd(opts *options) *cobra.Command {
	var personalInfo []int

	cmd := &cobra.Command{
		Use:   "answers [file]",
		Short: "Reduce a JSON answer list (75 answers) and score it",
		Long:  "Reads [{\"id\":...,\"value\":...}] from the file, or from stdin when the file is - or omitted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			raw, err := readInput(cmd, path)
			if err != nil {
				return err
			}

			var answers []psychology.RawAnswer
			if err := json.Unmarshal(raw, &answers); err != nil {
				return fmt.Errorf("parse answers: %w", err)
			}
			if idx := psychology.FirstUnanswered(answers); idx >= 0 {
				return fmt.Errorf("question %d is not answered", idx+1)
			}
			matrix, err := psychology.ReduceAnswers(answers)
			if err != nil {
				return err
			}

			out := map[string]interface{}{
				"matrix": matrix,
				"result": psychology.NewUserResult(matrix, opts.diff),
				"passed": psychology.IsTestPassed(matrix, opts.threshold),
			}
			if len(personalInfo) > 0 {
				encoded, err := encoding.Encode(psychology.DecodedData{PersonalInfo: personalInfo, Matrix: matrix})
				if err != nil {
					return err
				}
				out["encoded"] = encoded
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().IntSliceVar(&personalInfo, "personal-info", nil, "personal info digits to encode with the matrix")
	return cmd
}

func newScoreCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "score <matrix-json|payload>",
		Short: "Score one subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseSubject(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]interface{}{
				"result": psychology.NewUserResult(data.Matrix, opts.diff),
				"passed": psychology.IsTestPassed(data.Matrix, opts.threshold),
			})
		},
	}
}

func newPairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pair <partner1> <partner2>",
		Short: "Compare two subjects",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err := parseSubject(args[0])
			if err != nil {
				return fmt.Errorf("partner1: %w", err)
			}
			second, err := parseSubject(args[1])
			if err != nil {
				return fmt.Errorf("partner2: %w", err)
			}
			return printJSON(cmd, psychology.NewPair(first.Matrix, second.Matrix).Summary())
		},
	}
}

func newTeamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "team <member>...",
		Short: "Analyze a team of subjects",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matrices := make([]psychology.Matrix, 0, len(args))
			for i, arg := range args {
				data, err := parseSubject(arg)
				if err != nil {
					return fmt.Errorf("member %d: %w", i+1, err)
				}
				matrices = append(matrices, data.Matrix)
			}

			team, err := psychology.NewTeam(matrices)
			if err != nil {
				return err
			}
			return printJSON(cmd, team.Summary())
		},
	}
}

func newEncodeCmd() *cobra.Command {
	var personalInfo []int

	cmd := &cobra.Command{
		Use:   "encode <matrix-json>",
		Short: "Build the transport payload for a matrix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var matrix psychology.Matrix
			if err := json.Unmarshal([]byte(args[0]), &matrix); err != nil {
				return err
			}
			data := psychology.DecodedData{PersonalInfo: personalInfo, Matrix: matrix}

			encoded, err := encoding.Encode(data)
			if err != nil {
				return err
			}
			encodedURL, err := encoding.EncodeForURL(data)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{"encoded": encoded, "encodedURL": encodedURL})
		},
	}
	cmd.Flags().IntSliceVar(&personalInfo, "personal-info", nil, "personal info digits (required)")
	_ = cmd.MarkFlagRequired("personal-info")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <payload>",
		Short: "Decode a transport payload; invalid input prints nulls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, encoding.Decode(args[0]))
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var out string
	var limit int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored results to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, closeDB, err := opts.openResults()
			if err != nil {
				return err
			}
			defer closeDB()

			listing, err := results.ListDecoded(cmd.Context(), limit, 0)
			if err != nil {
				return err
			}
			if err := export.WriteFile(out, listing); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d results to %s\n", len(listing), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "results.xlsx", "output workbook")
	cmd.Flags().IntVar(&limit, "limit", database.MaxPageSize, "maximum number of results, newest first")
	return cmd
}

func newJournalCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "journal",
		Short: "Print the staff journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			staff, err := journal.New(opts.dataDir)
			if err != nil {
				return err
			}
			records, err := staff.Records()
			if err != nil {
				return err
			}
			return printJSON(cmd, records)
		},
	}
}

func newPurgeCmd(opts *options) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete stored results older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}
			results, closeDB, err := opts.openResults()
			if err != nil {
				return err
			}
			defer closeDB()

			purged, err := results.Purge(cmd.Context(), time.Duration(days)*24*time.Hour)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d results older than %d days\n", purged, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 365, "retention period in days")
	return cmd
}

func (o *options) openResults() (*database.ResultService, func(), error) {
	db, err := database.NewDB(o.dataDir)
	if err != nil {
		return nil, nil, err
	}
	service := database.NewResultService(database.NewRepository(db), o.threshold, o.diff)
	return service, func() { _ = db.Close() }, nil
}

// parseSubject accepts a matrix as JSON or a transport payload
func parseSubject(arg string) (psychology.DecodedData, error) {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "[[") {
		var matrix psychology.Matrix
		if err := json.Unmarshal([]byte(arg), &matrix); err != nil {
			return psychology.DecodedData{}, err
		}
		return psychology.DecodedData{Matrix: matrix}, nil
	}

	payload := encoding.Decode(arg)
	if !payload.Valid() {
		return psychology.DecodedData{}, fmt.Errorf("neither a matrix nor a valid payload: %q", arg)
	}
	return *payload.Data, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
