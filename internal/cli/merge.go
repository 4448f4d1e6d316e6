package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"marker-migrate/internal/reconcile"
	"marker-migrate/internal/recordio"
	"marker-migrate/internal/transform"
	"marker-migrate/internal/validate"
)

// mergeFlags carries the duplicate-detection flags shared by merge and
// preview. Each command registers its own instance so values don't leak
// between commands.
type mergeFlags struct {
	strategy           string
	tolerance          float64
	photoThreshold     float64
	keepBothPhotos     bool
	preserveTimestamps bool
	fromFit            string
}

func (f *mergeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "duplicate strategy: none, label, photos, coordinates, smart")
	cmd.Flags().Float64Var(&f.tolerance, "tolerance", 0, "coordinate tolerance in pixels")
	cmd.Flags().Float64Var(&f.photoThreshold, "photo-threshold", 0, "shared-filename fraction for photo matching")
	cmd.Flags().BoolVar(&f.keepBothPhotos, "keep-both-photos", false, "keep colliding photos instead of skipping them")
	cmd.Flags().BoolVar(&f.preserveTimestamps, "preserve-timestamps", false, "do not stamp merge time on touched markers")
	cmd.Flags().StringVar(&f.fromFit, "from-fit", "", "derive tolerance from a correspondence-pair file (rmse x 2.5)")
}

// options builds merge options from config defaults overlaid with flags.
// --from-fit wins over --tolerance, which wins over the config default.
func (f *mergeFlags) options() (reconcile.Options, error) {
	opts := reconcile.DefaultOptions()
	opts.Strategy = reconcile.Strategy(cfg.Strategy)
	opts.CoordinateTolerance = cfg.CoordinateTolerance
	opts.PhotoMatchThreshold = cfg.PhotoMatchThreshold
	opts.PhotoConflicts = reconcile.PhotoConflictPolicy(cfg.PhotoConflicts)

	if f.strategy != "" {
		opts.Strategy = reconcile.Strategy(f.strategy)
	}
	if f.tolerance > 0 {
		opts.CoordinateTolerance = f.tolerance
	}
	if f.photoThreshold > 0 {
		opts.PhotoMatchThreshold = f.photoThreshold
	}
	if f.keepBothPhotos {
		opts.PhotoConflicts = reconcile.PhotoConflictKeepBoth
	}
	opts.PreserveTimestamps = f.preserveTimestamps

	if f.fromFit != "" {
		pairs, err := recordio.LoadPairs(f.fromFit)
		if err != nil {
			return reconcile.Options{}, err
		}
		tr, err := transform.Fit(pairs)
		if err != nil {
			return reconcile.Options{}, err
		}
		opts.CoordinateTolerance = validate.Score(pairs, tr).RecommendedTolerance()
	}

	return opts, opts.Validate()
}

var (
	mergeOpts mergeFlags
	mergeOut  string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <target.json> <source.json>",
	Short: "Merge a transformed source set into a target set",
	Long: `Classifies each source marker as new or as a duplicate of a target
marker using the selected strategy, then writes the combined set to
--out. Target markers keep their ids; duplicates union their photos;
new markers get fresh ids.`,
	Args: cobra.ExactArgs(2),
	RunE: runMerge,
}

func init() {
	mergeOpts.register(mergeCmd)
	mergeCmd.Flags().StringVar(&mergeOut, "out", "", "output file (required)")
	_ = mergeCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	target, err := recordio.LoadSet(args[0])
	if err != nil {
		return err
	}
	source, err := recordio.LoadSet(args[1])
	if err != nil {
		return err
	}

	opts, err := mergeOpts.options()
	if err != nil {
		return err
	}

	res, err := reconcile.Merge(target, source, opts)
	if err != nil {
		return err
	}

	if err := recordio.SaveSet(mergeOut, "", res.Set); err != nil {
		return err
	}

	printStats(cmd, res.Stats, opts)
	cmd.Printf("Wrote %d markers, %d photos -> %s\n",
		len(res.Set.Markers), len(res.Set.Photos), mergeOut)
	return nil
}

func printStats(cmd *cobra.Command, stats reconcile.Stats, opts reconcile.Options) {
	cmd.Printf("Strategy: %s", opts.Strategy)
	if opts.Strategy == reconcile.StrategyCoordinates || opts.Strategy == reconcile.StrategySmart {
		cmd.Printf(" (tolerance %.2f px)", opts.CoordinateTolerance)
	}
	cmd.Println()
	cmd.Printf("New markers:       %d\n", stats.NewMarkers)
	cmd.Printf("Duplicate markers: %d\n", stats.DuplicateMarkers)
	cmd.Printf("New photos:        %d\n", stats.NewPhotos)
}

var (
	previewOpts mergeFlags
	previewJSON bool
)

var previewCmd = &cobra.Command{
	Use:   "preview <target.json> <source.json>",
	Short: "Dry-run a merge and print statistics only",
	Long: `Runs the same duplicate classification as merge but writes nothing,
printing the counts a real merge would produce.`,
	Args: cobra.ExactArgs(2),
	RunE: runPreview,
}

func init() {
	previewOpts.register(previewCmd)
	previewCmd.Flags().BoolVar(&previewJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	target, err := recordio.LoadSet(args[0])
	if err != nil {
		return err
	}
	source, err := recordio.LoadSet(args[1])
	if err != nil {
		return err
	}

	opts, err := previewOpts.options()
	if err != nil {
		return err
	}

	stats, err := reconcile.Statistics(target, source, opts)
	if err != nil {
		return err
	}

	if previewJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	printStats(cmd, stats, opts)
	if stats.DuplicateMarkers > 0 {
		cmd.Println("Run merge to fold duplicates into the target set.")
	}
	return nil
}
