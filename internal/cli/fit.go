package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"marker-migrate/internal/imagemeta"
	"marker-migrate/internal/recordio"
	"marker-migrate/internal/transform"
	"marker-migrate/internal/validate"
	"marker-migrate/pkg/geometry"
)

var (
	fitJSON  bool
	fitImage string
	fitOut   string
)

var fitCmd = &cobra.Command{
	Use:   "fit <pairs.json>",
	Short: "Fit an affine transform from a correspondence-pair file",
	Long: `Fits a least-squares affine transform from the correspondence pairs in
the given file and prints the matrix together with a quality report:
residual error (RMSE), scale/shear/reflection anomalies, and a
point-distribution check. Needs at least 3 non-collinear pairs.`,
	Args: cobra.ExactArgs(1),
	RunE: runFit,
}

func init() {
	fitCmd.Flags().BoolVar(&fitJSON, "json", false, "output as JSON")
	fitCmd.Flags().StringVar(&fitImage, "image", "", "target image; its bounds anchor placement suggestions")
	fitCmd.Flags().StringVar(&fitOut, "out", "", "save the fitted matrix to a transform file")
	rootCmd.AddCommand(fitCmd)
}

type fitOutput struct {
	Matrix               geometry.AffineTransform `json:"matrix"`
	Report               validate.Report          `json:"report"`
	RecommendedTolerance float64                  `json:"recommended_tolerance"`
	Suggestions          []geometry.Point2D       `json:"suggestions,omitempty"`
}

func runFit(cmd *cobra.Command, args []string) error {
	pairs, err := recordio.LoadPairs(args[0])
	if err != nil {
		return err
	}

	tr, err := transform.Fit(pairs)
	if err != nil {
		return err
	}

	out := fitOutput{
		Matrix: tr,
		Report: validate.Score(pairs, tr),
	}
	out.RecommendedTolerance = out.Report.RecommendedTolerance()

	// Suggest extra correspondence points inside the target image when its
	// bounds are known and quadrants are empty.
	if fitImage != "" {
		w, h, err := imagemeta.Dimensions(fitImage)
		if err != nil {
			return err
		}
		targets := make([]geometry.Point2D, len(pairs))
		for i, p := range pairs {
			targets[i] = p.Target
		}
		out.Suggestions = validate.SuggestAdditionalPoints(targets,
			geometry.NewRect(0, 0, float64(w), float64(h)))
	}

	if fitOut != "" {
		if err := recordio.SaveTransform(fitOut, tr); err != nil {
			return err
		}
	}

	if fitJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	printFitReport(cmd, out)
	return nil
}

func printFitReport(cmd *cobra.Command, out fitOutput) {
	m := out.Matrix
	cmd.Printf("Matrix:  [%9.4f %9.4f %9.2f]\n", m.A, m.B, m.TX)
	cmd.Printf("         [%9.4f %9.4f %9.2f]\n", m.C, m.D, m.TY)
	cmd.Printf("RMSE:    %.3f px over %d pairs\n", out.Report.RMSE, out.Report.PairCount)
	cmd.Printf("Scale:   x=%.4f y=%.4f  shear=%.4f\n",
		out.Report.Anomalies.ScaleX, out.Report.Anomalies.ScaleY, out.Report.Anomalies.Shear)
	cmd.Printf("Recommended merge tolerance: %.2f px\n", out.RecommendedTolerance)

	for _, w := range out.Report.Anomalies.Warnings {
		cmd.Printf("warning: %s\n", w)
	}
	if !out.Report.Distribution.IsValid {
		cmd.Printf("warning: poor point distribution: %s\n", out.Report.Distribution.Reason)
	}
	for _, s := range out.Suggestions {
		cmd.Printf("suggestion: add a reference point near (%.0f, %.0f)\n", s.X, s.Y)
	}
}
