package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"marker-migrate/internal/imagemeta"
	"marker-migrate/internal/recordio"
	"marker-migrate/internal/transform"
	"marker-migrate/pkg/geometry"
)

var (
	applyPairs    string
	applyMatrix   string
	applyOut      string
	applyInvert   bool
	applySrcImage string
	applyDstImage string
)

var applyCmd = &cobra.Command{
	Use:   "apply <set.json>",
	Short: "Transform a record set's marker coordinates",
	Long: `Applies an affine transform to every marker in the record set, writing
the transformed set to --out. The transform comes from either a saved
transform file (--matrix) or a correspondence-pair file to fit on the
fly (--pairs).

When both --src-image and --dst-image are given, marker coordinates are
treated as normalized (0-1): they are scaled to source-image pixels
before the transform and back to the destination image's normalized
space afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyPairs, "pairs", "", "correspondence-pair file to fit from")
	applyCmd.Flags().StringVar(&applyMatrix, "matrix", "", "saved transform file")
	applyCmd.Flags().StringVar(&applyOut, "out", "", "output file (required)")
	applyCmd.Flags().BoolVar(&applyInvert, "invert", false, "apply the inverse transform")
	applyCmd.Flags().StringVar(&applySrcImage, "src-image", "", "source image for normalized coordinates")
	applyCmd.Flags().StringVar(&applyDstImage, "dst-image", "", "destination image for normalized coordinates")
	applyCmd.MarkFlagsOneRequired("pairs", "matrix")
	applyCmd.MarkFlagsMutuallyExclusive("pairs", "matrix")
	_ = applyCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	if (applySrcImage == "") != (applyDstImage == "") {
		return fmt.Errorf("--src-image and --dst-image must be given together")
	}

	rs, err := recordio.LoadSet(args[0])
	if err != nil {
		return err
	}

	var tr geometry.AffineTransform
	if applyMatrix != "" {
		if tr, err = recordio.LoadTransform(applyMatrix); err != nil {
			return err
		}
	} else {
		pairs, err := recordio.LoadPairs(applyPairs)
		if err != nil {
			return err
		}
		if tr, err = transform.Fit(pairs); err != nil {
			return err
		}
	}
	if applyInvert {
		if tr, err = transform.Invert(tr); err != nil {
			return err
		}
	}

	normalized := applySrcImage != ""
	if normalized {
		w, h, err := imagemeta.Dimensions(applySrcImage)
		if err != nil {
			return err
		}
		rs = imagemeta.Denormalize(rs, w, h)
	}

	rs = rs.ApplyTransform(tr)

	if normalized {
		w, h, err := imagemeta.Dimensions(applyDstImage)
		if err != nil {
			return err
		}
		if rs, err = imagemeta.Normalize(rs, w, h); err != nil {
			return err
		}
	}

	if err := recordio.SaveSet(applyOut, "", rs); err != nil {
		return err
	}
	cmd.Printf("Transformed %d markers -> %s\n", len(rs.Markers), applyOut)
	return nil
}
