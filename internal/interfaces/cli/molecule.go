package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ToxPredict/internal/app"
	"github.com/turtacn/ToxPredict/internal/application/molecule"
)

func moleculeService(cliCtx *CLIContext) molecule.Service {
	return molecule.NewService(app.NewStandardizer(cliCtx.Config), cliCtx.Logger)
}

func newStandardizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "standardize SMILES...",
		Short:   "Standardize structures (largest fragment, ionization rules, canonical SMILES)",
		Example: `  toxpredict standardize "OC(=O)C(F)(F)F.[Na+]" "CCO"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.operationContext(cmd)
			defer cancel()

			svc := moleculeService(cliCtx)
			out := make(structureList, 0, len(args))
			for _, smi := range args {
				s, err := svc.Standardize(ctx, smi)
				if err != nil {
					return err
				}
				out = append(out, s)
			}
			return PrintResult(cmd, out)
		},
	}
}

type structureList []*molecule.Structure

func (l structureList) String() string {
	lines := make([]string, len(l))
	for i, s := range l {
		lines[i] = s.StandardizedSMILES
	}
	return strings.Join(lines, "\n")
}

func (l structureList) TableHeaders() []string {
	return []string{"Input", "Standardized", "Formula", "Heavy Atoms", "Aromatic Rings"}
}

func (l structureList) TableRows() [][]string {
	rows := make([][]string, len(l))
	for i, s := range l {
		rows[i] = []string{
			truncateString(s.InputSMILES, 40),
			truncateString(s.StandardizedSMILES, 60),
			s.Formula,
			strconv.Itoa(s.HeavyAtoms),
			strconv.Itoa(s.AromaticRings),
		}
	}
	return rows
}

func newFingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint SMILES",
		Short: "Compute the 167-bit MACCS fingerprint of a standardized structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.operationContext(cmd)
			defer cancel()

			fp, err := moleculeService(cliCtx).Fingerprint(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, fingerprintView{fp})
		},
	}
}

type fingerprintView struct {
	*molecule.FingerprintResult
}

func (v fingerprintView) String() string {
	return fmt.Sprintf("%s\n%d bits set: %s", v.Bits, v.Count, joinInts(v.OnBits))
}

func (v fingerprintView) TableHeaders() []string {
	return []string{"Standardized", "Bits Set", "On Bits"}
}

func (v fingerprintView) TableRows() [][]string {
	return [][]string{{truncateString(v.StandardizedSMILES, 60), strconv.Itoa(v.Count), joinInts(v.OnBits)}}
}

func newSimilarityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "similarity QUERY REFERENCE...",
		Short: "Tanimoto similarity of MACCS fingerprints between a query and references",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.operationContext(cmd)
			defer cancel()

			res, err := moleculeService(cliCtx).Similarity(ctx, &molecule.SimilarityInput{Query: args[0], References: args[1:]})
			if err != nil {
				return err
			}
			return PrintResult(cmd, similarityView{References: args[1:], SimilarityResult: res})
		},
	}
}

type similarityView struct {
	References []string `json:"references"`
	*molecule.SimilarityResult
}

func (v similarityView) String() string {
	var sb strings.Builder
	for i, ref := range v.References {
		fmt.Fprintf(&sb, "%.4f  %s\n", v.Scores[i], ref)
	}
	fmt.Fprintf(&sb, "max   %.4f", v.Max)
	return sb.String()
}

func (v similarityView) TableHeaders() []string { return []string{"Reference", "Tanimoto"} }

func (v similarityView) TableRows() [][]string {
	rows := make([][]string, len(v.References))
	for i, ref := range v.References {
		rows[i] = []string{truncateString(ref, 60), fmt.Sprintf("%.4f", v.Scores[i])}
	}
	return rows
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

//Personal.AI order the ending
