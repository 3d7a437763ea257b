package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ToxPredict/internal/app"
	"github.com/turtacn/ToxPredict/internal/application/prediction"
	"github.com/turtacn/ToxPredict/internal/config"
	"github.com/turtacn/ToxPredict/internal/domain/exposure"
)

// predictFlags maps exposure keys to their command-line flag names.
var predictFlags = []struct {
	key   string
	flag  string
	usage string
}{
	{exposure.KeyTemperature, "temperature", "water temperature (°C)"},
	{exposure.KeyLight, "light", "light intensity (lux)"},
	{exposure.KeyTime, "time", "exposure time (d)"},
	{exposure.KeyConcentration, "concentration", "PFAS concentration (μg/L)"},
	{exposure.KeySpecies, "species", "test species, e.g. \"Daphnia magna\""},
	{exposure.KeyHabitat, "habitat", "habitat, e.g. Freshwater"},
}

func newPredictCmd() *cobra.Command {
	var (
		smiles string
		bundle string
		values = make(map[string]*string, len(predictFlags))
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict toxicity for one structure and exposure scenario",
		Example: `  toxpredict predict --bundle ./artifacts --smiles "OC(=O)C(F)(F)F" \
    --temperature 25 --light 1000 --time 7 --concentration 10 \
    --species "Daphnia magna" --habitat Freshwater`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			useBundleDir(cliCtx, bundle)

			ctx, cancel := cliCtx.operationContext(cmd)
			defer cancel()

			cfg := cliCtx.Config
			std := app.NewStandardizer(cfg)
			src, client, err := app.NewSource(cfg, cliCtx.Logger)
			if err != nil {
				return err
			}
			if client != nil {
				defer client.Close()
			}
			b, err := app.LoadBundle(ctx, cfg, src, std, cliCtx.Logger, nil)
			if err != nil {
				return err
			}
			svc := prediction.NewService(b, std, nil, nil, cliCtx.Logger, prediction.ServiceConfig{})

			inputs := make(map[string]any, len(predictFlags))
			for _, f := range predictFlags {
				if cmd.Flags().Changed(f.flag) {
					inputs[f.key] = *values[f.key]
				}
			}
			res, err := svc.Predict(ctx, &prediction.Request{SMILES: strings.TrimSpace(smiles), Inputs: inputs})
			if err != nil {
				return err
			}
			return PrintResult(cmd, predictionView{InputSMILES: smiles, Result: res})
		},
	}
	cmd.Flags().StringVarP(&smiles, "smiles", "s", "", "input structure (SMILES)")
	cmd.Flags().StringVar(&bundle, "bundle", "", "local bundle directory (overrides the configured source)")
	for _, f := range predictFlags {
		values[f.key] = cmd.Flags().String(f.flag, "", f.usage)
	}
	_ = cmd.MarkFlagRequired("smiles")
	return cmd
}

// useBundleDir points the config at a local bundle directory when dir is set.
func useBundleDir(cliCtx *CLIContext, dir string) {
	if dir == "" {
		return
	}
	cliCtx.Config.Artifacts.Source = config.SourceFile
	cliCtx.Config.Artifacts.Path = dir
}

// predictionView is the printable prediction outcome.
type predictionView struct {
	InputSMILES string `json:"input_smiles"`
	*prediction.Result
}

func (v predictionView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Prediction:          %.4f\n", v.Prediction)
	fmt.Fprintf(&sb, "Applicability:       %s\n", colorizeStatus(v.ADStatus))
	if v.ADMessage != v.ADStatus {
		for _, reason := range strings.Split(v.ADMessage, "; ") {
			fmt.Fprintf(&sb, "  - %s\n", reason)
		}
	}
	fmt.Fprintf(&sb, "Max similarity:      %.3f\n", v.Similarity)
	fmt.Fprintf(&sb, "Standardized SMILES: %s", v.StandardizedSMILES)
	return sb.String()
}

func (v predictionView) TableHeaders() []string {
	return []string{"Prediction", "AD Status", "Similarity", "Standardized SMILES", "AD Message"}
}

func (v predictionView) TableRows() [][]string {
	return [][]string{{
		fmt.Sprintf("%.4f", v.Prediction),
		colorizeStatus(v.ADStatus),
		fmt.Sprintf("%.3f", v.Similarity),
		truncateString(v.StandardizedSMILES, 60),
		v.ADMessage,
	}}
}

//Personal.AI order the ending
