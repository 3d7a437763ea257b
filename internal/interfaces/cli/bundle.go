package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ToxPredict/internal/app"
	"github.com/turtacn/ToxPredict/internal/application/prediction"
	"github.com/turtacn/ToxPredict/internal/config"
	"github.com/turtacn/ToxPredict/internal/infrastructure/artifacts"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/internal/infrastructure/storage/minio"
)

// objectStore opens the configured object storage.  Tests replace it.
var objectStore = func(cfg *config.Config, logger logging.Logger) (minio.ObjectStorageRepository, string, func() error, error) {
	client, err := app.NewMinIOClient(cfg, logger)
	if err != nil {
		return nil, "", nil, err
	}
	return minio.NewMinIORepository(client, logger), client.Bucket(), client.Close, nil
}

func newBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Inspect and publish artifact bundles",
	}
	cmd.AddCommand(newBundleCheckCmd(), newBundlePushCmd())
	return cmd
}

func newBundleCheckCmd() *cobra.Command {
	var bundle string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load the configured bundle and report its consistency",
		Long: "Load the manifest, decode the model, fingerprint the reference corpus and\n" +
			"cross-check the feature layout against the model.  Exits non-zero on any inconsistency.",
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
			opts, err := svc.Options(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, bundleReport{BundleInfo: svc.Info(), Options: opts})
		},
	}
	cmd.Flags().StringVar(&bundle, "bundle", "", "local bundle directory (overrides the configured source)")
	return cmd
}

type bundleReport struct {
	*prediction.BundleInfo
	Options map[string][]string `json:"options"`
}

func (r bundleReport) optionFields() []string {
	fields := make([]string, 0, len(r.Options))
	for f := range r.Options {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (r bundleReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Bundle %s from %s: %s\n", r.Version, r.Source, colorizeStatus("Pass"))
	fmt.Fprintf(&sb, "  features:   %d\n", r.Features)
	fmt.Fprintf(&sb, "  trees:      %d\n", r.ModelTrees)
	fmt.Fprintf(&sb, "  corpus:     %d fingerprints\n", r.CorpusSize)
	fmt.Fprintf(&sb, "  threshold:  %.2f", r.Threshold)
	for _, f := range r.optionFields() {
		fmt.Fprintf(&sb, "\n  %s: %s", f, strings.Join(r.Options[f], ", "))
	}
	return sb.String()
}

func (r bundleReport) TableHeaders() []string { return []string{"Property", "Value"} }

func (r bundleReport) TableRows() [][]string {
	rows := [][]string{
		{"version", r.Version},
		{"source", r.Source},
		{"features", fmt.Sprint(r.Features)},
		{"trees", fmt.Sprint(r.ModelTrees)},
		{"corpus", fmt.Sprint(r.CorpusSize)},
		{"threshold", fmt.Sprintf("%.2f", r.Threshold)},
	}
	for _, f := range r.optionFields() {
		rows = append(rows, []string{f, strings.Join(r.Options[f], ", ")})
	}
	return rows
}

func newBundlePushCmd() *cobra.Command {
	var (
		from   string
		prefix string
		verify bool
	)
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Upload a local bundle to the configured MinIO bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.operationContext(cmd)
			defer cancel()

			cfg := cliCtx.Config
			if prefix == "" && cfg.Artifacts.Source == config.SourceMinIO {
				prefix = cfg.Artifacts.Path
			}
			src := artifacts.FileSource{Dir: from}
			if verify {
				if _, err := app.LoadBundle(ctx, cfg, src, app.NewStandardizer(cfg), cliCtx.Logger, nil); err != nil {
					return err
				}
			}

			repo, bucket, closeFn, err := objectStore(cfg, cliCtx.Logger)
			if err != nil {
				return err
			}
			defer closeFn()

			keys, err := artifacts.Publish(ctx, src, cfg.Artifacts.Manifest, repo, bucket, prefix)
			if err != nil {
				return err
			}
			for _, k := range keys {
				cliCtx.Logger.Info("Uploaded bundle object", logging.String("bucket", bucket), logging.String("key", k))
			}
			PrintSuccess(cmd, fmt.Sprintf("published %d objects to s3://%s/%s", len(keys), bucket, strings.Trim(prefix, "/")))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "local bundle directory")
	cmd.Flags().StringVar(&prefix, "prefix", "", "object key prefix (default: artifacts.path when the source is minio)")
	cmd.Flags().BoolVar(&verify, "verify", true, "load the bundle locally before uploading")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

//Personal.AI order the ending
