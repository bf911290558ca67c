package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lattice-search/vecbuild/internal/blobstore/s3"
	"github.com/lattice-search/vecbuild/internal/config"
	"github.com/lattice-search/vecbuild/internal/localbuild"
	"github.com/lattice-search/vecbuild/internal/telemetry"
	"github.com/lattice-search/vecbuild/pkg/buildclient"
	"github.com/lattice-search/vecbuild/pkg/eligibility"
	"github.com/lattice-search/vecbuild/pkg/orchestrator"
	"github.com/lattice-search/vecbuild/pkg/repository"
	"github.com/lattice-search/vecbuild/pkg/secret"
	"github.com/lattice-search/vecbuild/pkg/stats"
	"github.com/lattice-search/vecbuild/pkg/types"
	"github.com/lattice-search/vecbuild/pkg/vectorcursor"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an ANN index from a JSONL vector fixture",
	Long: `Reads a JSONL fixture of {"doc_id": <uint32>, "vector": [<float32>...]}
lines, constructs a SegmentBuildJob, and drives the orchestrator's
remote-build state machine against the endpoints configured in
vecbuild.yaml, falling back to a local brute-force build on failure.

Example:
  vecbuild build --input vectors.jsonl --output index.bin --segment seg-1 --field embedding --flush`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().String("input", "", "path to JSONL vector fixture (required)")
	buildCmd.Flags().String("output", "", "path to write the finished index artifact (required)")
	buildCmd.Flags().String("segment", "", "segment id this job builds for (required)")
	buildCmd.Flags().String("field", "", "vector field name this job builds for (required)")
	buildCmd.Flags().Bool("flush", false, "attribute this job to a flush operation (mutually exclusive with --merge)")
	buildCmd.Flags().Bool("merge", false, "attribute this job to a merge operation (mutually exclusive with --flush)")
	buildCmd.Flags().String("engine", "faiss", "target ANN engine name")
	buildCmd.Flags().String("space-type", "cosine", "index_parameters.space_type forwarded to the build service")
	buildCmd.Flags().String("algorithm", "hnsw", "index_parameters.algorithm forwarded to the build service")
	buildCmd.Flags().String("bucket", "", "S3 bucket backing the BlobRepository (required if remote_build.enabled)")
	buildCmd.Flags().String("region", "", "AWS region for the S3 BlobRepository")
	buildCmd.Flags().Bool("serve-metrics", false, "serve /metrics on metrics.listen_addr while the build runs")
	_ = buildCmd.MarkFlagRequired("input")
	_ = buildCmd.MarkFlagRequired("output")
	_ = buildCmd.MarkFlagRequired("segment")
	_ = buildCmd.MarkFlagRequired("field")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.DefaultConfig()
	if cfgFile != "" || viper.ConfigFileUsed() != "" {
		loaded, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = loaded
	}

	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	segmentID, _ := cmd.Flags().GetString("segment")
	fieldName, _ := cmd.Flags().GetString("field")
	isFlush, _ := cmd.Flags().GetBool("flush")
	isMerge, _ := cmd.Flags().GetBool("merge")
	engine, _ := cmd.Flags().GetString("engine")
	spaceType, _ := cmd.Flags().GetString("space-type")
	algorithm, _ := cmd.Flags().GetString("algorithm")
	bucket, _ := cmd.Flags().GetString("bucket")
	region, _ := cmd.Flags().GetString("region")
	serveMetrics, _ := cmd.Flags().GetBool("serve-metrics")

	if isFlush == isMerge {
		return fmt.Errorf("exactly one of --flush or --merge is required")
	}

	entries, err := loadFixture(inputPath)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("fixture %s contains no entries", inputPath)
	}
	dim := len(entries[0].Vector)

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output %s: %w", outputPath, err)
	}
	defer out.Close()

	job := &types.SegmentBuildJob{
		SegmentID:     segmentID,
		FieldName:     fieldName,
		TotalLiveDocs: int64(len(entries)),
		BytesPerVec:   dim * 4,
		Dimension:     dim,
		DataType:      types.DataTypeFloat32,
		Engine:        engine,
		MethodParams: types.IndexParameters{
			SpaceType: spaceType,
			Algorithm: algorithm,
		},
		Sink: out,
	}

	statsRegistry := stats.New()
	if serveMetrics {
		go serveMetricsHTTP(cfg.Metrics.ListenAddr, statsRegistry)
	}

	logger := slog.Default()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Tracing.Enabled,
		Exporter:    cfg.Telemetry.Tracing.Exporter,
		SampleRate:  cfg.Telemetry.Tracing.SampleRate,
		ServiceName: cfg.Telemetry.Tracing.ServiceName,
	})
	if err != nil {
		return err
	}
	defer tp.Shutdown(ctx)

	var accessor *repository.Accessor
	if cfg.RemoteBuild.Enabled {
		if bucket == "" {
			return fmt.Errorf("--bucket is required when remote_build.enabled is true")
		}
		repo, err := s3.New(ctx, s3.Config{Bucket: bucket, Region: region, MaxParallelParts: cfg.Upload.MaxParallelParts})
		if err != nil {
			return err
		}
		accessor = repository.New(repo, repository.Config{
			PartSize:          cfg.Upload.PartSizeBytes,
			BufferBytes:       cfg.Upload.BufferBytes,
			ForceSingleStream: cfg.Upload.ForceSingleStream,
		})
	}

	credStore := secret.New()
	if cfg.RemoteBuild.Username != "" {
		credStore.Reload(cfg.RemoteBuild.Username, cfg.RemoteBuild.Password)
	}

	var client *buildclient.Client
	if cfg.RemoteBuild.Enabled {
		client, err = buildclient.New(buildclient.Config{
			Endpoints:      cfg.RemoteBuild.Endpoints,
			HTTPTimeout:    cfg.RemoteBuild.HTTPTimeout,
			Credentials:    credStore,
			Logger:         logger,
		})
		if err != nil {
			return err
		}
	}

	orch, err := orchestrator.New(accessor, client, statsRegistry, localbuild.BruteForce{}, tp, orchestrator.Config{
		RepositoryType: "s3",
		ContainerName:  bucket,
		TenantID:       cfg.RemoteBuild.Repository,
		Await: buildclient.AwaitOptions{
			Timeout:      cfg.RemoteBuild.Timeout,
			PollInterval: cfg.RemoteBuild.PollInterval,
			InitialDelay: cfg.RemoteBuild.InitialDelay,
		},
	}, logger)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Building index"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
	)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	vectorSupplier := vectorcursor.NewMemorySupplier(entries)
	docIDSupplier := vectorcursor.NewMemorySupplier(entries)

	err = orch.BuildIndex(ctx, orchestrator.Request{
		Job:     job,
		IsFlush: isFlush,
		Settings: eligibility.IndexSettings{
			Enabled:        cfg.RemoteBuild.Enabled,
			Repository:     cfg.RemoteBuild.Repository,
			ThresholdBytes: cfg.RemoteBuild.ThresholdBytes,
		},
		VectorSupplier: vectorSupplier,
		DocIDSupplier:  docIDSupplier,
	})
	close(done)
	_ = bar.Finish()

	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "\nbuild complete: wrote %s\n", outputPath)
	return nil
}

func loadFixture(path string) ([]vectorcursor.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture %s: %w", path, err)
	}
	defer f.Close()
	return vectorcursor.LoadJSONL(f)
}

func serveMetricsHTTP(addr string, registry *stats.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	_ = http.ListenAndServe(addr, mux)
}
