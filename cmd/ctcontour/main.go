package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"ctcontour/pkg/ablation"
	"ctcontour/pkg/config"
	"ctcontour/pkg/contour"
	"ctcontour/pkg/visualization"
	"ctcontour/pkg/volume"
)

func main() {
	// Parse command line arguments; flags override the config file
	configPath := flag.String("config", "ctcontour.yaml", "Path to the YAML configuration file")
	datasetRoot := flag.String("dataset", "", "Label dataset directory (overrides config and environment)")
	mode := flag.String("mode", "", "Execution mode: sequential or concurrent")
	maxVolumes := flag.Int("max-volumes", -1, "Limit on the number of volumes to load (0 = all)")
	saveOverlays := flag.Bool("overlays", false, "Save contour overlay images for every slice")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}
	if *datasetRoot != "" {
		cfg.Dataset.Root = *datasetRoot
	}
	if *mode != "" {
		cfg.Ablation.Mode = *mode
	}
	if *maxVolumes >= 0 {
		cfg.Dataset.MaxVolumes = *maxVolumes
	}
	if *saveOverlays {
		cfg.Output.SaveOverlays = true
	}
	if !cfg.Output.Verbose {
		log = log.Level(zerolog.WarnLevel)
	}

	// Configuration errors are the only fatal errors: everything after this
	// point is contained per slice or per (variant, slice) pair.
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	extractors, err := contour.Variants(cfg.Ablation.Variants...)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	root, err := volume.ResolveRoot(cfg.Dataset.Root)
	if err != nil {
		log.Fatal().Err(err).Msg("resolving dataset root")
	}

	fmt.Println("================================")
	fmt.Println("SPARSE CONTOUR EXTRACTION ABLATION STUDY")
	fmt.Println("8-connectivity boundary point sets over LiTS segmentation masks")
	fmt.Println("================================")

	loader, err := volume.NewLoader(root, cfg.Dataset.MaxVolumes)
	if err != nil {
		log.Fatal().Err(err).Msg("scanning dataset")
	}
	log.Info().Str("root", root).Int("volumes", loader.VolumeCount()).Msg("dataset discovered")

	slices := loader.Load(cfg.Dataset.LabelThreshold, log)
	if len(slices) == 0 {
		log.Fatal().Msg("no usable slices in dataset")
	}
	log.Info().Int("slices", len(slices)).Msg("dataset loaded")

	harness, err := ablation.New(&ablation.Params{
		Slices:     slices,
		Extractors: extractors,
		Reference:  cfg.Ablation.Reference,
		Mode:       ablation.Mode(cfg.Ablation.Mode),
		Log:        log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	fmt.Printf("Running ablation batch: %d slices x %d variants (%s mode)...\n",
		len(slices), len(extractors), cfg.Ablation.Mode)
	startTime := time.Now()
	report := harness.Run()
	fmt.Printf("\nBatch completed in %.2f seconds\n\n", time.Since(startTime).Seconds())

	fmt.Print(report.String())

	if report.TotalMismatches() > 0 {
		log.Warn().Int("mismatches", report.TotalMismatches()).
			Msg("variants disagreed with the reference; investigate before trusting timings")
	}
	if report.TotalFailures() > 0 {
		log.Warn().Int("failures", report.TotalFailures()).Msg("some runs failed")
	}

	if cfg.Output.SaveOverlays {
		fmt.Printf("\nSaving contour overlays to: %s\n", cfg.Output.OverlayDir)
		reference, err := contour.Variants(cfg.Ablation.Reference)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}
		if err := visualization.SaveSequence(slices, reference[0], cfg.Output.OverlayDir); err != nil {
			log.Error().Err(err).Msg("saving overlays")
		}
	}
}
