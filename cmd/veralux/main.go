package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/veralux-ai/veralux/internal/audit"
	"github.com/veralux-ai/veralux/internal/auth"
	"github.com/veralux-ai/veralux/internal/catalog"
	"github.com/veralux-ai/veralux/internal/config"
	"github.com/veralux-ai/veralux/internal/market"
	"github.com/veralux-ai/veralux/internal/server"
	"github.com/veralux-ai/veralux/internal/telemetry"
	"github.com/veralux-ai/veralux/internal/veranet"
	"github.com/veralux-ai/veralux/internal/vision"
)

// methodOrder fixes producer registration order, which is also the vote order
// in reports.
var methodOrder = []string{"logo", "color", "texture", "stitching", "symmetry", "hardware", "provenance", "veranet"}

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "veralux.yaml", "Path to veralux config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	addr := cfg.Server.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	a, err := auth.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("auth setup: %v", err)
	}
	if !a.Enabled() {
		log.Printf("no API keys configured; running with open access")
	}

	brands, err := catalog.Brands(cfg.Catalog.Brands)
	if err != nil {
		log.Fatalf("brand catalog: %v", err)
	}

	lib, err := vision.LoadReferences(cfg.Vision.ReferenceDir, brands)
	if err != nil {
		log.Fatalf("load references: %v", err)
	}

	var model *veranet.Model
	if cfg.Veranet.Enabled {
		model, err = veranet.LoadModel(cfg.Veranet.BundleDir, cfg.Veranet.ImageSize, cfg.Veranet.IntraThreads, cfg.Veranet.InterThreads)
		if err != nil {
			log.Fatalf("load veranet model: %v", err)
		}
		defer model.Close()
		if manifest, verr := veranet.VerifyBundle(cfg.Veranet.BundleDir); verr == nil {
			if serr := veranet.SaveState(cfg.Veranet.BundleDir, manifest); serr != nil {
				log.Printf("veranet: could not record bundle state: %v", serr)
			}
			log.Printf("veranet model %s version %s loaded", manifest.Model, manifest.Version)
		}
	}

	timeout := time.Duration(cfg.Vision.ProducerTimeoutMs) * time.Millisecond
	identifyPipeline := vision.NewPipeline(buildProducers(cfg.Identify.Weights, lib, model), timeout)
	authenticatePipeline := vision.NewPipeline(buildProducers(cfg.Authenticate.Weights, lib, model), timeout)

	var mkt *market.Service
	if cfg.Market.Enabled {
		queryTimeout := time.Duration(cfg.Market.QueryTimeoutMs) * time.Millisecond
		var sources []market.Source
		for _, sc := range cfg.Market.Sources {
			sources = append(sources, market.NewHTMLSource(sc.Name, sc.SearchURL, sc.ListingClass, sc.TitleClass, sc.PriceClass, queryTimeout))
		}
		mkt = market.NewService(sources)
	}

	sinks, err := buildSinks(cfg.Audit.Sinks)
	if err != nil {
		log.Fatalf("audit sinks: %v", err)
	}
	emitter := audit.NewEmitter(audit.EmitterConfig{
		QueueSize: cfg.Audit.QueueSize,
		Workers:   cfg.Audit.Workers,
	}, sinks)
	defer emitter.Close(context.Background())

	tel, err := telemetry.NewProvider(context.Background(), telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Protocol: cfg.Telemetry.Protocol,
		Service:  "veralux",
		Version:  "1.0.0",
	})
	if err != nil {
		log.Fatalf("telemetry setup: %v", err)
	}
	defer tel.Shutdown(context.Background())

	srv := server.New(server.Options{
		Config:               cfg,
		Auth:                 a,
		Brands:               brands,
		IdentifyPipeline:     identifyPipeline,
		AuthenticatePipeline: authenticatePipeline,
		Market:               mkt,
		Audit:                emitter,
		Telemetry:            tel,
	})

	log.Printf("Starting veralux on %s...", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// buildProducers returns one producer per weighted method, in the fixed
// method order. Every method named in the weights gets a producer so fusion
// never sees a weight without a vote; a weighted veranet with no loaded model
// degrades to a producer that always reports no evidence.
func buildProducers(weights map[string]float64, lib *vision.ReferenceLibrary, model *veranet.Model) []vision.Producer {
	var out []vision.Producer
	for _, method := range methodOrder {
		if _, ok := weights[method]; !ok {
			continue
		}
		out = append(out, producerFor(method, lib, model))
	}
	return out
}

func producerFor(method string, lib *vision.ReferenceLibrary, model *veranet.Model) vision.Producer {
	switch method {
	case "logo":
		return vision.NewLogoProducer(lib)
	case "color":
		return vision.NewColorProducer(lib)
	case "texture":
		return vision.NewTextureProducer(lib)
	case "stitching":
		return vision.NewStitchingProducer(lib)
	case "symmetry":
		return vision.NewSymmetryProducer()
	case "hardware":
		return vision.NewHardwareProducer(lib)
	case "provenance":
		return vision.NewProvenanceProducer()
	case "veranet":
		if model == nil {
			return &vision.StaticProducer{Method: "veranet"}
		}
		return veranet.NewProducer(model)
	default:
		// Validate rejects unknown methods before we get here.
		return &vision.StaticProducer{Method: method}
	}
}

func buildSinks(configs []config.SinkConfig) ([]audit.Sink, error) {
	var sinks []audit.Sink
	for _, sc := range configs {
		switch sc.Type {
		case "file_jsonl":
			s, err := audit.NewFileSink(sc.Path)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, s)
		case "webhook":
			s, err := audit.NewWebhookSink(sc.URL, sc.Headers, 5*time.Second)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, s)
		}
	}
	return sinks, nil
}
