package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"sort"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/veralux-ai/veralux/internal/config"
	"github.com/veralux-ai/veralux/internal/veranet"
)

func main() {
	cfgPath := flag.String("config", "", "path to config yaml (required)")
	n := flag.Int("n", 200, "number of iterations")
	imagePath := flag.String("image", "", "image to classify (defaults to a synthetic frame)")
	flag.Parse()

	if *cfgPath == "" {
		log.Fatalf("config flag is required")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Veranet.BundleDir == "" {
		log.Fatalf("veranet.bundle_dir is not configured")
	}

	model, err := veranet.LoadModel(cfg.Veranet.BundleDir, cfg.Veranet.ImageSize, cfg.Veranet.IntraThreads, cfg.Veranet.InterThreads)
	if err != nil {
		log.Fatalf("load veranet model: %v", err)
	}
	defer model.Close()

	img := loadImage(*imagePath, cfg.Veranet.ImageSize)

	// Warmup
	for i := 0; i < 5; i++ {
		if _, err := model.Classify(img); err != nil {
			log.Fatalf("warmup classify failed: %v", err)
		}
	}

	if *n <= 0 {
		*n = 1
	}

	durations := make([]time.Duration, 0, *n)
	for i := 0; i < *n; i++ {
		start := time.Now()
		if _, err := model.Classify(img); err != nil {
			log.Fatalf("classify failed: %v", err)
		}
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	avg := float64(total.Microseconds()) / 1000.0 / float64(len(durations))
	p50 := float64(durations[len(durations)/2].Microseconds()) / 1000.0
	p95 := float64(durations[int(float64(len(durations))*0.95)].Microseconds()) / 1000.0

	version := "unknown"
	if state, err := veranet.LoadState(cfg.Veranet.BundleDir); err == nil && state.Version != "" {
		version = state.Version
	}

	fmt.Printf("bench: n=%d avg_ms=%.2f p50_ms=%.2f p95_ms=%.2f image_size=%d bundle_dir=%s version=%s labels=%d\n",
		len(durations),
		avg,
		p50,
		p95,
		cfg.Veranet.ImageSize,
		cfg.Veranet.BundleDir,
		version,
		len(model.Labels()),
	)
}

func loadImage(path string, size int) image.Image {
	if path == "" {
		return image.NewRGBA(image.Rect(0, 0, size, size))
	}
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open image: %v", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		log.Fatalf("decode image: %v", err)
	}
	return img
}
