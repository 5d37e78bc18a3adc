package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"time"

	"jfproc/internal/models"
	"jfproc/pkg/config"
	"jfproc/pkg/handler"
	"jfproc/pkg/render"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "jfproc.yaml", "Path to YAML configuration file")
	detectorName := flag.String("detector", "", "Detector name (overrides configuration)")
	inputPath := flag.String("input", "", "Raw frame file (little-endian uint16)")
	gainPath := flag.String("gain", "", "Gain file (little-endian float32, 4 stage planes)")
	pedestalPath := flag.String("pedestal", "", "Pedestal file (little-endian float32, 4 stage planes)")
	outputPath := flag.String("output", "output.bin", "Output file (little-endian float32)")
	previewPath := flag.String("preview", "", "Optional preview PNG of the first processed frame")
	heatmap := flag.Bool("heatmap", false, "Render the preview as a false-color heatmap")
	flag.Parse()

	// Validate inputs
	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *detectorName != "" {
		cfg.Detector.Name = *detectorName
	}

	h, err := handler.New(cfg.Detector.Name)
	if err != nil {
		log.Fatalf("Failed to create handler: %v", err)
	}

	fullH, fullW := h.Detector().FullShape()
	fmt.Printf("Detector %s: %d modules, full shape %dx%d\n",
		h.Detector().Name(), h.Detector().NModules(), fullH, fullW)

	// Load calibration tables when provided
	if *gainPath != "" {
		gain, err := readGainSet(*gainPath, fullH, fullW)
		if err != nil {
			log.Fatalf("Failed to read gain file: %v", err)
		}
		if err := h.SetGain(gain); err != nil {
			log.Fatalf("Failed to set gain: %v", err)
		}
	}
	if *pedestalPath != "" {
		pedestal, err := readGainSet(*pedestalPath, fullH, fullW)
		if err != nil {
			log.Fatalf("Failed to read pedestal file: %v", err)
		}
		if err := h.SetPedestal(pedestal); err != nil {
			log.Fatalf("Failed to set pedestal: %v", err)
		}
	}

	opts := cfg.Options()
	if !h.CanConvert() {
		if opts.Conversion {
			fmt.Println("No calibration tables provided, disabling conversion")
		}
		opts.Conversion = false
	}
	opts.Mask = false // no mask source in file mode

	// Read the raw frame stack
	rawH, rawW := h.RawShape()
	raw, err := readRawStack(*inputPath, rawH, rawW)
	if err != nil {
		log.Fatalf("Failed to read raw frames: %v", err)
	}
	fmt.Printf("Loaded %d frames of %dx%d\n", raw.Frames, raw.Height, raw.Width)

	startTime := time.Now()
	var out *models.Stack[float32]
	if opts.Conversion {
		out, err = h.Process(raw, opts)
	} else {
		var placed *models.Stack[uint16]
		placed, err = handler.Assemble(h, raw, opts)
		if err == nil {
			out = models.NewStack[float32](placed.Frames, placed.Height, placed.Width)
			for i, v := range placed.Data {
				out.Data[i] = float32(v)
			}
		}
	}
	if err != nil {
		log.Fatalf("Processing failed: %v", err)
	}

	fmt.Printf("Processed %d frames to %dx%d in %.2f seconds\n",
		out.Frames, out.Height, out.Width, time.Since(startTime).Seconds())

	if err := writeFloatStack(*outputPath, out); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	fmt.Printf("Output saved to: %s\n", *outputPath)

	// Render a preview of the first frame if requested
	if *previewPath != "" {
		img, err := previewImage(out, *heatmap)
		if err != nil {
			log.Fatalf("Failed to render preview: %v", err)
		}
		if cfg.Output.PreviewWidth > 0 && out.Width > cfg.Output.PreviewWidth {
			img = render.Preview(img, uint(cfg.Output.PreviewWidth))
		}
		if err := render.SavePNG(*previewPath, img); err != nil {
			log.Fatalf("Failed to save preview: %v", err)
		}
		fmt.Printf("Preview saved to: %s\n", *previewPath)
	}
}

// previewImage renders the first frame of a stack.
func previewImage(out *models.Stack[float32], heatmap bool) (image.Image, error) {
	frame := out.Frame(0)
	if heatmap {
		return render.Heatmap(frame, out.Width, out.Height)
	}
	return render.Gray16(frame, out.Width, out.Height), nil
}

// readRawStack reads a little-endian uint16 frame file; the frame count is
// inferred from the file size.
func readRawStack(path string, height, width int) (*models.Stack[uint16], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	frameBytes := height * width * 2
	if frameBytes == 0 || len(data)%frameBytes != 0 {
		return nil, fmt.Errorf("file size %d is not a multiple of the %dx%d frame size", len(data), height, width)
	}

	s := models.NewStack[uint16](len(data)/frameBytes, height, width)
	for i := range s.Data {
		s.Data[i] = binary.LittleEndian.Uint16(data[2*i:])
	}
	return s, nil
}

// readGainSet reads a little-endian float32 file holding four full
// detector stage planes.
func readGainSet(path string, height, width int) (*models.GainSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	want := 4 * height * width * 4
	if len(data) != want {
		return nil, fmt.Errorf("file size %d, expected %d (4 planes of %dx%d float32)", len(data), want, height, width)
	}

	g := models.NewGainSet(4, height, width)
	for i := range g.Data {
		g.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return g, nil
}

// writeFloatStack writes a float32 stack as little-endian binary.
func writeFloatStack(path string, s *models.Stack[float32]) error {
	buf := make([]byte, len(s.Data)*4)
	for i, v := range s.Data {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return os.WriteFile(path, buf, 0644)
}
