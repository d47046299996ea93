package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/ovdetect/pkg/nn"
	"github.com/cyclopcam/ovdetect/pkg/ortsession"
	"github.com/cyclopcam/ovdetect/pkg/pipeline"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	defaults := pipeline.NewConfig()

	parser := argparse.NewParser("ovdetect", "Object Detection using YOLOv8 using OpenVINO Execution Provider for ONNXRuntime")
	device := parser.String("", "device", &argparse.Options{Help: "Device to perform inference on: 'CPUEP' (MLAS) or 'OVEP' (OpenVINO Execution Provider)", Default: defaults.Device})
	model := parser.String("", "model", &argparse.Options{Help: "Path to model", Required: true})
	imageUrl := parser.String("", "image_url", &argparse.Options{Help: "URL of image to download for object detection. Other samples are dog.jpg, banana.jpg, apple.jpg, car.png in the same directory", Default: defaults.ImageURL})
	niter := parser.Int("", "niter", &argparse.Options{Help: "Total number of iterations", Default: defaults.NIter})
	warmupIter := parser.Int("", "warmup_iter", &argparse.Options{Help: "Number of warmup iterations, excluded from the average", Default: defaults.WarmupIter})
	showImage := parser.Flag("", "show_image", &argparse.Options{Help: "Show image with object detection"})
	ortLib := parser.String("", "ortlib", &argparse.Options{Help: "Path to the onnxruntime shared library", Default: defaults.ORTLibrary})
	output := parser.String("o", "output", &argparse.Options{Help: "Save annotated image to this file (.jpg or .png)"})
	printStats := parser.Flag("", "stats", &argparse.Options{Help: "Print inference timing statistics"})
	labelsFile := parser.String("", "labels", &argparse.Options{Help: "Text file with one class name per line (default COCO)"})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	check(err)

	logger.Infof("device :  %v", *device)

	cfg := defaults
	cfg.Device = *device
	cfg.ModelPath = *model
	cfg.ImageURL = *imageUrl
	cfg.NIter = *niter
	cfg.WarmupIter = *warmupIter
	cfg.ShowImage = *showImage
	cfg.ORTLibrary = *ortLib
	cfg.OutputImage = *output
	cfg.PrintStats = *printStats
	if *labelsFile != "" {
		classes, err := nn.LoadClassFile(*labelsFile)
		if err != nil {
			logger.Errorf("Failed to load labels from '%v': %v", *labelsFile, err)
			os.Exit(1)
		}
		cfg.Postprocess.Classes = classes
	}

	_, err = pipeline.New(logger, cfg).Run()
	ortsession.DestroyRuntime()
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
