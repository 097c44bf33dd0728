package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"dataprep/src/config"
	"dataprep/src/normalizer"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./src/cmd/check_dataset <images-dir> [resolution]")
		os.Exit(1)
	}

	dir := os.Args[1]
	resolution := config.DefaultResolution
	if len(os.Args) > 2 {
		r, err := strconv.Atoi(os.Args[2])
		if err != nil || r <= 0 {
			logrus.Fatalf("Invalid resolution %q", os.Args[2])
		}
		resolution = r
	}

	count, err := normalizer.Verify(dir, resolution)
	if err != nil {
		logrus.WithField("checked", count).Fatalf("Dataset check failed: %v", err)
	}

	fmt.Printf("✅ %d images in %s are %dx%d RGB\n", count, dir, resolution, resolution)
}
