package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/ecoscan/internal/domain/recycling"
)

type checkOptions struct {
	Server    string
	ImagePath string
	Timeout   time.Duration
}

func newCheckCmd() *cobra.Command {
	opts := checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that a running EcoScan server is reachable and can analyze an image",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Server, "server", "s", "http://localhost:3000", "Server base URL")
	cmd.Flags().StringVarP(&opts.ImagePath, "image", "i", "", "Image to upload (a generated test image when empty)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 90*time.Second, "Per-request timeout")

	return cmd
}

func runCheck(cmd *cobra.Command, opts checkOptions) error {
	out := cmd.OutOrStdout()
	client := &http.Client{Timeout: opts.Timeout}
	base := strings.TrimRight(opts.Server, "/")

	resp, err := client.Get(base + "/api/health")
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	fmt.Fprintf(out, "health: %d %s\n", resp.StatusCode, strings.TrimSpace(string(body)))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: unexpected status %d", resp.StatusCode)
	}

	name, data, err := checkImage(opts.ImagePath)
	if err != nil {
		return err
	}

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := fw.Write(data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	resp, err = client.Post(base+"/api/analyze", mw.FormDataContentType(), &form)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1000))
		return fmt.Errorf("analyze: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result recycling.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("analyze: decode response: %w", err)
	}
	fmt.Fprintf(out, "analyze: %d item=%q recyclable=%t category=%q image=%s\n",
		resp.StatusCode, result.ItemName, result.Recyclable, result.Category, result.ScannedImageURL)
	if result.ErrorDetails != "" {
		fmt.Fprintf(out, "analyze: server fell back: %s\n", result.ErrorDetails)
	}
	return nil
}

// checkImage returns the image to upload, generating a 500x500 test card
// when no path is given.
func checkImage(path string) (string, []byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", nil, err
		}
		return filepath.Base(path), data, nil
	}

	img := image.NewRGBA(image.Rect(0, 0, 500, 500))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 73, G: 109, B: 137, A: 255}}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(100, 100, 400, 400), &image.Uniform{C: color.RGBA{R: 128, A: 255}}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return "", nil, err
	}
	return "test_image.jpg", buf.Bytes(), nil
}
