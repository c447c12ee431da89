package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type modeInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type correctRequest struct {
	Text    string `json:"text"`
	Mode    string `json:"mode"`
	Tone    string `json:"tone,omitempty"`
	Context string `json:"context,omitempty"`
}

type correctResponse struct {
	CorrectedText string `json:"correctedText"`
	Error         string `json:"error"`
}

type result struct {
	Sample   string `json:"sample"`
	Chars    int    `json:"chars"`
	Mode     string `json:"mode"`
	Run      int    `json:"run"`
	WallMs   int64  `json:"wall_ms"`
	OutChars int    `json:"out_chars"`
	Error    string `json:"error,omitempty"`
}

type options struct {
	url     string
	runs    int
	mode    string
	tone    string
	context string
	quality bool
	jsonOut string
	warmup  bool
}

func main() {
	var o options
	cmd := &cobra.Command{
		Use:           "bench",
		Short:         "Measure latency and output of a running correcteur relay",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.url, "url", "http://localhost:8090", "relay base URL")
	f.IntVar(&o.runs, "runs", 3, "number of runs per sample")
	f.StringVar(&o.mode, "mode", "", "mode to use (default: every mode from /api/modes)")
	f.StringVar(&o.tone, "tone", "tu", "tone sent with every request")
	f.StringVar(&o.context, "context", "", "context sent with every request")
	f.BoolVar(&o.quality, "quality", false, "show input/output for each sample (1 run, no timing table)")
	f.StringVar(&o.jsonOut, "json", "", "write results to JSON file (e.g. results.json)")
	f.BoolVar(&o.warmup, "warmup", false, "run one warmup request per sample before measuring")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(o options) error {
	baseURL := strings.TrimRight(o.url, "/")
	client := &http.Client{Timeout: 180 * time.Second}

	modes := []string{o.mode}
	if o.mode == "" {
		var err error
		if modes, err = discoverModes(client, baseURL); err != nil {
			return err
		}
	}

	if o.quality {
		return runQualityMode(client, baseURL, modes, o)
	}

	fmt.Printf("Benchmarking against %s, modes %v (%d runs per sample", baseURL, modes, o.runs)
	if o.warmup {
		fmt.Print(", warmup enabled")
	}
	fmt.Println(")")

	var results []result
	var failures int
	for _, mode := range modes {
		for _, sample := range Samples {
			if o.warmup {
				fmt.Printf("  Warming up %s/%s...", mode, sample.Name)
				w := benchmark(client, baseURL, mode, sample, 0, o)
				if w.Error != "" {
					fmt.Printf(" FAILED (%s)\n", w.Error)
				} else {
					fmt.Printf(" %dms (discarded)\n", w.WallMs)
				}
			}
			for i := 1; i <= o.runs; i++ {
				fmt.Printf("  Running %s/%s (run %d/%d)...", mode, sample.Name, i, o.runs)
				r := benchmark(client, baseURL, mode, sample, i, o)
				results = append(results, r)
				if r.Error != "" {
					fmt.Printf(" FAILED (%s)\n", r.Error)
					failures++
				} else {
					fmt.Printf(" %dms\n", r.WallMs)
				}
			}
		}
	}

	fmt.Println()
	printTable(results)
	printSummary(results)

	if o.jsonOut != "" {
		if err := writeJSON(o.jsonOut, results, baseURL); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
		} else {
			fmt.Printf("\nResults written to %s\n", o.jsonOut)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d runs failed", failures, len(results))
	}
	return nil
}

func discoverModes(client *http.Client, baseURL string) ([]string, error) {
	resp, err := client.Get(baseURL + "/api/modes")
	if err != nil {
		return nil, fmt.Errorf("fetch modes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("modes endpoint returned %d: %s", resp.StatusCode, body)
	}

	var modes []modeInfo
	if err := json.NewDecoder(resp.Body).Decode(&modes); err != nil {
		return nil, fmt.Errorf("decode modes: %w", err)
	}
	if len(modes) == 0 {
		return nil, fmt.Errorf("no modes available")
	}

	ids := make([]string, len(modes))
	for i, m := range modes {
		ids[i] = m.ID
	}
	return ids, nil
}

// correct sends one request and returns the corrected text.
func correct(client *http.Client, baseURL, mode, text string, o options) (string, error) {
	payload, err := json.Marshal(correctRequest{Text: text, Mode: mode, Tone: o.tone, Context: o.context})
	if err != nil {
		return "", err
	}

	resp, err := client.Post(baseURL+"/", "application/json", strings.NewReader(string(payload)))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var cr correctResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("HTTP %d: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, cr.Error)
	}
	return cr.CorrectedText, nil
}

func benchmark(client *http.Client, baseURL, mode string, sample Sample, run int, o options) result {
	r := result{Sample: sample.Name, Chars: len([]rune(sample.Text)), Mode: mode, Run: run}

	start := time.Now()
	out, err := correct(client, baseURL, mode, sample.Text, o)
	r.WallMs = time.Since(start).Milliseconds()

	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.OutChars = len([]rune(out))
	return r
}

func printTable(results []result) {
	fmt.Println("| Sample | Chars | Mode | Run | Wall (ms) | Out Chars | Ratio |")
	fmt.Println("|--------|-------|------|-----|-----------|-----------|-------|")
	for _, r := range results {
		if r.Error != "" {
			fmt.Printf("| %-6s | %5d | %-7s | %d | %9s | %9s | %5s |\n",
				r.Sample, r.Chars, r.Mode, r.Run, "FAIL", "-", "-")
			continue
		}
		ratio := float64(r.OutChars) / float64(r.Chars)
		fmt.Printf("| %-6s | %5d | %-7s | %d | %9d | %9d | %5.2f |\n",
			r.Sample, r.Chars, r.Mode, r.Run, r.WallMs, r.OutChars, ratio)
	}
}

func runQualityMode(client *http.Client, baseURL string, modes []string, o options) error {
	fmt.Printf("Quality test against %s, modes %v\n", baseURL, modes)
	fmt.Println(strings.Repeat("=", 72))

	var failures, total int
	for i, sample := range QualitySamples {
		fmt.Printf("\n--- %d/%d: %s ---\n", i+1, len(QualitySamples), sample.Name)
		fmt.Printf("IN:        %s\n", sample.Text)

		for _, mode := range modes {
			total++
			start := time.Now()
			out, err := correct(client, baseURL, mode, sample.Text, o)
			if err != nil {
				fmt.Printf("%-9s  ERR: %s\n", mode+":", err)
				failures++
				continue
			}
			fmt.Printf("%-9s  %s  [%dms]\n", mode+":", out, time.Since(start).Milliseconds())
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 72))
	fmt.Printf("Done: %d/%d passed\n", total-failures, total)
	if failures > 0 {
		return fmt.Errorf("%d of %d requests failed", failures, total)
	}
	return nil
}

func printSummary(results []result) {
	var ok []result
	for _, r := range results {
		if r.Error == "" {
			ok = append(ok, r)
		}
	}

	failed := len(results) - len(ok)

	if len(ok) == 0 {
		fmt.Printf("\nSummary: all %d runs failed\n", len(results))
		return
	}

	var totalWall int64
	var totalChars int
	fastest, slowest := ok[0], ok[0]
	for _, r := range ok {
		totalWall += r.WallMs
		totalChars += r.Chars
		if r.WallMs < fastest.WallMs {
			fastest = r
		}
		if r.WallMs > slowest.WallMs {
			slowest = r
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("- Avg ms/char: %.2f\n", float64(totalWall)/float64(totalChars))
	fmt.Printf("- Min wall: %dms (%s/%s)\n", fastest.WallMs, fastest.Mode, fastest.Sample)
	fmt.Printf("- Max wall: %dms (%s/%s)\n", slowest.WallMs, slowest.Mode, slowest.Sample)
	fmt.Printf("- Total runs: %d (%d ok, %d failed)\n", len(results), len(ok), failed)
}

type jsonReport struct {
	Timestamp string   `json:"timestamp"`
	URL       string   `json:"url"`
	Results   []result `json:"results"`
}

func writeJSON(path string, results []result, baseURL string) error {
	report := jsonReport{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       baseURL,
		Results:   results,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
