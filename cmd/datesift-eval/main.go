// Evaluation tool for measuring datesift extraction quality against
// annotated reference documents.
//
// Usage:
//
//	go run cmd/datesift-eval/main.go -cases /path/to/cases.jsonl
//
// This tool:
//  1. Reads a JSONL corpus where each line is one case input
//  2. Runs every case through the full pipeline in process
//  3. Compares extracted dates with each case's reference text
//  4. Reports pooled coverage/precision and the grade distribution
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vnexsus/datesift"
	"github.com/vnexsus/datesift/domain"
)

func main() {
	casesPath := flag.String("cases", "", "Path to JSONL case corpus")
	configPath := flag.String("config", "", "Path to datesift YAML config")
	limit := flag.Int("limit", 0, "Maximum cases to evaluate (0 = all)")
	workers := flag.Int("workers", 4, "Concurrent case workers")
	verbose := flag.Bool("verbose", false, "Print each case result")
	flag.Parse()

	if *casesPath == "" {
		fmt.Println("Usage: datesift-eval -cases /path/to/cases.jsonl [-config datesift.yaml]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║         DATESIFT EVALUATION - Extraction Ground Truth         ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nCase File:  %s\n", *casesPath)
	fmt.Printf("Config:     %s\n", orDefault(*configPath, "(defaults)"))
	fmt.Printf("Workers:    %d\n", *workers)
	fmt.Printf("Limit:      %d\n", *limit)
	fmt.Println()

	cfg, err := datesift.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("ERROR: failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Pipeline.Concurrency = *workers

	svc, err := datesift.New(cfg)
	if err != nil {
		fmt.Printf("ERROR: failed to initialize datesift: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Printf("Reading cases from %s...\n", *casesPath)
	inputs, err := readCases(*casesPath, *limit)
	if err != nil {
		fmt.Printf("ERROR: failed to read cases: %v\n", err)
		os.Exit(1)
	}
	withReference := 0
	for _, in := range inputs {
		if in.ReferenceText != "" {
			withReference++
		}
	}
	fmt.Printf("✓ Loaded %d cases (%d with reference text)\n", len(inputs), withReference)

	fmt.Printf("\nEvaluating with %d workers...\n", *workers)
	startTime := time.Now()
	results, errs := svc.ProcessCases(context.Background(), inputs)
	duration := time.Since(startTime)

	var evals []domain.MatchResult
	failures := 0
	skipped := 0
	for i, result := range results {
		if errs[i] != nil {
			failures++
			if *verbose {
				fmt.Printf("✗ %-20s | ERROR: %v\n", inputs[i].CaseID, errs[i])
			}
			continue
		}
		if result.Evaluation == nil {
			skipped++
			continue
		}
		evals = append(evals, *result.Evaluation)
		if *verbose {
			mark := "✓"
			if result.Evaluation.Grade == domain.GradePoor {
				mark = "✗"
			}
			fmt.Printf("%s %-20s | candidates: %3d | accepted: %3d | coverage: %s | grade: %s\n",
				mark,
				result.CaseID,
				len(result.Candidates),
				len(result.Accepted),
				rate(result.Evaluation.CoverageRate, result.Evaluation.CoverageDefined),
				result.Evaluation.Grade,
			)
			for _, miss := range result.Evaluation.MissedContexts {
				fmt.Printf("    missed %s (line %d): %s\n", miss.Date, miss.Line, miss.Text)
			}
		}
	}

	summary := datesift.AggregateEvaluations(evals)
	printResults(summary, len(inputs), skipped, failures, duration)
}

func readCases(path string, limit int) ([]domain.CaseInput, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	var inputs []domain.CaseInput
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var input domain.CaseInput
		if err := json.Unmarshal(raw, &input); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if input.CaseID == "" {
			input.CaseID = fmt.Sprintf("case-%04d", line)
		}
		inputs = append(inputs, input)

		if limit > 0 && len(inputs) >= limit {
			break
		}
	}
	return inputs, scanner.Err()
}

func printResults(s domain.MatchSummary, total, skipped, failures int, duration time.Duration) {
	fmt.Println("\n╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      EVALUATION RESULTS                       ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")

	fmt.Printf("\n📊 CORPUS STATISTICS\n")
	fmt.Printf("   Total Cases:      %d\n", total)
	fmt.Printf("   Evaluated:        %d\n", s.Cases)
	fmt.Printf("   No Reference:     %d\n", skipped)
	fmt.Printf("   Errors:           %d\n", failures)

	fmt.Printf("\n📈 DATE SETS (pooled)\n")
	fmt.Printf("   Reference Dates:  %d\n", s.ReferenceTotal)
	fmt.Printf("   Extracted Dates:  %d\n", s.ExtractedTotal)
	fmt.Printf("   Matched:          %d\n", s.MatchedTotal)
	fmt.Printf("   Missed:           %d\n", s.MissedTotal)
	fmt.Printf("   Extra:            %d\n", s.ExtraTotal)

	fmt.Printf("\n🎯 QUALITY METRICS\n")
	fmt.Printf("   Coverage:   %s  (of reference dates, how many we extracted)\n",
		rate(s.Coverage, s.CoverageDefined))
	fmt.Printf("   Precision:  %s  (of extracted dates, how many were right)\n",
		rate(s.Precision, s.PrecisionDefined))

	fmt.Printf("\n🏷️  GRADE DISTRIBUTION\n")
	for _, grade := range []domain.Grade{domain.GradeGood, domain.GradeFair, domain.GradePoor, domain.GradeNone} {
		fmt.Printf("   %-6s %d\n", grade+":", s.Grades[grade])
	}

	fmt.Printf("\n⏱️  PERFORMANCE\n")
	fmt.Printf("   Total Duration:   %v\n", duration.Round(time.Millisecond))
	if total > 0 && duration.Seconds() > 0 {
		fmt.Printf("   Throughput:       %.2f cases/sec\n", float64(total)/duration.Seconds())
	}

	fmt.Printf("\n💡 INTERPRETATION\n")
	switch {
	case !s.CoverageDefined:
		fmt.Println("   ⚠️  No reference dates available - nothing to measure")
	case s.Coverage >= 90:
		fmt.Println("   ✅ Excellent coverage - almost every reference date found")
	case s.Coverage >= 80:
		fmt.Println("   ✅ Good coverage - most reference dates found")
	case s.Coverage >= 60:
		fmt.Println("   ⚠️  Moderate coverage - review the missed contexts")
	default:
		fmt.Println("   ❌ Poor coverage - extraction is missing most dates")
	}
	if s.PrecisionDefined {
		if s.Precision >= 80 {
			fmt.Println("   ✅ Good precision - extracted dates are trustworthy")
		} else if s.Precision >= 50 {
			fmt.Println("   ⚠️  Low precision - many spurious dates extracted")
		} else {
			fmt.Println("   ❌ Very low precision - mostly spurious dates")
		}
	}

	fmt.Println()
}

func rate(value float64, defined bool) string {
	if !defined {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", value)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
