package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/klepto/config"
)

func TestNilOutputManager(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager(\"\") failed: %v", err)
	}
	if om != nil {
		t.Fatal("want nil manager when output is disabled")
	}

	// All operations are no-ops on the nil receiver
	if err := om.WriteGeneration(GenerationStats{}); err != nil {
		t.Errorf("nil WriteGeneration: %v", err)
	}
	if om.ArchivePath() != "" {
		t.Errorf("nil ArchivePath() = %q, want \"\"", om.ArchivePath())
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestWriteGenerationCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := om.WriteGeneration(GenerationStats{Generation: 0, MeanFitness: 1.5, Foragers: 3}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteGeneration(GenerationStats{Generation: 1, MeanFitness: 2.5, Foragers: 4}); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "generations.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv has %d lines, want header + 2 records:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[0], "mean_fitness") {
		t.Errorf("header missing mean_fitness column: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "0,") || !strings.HasPrefix(lines[2], "1,") {
		t.Errorf("records out of order:\n%s", data)
	}
}

func TestWriteConfigSnapshot(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}

	back, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("snapshot did not round-trip: %v", err)
	}
	if back.Agents.N != cfg.Agents.N {
		t.Errorf("snapshot agents.n = %d, want %d", back.Agents.N, cfg.Agents.N)
	}
}
