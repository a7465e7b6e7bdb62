package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/predprey/internal/config"
	"github.com/san-kum/predprey/internal/dynamo"
)

func sampleResult() *dynamo.Result {
	return &dynamo.Result{
		States: []dynamo.State{
			{0.25, 0.75, 1.0 / 3, 2.0 / 3},
			{0.125, 0.875, 0.5, 0.5},
		},
		Times:      []float64{0, 0.002},
		Steps:      []int{0, 1},
		StepsTaken: 1,
		Dt:         0.002,
		Metrics: map[string]float64{
			"mass_drift_1": 1e-16,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.GetPreset(config.ModelContinuum, "chase")
	runID, err := st.Save(cfg, "chase", sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Model != config.ModelContinuum || meta.Preset != "chase" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Dt != 0.002 || meta.Steps != 1 {
		t.Errorf("expected dt 0.002 over 1 step, got %g over %d", meta.Dt, meta.Steps)
	}
	if meta.Metrics["mass_drift_1"] != 1e-16 {
		t.Errorf("metric not stored: %v", meta.Metrics)
	}

	loadedCfg, err := st.LoadConfig(runID)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if loadedCfg.Continuum.Nx != 256 {
		t.Errorf("expected nx 256, got %d", loadedCfg.Continuum.Nx)
	}
}

func TestSnapshotsRoundTripExactly(t *testing.T) {
	st := New(t.TempDir())
	result := sampleResult()

	runID, err := st.Save(config.DefaultConfig(), "", result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		t.Fatalf("load snapshots failed: %v", err)
	}
	if len(snaps.States) != 2 || snaps.Steps[1] != 1 || snaps.Times[1] != 0.002 {
		t.Fatalf("unexpected snapshots %+v", snaps)
	}
	for i, state := range result.States {
		for j, v := range state {
			if snaps.States[i][j] != v {
				t.Errorf("state %d[%d]: expected %v, got %v", i, j, v, snaps.States[i][j])
			}
		}
	}
}

func TestListSkipsForeignDirectories(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	if runs, err := st.List(); err != nil || len(runs) != 0 {
		t.Fatalf("expected empty list, got %v, %v", runs, err)
	}

	if _, err := st.Save(config.DefaultConfig(), "", sampleResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(config.GetPreset(config.ModelParticles, "swarm"), "swarm", sampleResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "scratch"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Model != config.ModelParticles {
		t.Errorf("expected newest run first, got %s", runs[0].Model)
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list for missing dir, got %v, %v", runs, err)
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.DefaultConfig(), "", sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid json: %v", err)
	}
	if data.ID != runID || len(data.States) != 2 || data.SnapshotSteps[1] != 1 {
		t.Errorf("unexpected export %+v", data)
	}

	if err := st.ExportJSON(&buf, "missing"); err == nil {
		t.Error("expected error for unknown run")
	}
}
