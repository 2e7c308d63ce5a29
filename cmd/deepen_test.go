package cmd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/iksnae/ideasurge/internal"
)

func TestDeepenCommand_Replay(t *testing.T) {
	dir := newStoreDir(t)
	ideas := seedBatch(t, dir)

	stdout, _, err := executeCommand(t, "deepen", "1", "--store-dir", dir, "--input", "testdata/deepdive.txt")
	if err != nil {
		t.Fatalf("deepen failed: %v", err)
	}
	for _, want := range []string{"Freelancers lose a week", "Market", "MVP", "https://community.upwork.com/late"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}

	store := internal.NewFileSessionStore(dir)
	if !store.IsPicked(ideas[0].ID) {
		t.Error("deepen should pick the idea")
	}
	dives := store.DeepDivesByIdeaID(ideas[0].ID)
	if len(dives) != 1 {
		t.Fatalf("stored %d deep dives, want 1", len(dives))
	}
	if len(dives[0].Sections) != 2 || dives[0].Sections[0].Key != "market" {
		t.Errorf("sections = %+v", dives[0].Sections)
	}
}

func TestDeepenCommand_NewestFirst(t *testing.T) {
	dir := newStoreDir(t)
	ideas := seedBatch(t, dir)

	for i := 0; i < 2; i++ {
		if _, _, err := executeCommand(t, "deepen", "1", "--store-dir", dir, "--input", "testdata/deepdive.txt"); err != nil {
			t.Fatalf("deepen %d failed: %v", i+1, err)
		}
	}
	if n := len(internal.NewFileSessionStore(dir).DeepDivesByIdeaID(ideas[0].ID)); n != 2 {
		t.Errorf("stored %d deep dives, want 2", n)
	}
}

func TestDeepenCommand_JSON(t *testing.T) {
	dir := newStoreDir(t)
	ideas := seedBatch(t, dir)

	stdout, _, err := executeCommand(t, "deepen", ideas[1].ID, "--store-dir", dir, "--input", "testdata/deepdive.txt", "--json")
	if err != nil {
		t.Fatalf("deepen failed: %v", err)
	}
	var result internal.DeepDiveResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("output is not a deep dive: %v\n%s", err, stdout)
	}
	if result.IdeaID != ideas[1].ID {
		t.Errorf("IdeaID = %q, want %q", result.IdeaID, ideas[1].ID)
	}
}

func TestDeepenCommand_InvalidReport(t *testing.T) {
	dir := newStoreDir(t)
	ideas := seedBatch(t, dir)

	_, _, err := executeCommand(t, "deepen", "1", "--store-dir", dir, "--input", "testdata/deepdive_prose.txt")
	if !errors.Is(err, internal.ErrDeepDiveContract) {
		t.Fatalf("error = %v, want ErrDeepDiveContract", err)
	}
	if n := len(internal.NewFileSessionStore(dir).DeepDivesByIdeaID(ideas[0].ID)); n != 0 {
		t.Errorf("stored %d deep dives for an invalid report, want 0", n)
	}
}

func TestDeepenCommand_RequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "custom mode without prompt",
			args:    []string{"--mode", "custom"},
			wantErr: "requires a prompt",
		},
		{
			name:    "unknown focus",
			args:    []string{"--focus", "weather"},
			wantErr: "unsupported focus",
		},
		{
			name:    "unknown mode",
			args:    []string{"--mode", "freestyle"},
			wantErr: "unsupported mode",
		},
		{
			name: "prompt implies custom mode",
			args: []string{"--prompt", "Who already sells this?"},
		},
		{
			name: "preset focus",
			args: []string{"--focus", "pricing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newStoreDir(t)
			seedBatch(t, dir)

			args := append([]string{"deepen", "1", "--store-dir", dir, "--input", "testdata/deepdive.txt"}, tt.args...)
			_, _, err := executeCommand(t, args...)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("deepen failed: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
