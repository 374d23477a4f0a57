package training

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSkillParamsFile_EmptyPathIsNoop(t *testing.T) {
	activeSkillParams = defaultSkillParams()
	if err := LoadSkillParamsFile(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if activeSkillParams[ArchetypeExpert] != defaultSkillParams()[ArchetypeExpert] {
		t.Fatal("expected defaults to survive an empty path")
	}
}

func TestLoadSkillParamsFile_OverridesNamedArchetypeAndKeepsOthers(t *testing.T) {
	defer func() { activeSkillParams = defaultSkillParams() }()

	dir := t.TempDir()
	path := filepath.Join(dir, "skills.yaml")
	doc := "expert:\n avg_interval_ms: 70\n spread_ms: 10\n food_eaten: 60\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := LoadSkillParamsFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := skillParamsFor(ArchetypeExpert)
	if got.AvgIntervalMs != 70 || got.SpreadMs != 10 || got.FoodEaten != 60 {
		t.Fatalf("expected overridden expert params, got %+v", got)
	}

	beginner := skillParamsFor(ArchetypeBeginner)
	if beginner != defaultSkillParams()[ArchetypeBeginner] {
		t.Fatalf("expected beginner params untouched, got %+v", beginner)
	}
}

func TestLoadSkillParamsFile_MissingFileErrors(t *testing.T) {
	defer func() { activeSkillParams = defaultSkillParams() }()
	if err := LoadSkillParamsFile("/nonexistent/skills.yaml"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
