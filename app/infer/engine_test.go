package infer

import (
	"testing"

	"github.com/rpgmp3/rpgstats/app/refdata"
)

func newTestEngine() *Engine {
	return NewEngine(&refdata.Store{
		Groups:  []string{"The Brute Squad", "Haste"},
		Systems: []string{"Pathfinder", "Dungeons and Dragons", "Call of Cthulhu"},
		CampaignAliases: map[string]string{
			"rotrl": "Rise of the Runelords",
		},
	})
}

func TestInferSystemFromTag(t *testing.T) {
	engine := newTestEngine()

	system := engine.InferSystem([]string{"Actual Play", "Pathfinder"}, "")
	if system != "Pathfinder" {
		t.Errorf("Expected system 'Pathfinder', got '%s'", system)
	}
}

func TestInferGroupFromParenthesizedTag(t *testing.T) {
	engine := newTestEngine()

	group := engine.InferGroup([]string{"Kingmaker (The Brute Squad)"}, "")
	if group != "The Brute Squad" {
		t.Errorf("Expected group 'The Brute Squad', got '%s'", group)
	}
}

func TestInferSystemTagOutweighsPageText(t *testing.T) {
	engine := newTestEngine()

	// Page text mentions another system, but the tag signal is stronger
	system := engine.InferSystem(
		[]string{"Pathfinder"},
		"we talked about Call of Cthulhu for a while")
	if system != "Pathfinder" {
		t.Errorf("Expected system 'Pathfinder', got '%s'", system)
	}
}

func TestInferSystemTieKeepsFirstListed(t *testing.T) {
	engine := newTestEngine()

	// Both systems appear only in page text with equal weight
	system := engine.InferSystem(nil, "Pathfinder versus Call of Cthulhu")
	if system != "Pathfinder" {
		t.Errorf("Expected first-listed system 'Pathfinder' on tie, got '%s'", system)
	}
}

func TestInferSystemNoSignal(t *testing.T) {
	engine := newTestEngine()

	system := engine.InferSystem([]string{"Actual Play"}, "no known names here")
	if system != "" {
		t.Errorf("Expected empty system, got '%s'", system)
	}
}

func TestInferGroupEmptyReferenceList(t *testing.T) {
	engine := NewEngine(&refdata.Store{})

	group := engine.InferGroup([]string{"The Brute Squad"}, "The Brute Squad")
	if group != "" {
		t.Errorf("Expected empty group with no reference list, got '%s'", group)
	}
}

func TestInferSystemCaseInsensitive(t *testing.T) {
	engine := newTestEngine()

	system := engine.InferSystem([]string{"PATHFINDER"}, "")
	if system != "Pathfinder" {
		t.Errorf("Expected system 'Pathfinder', got '%s'", system)
	}
}
