package infer

import (
	"testing"
)

func TestInferCampaignFromGroupScopedTag(t *testing.T) {
	engine := newTestEngine()

	campaign := engine.InferCampaign(
		[]string{"Actual Play", "Kingmaker (The Brute Squad)"},
		"Kingmaker Session 44",
		"The Brute Squad", "Pathfinder",
		"https://example.com/some-other-slug/")
	if campaign != "Kingmaker" {
		t.Errorf("Expected campaign 'Kingmaker', got '%s'", campaign)
	}
}

func TestInferCampaignSkipsSystemGroupTag(t *testing.T) {
	engine := newTestEngine()

	// "Pathfinder (The Brute Squad)" names the system, not a campaign;
	// inference falls through to the URL slug
	campaign := engine.InferCampaign(
		[]string{"Pathfinder (The Brute Squad)"},
		"",
		"The Brute Squad", "Pathfinder",
		"https://www.rpgmp3.com/giantslayer-session-16/")
	if campaign != "Giantslayer" {
		t.Errorf("Expected campaign 'Giantslayer', got '%s'", campaign)
	}
}

func TestInferCampaignFromURLSlug(t *testing.T) {
	engine := newTestEngine()

	campaign := engine.InferCampaign(nil, "",
		"", "",
		"https://www.rpgmp3.com/giantslayer-session-16/")
	if campaign != "Giantslayer" {
		t.Errorf("Expected campaign 'Giantslayer', got '%s'", campaign)
	}
}

func TestInferCampaignMultiWordSlug(t *testing.T) {
	engine := newTestEngine()

	campaign := engine.InferCampaign(nil, "",
		"", "",
		"https://www.rpgmp3.com/rise-of-the-runelords-session-2/")
	if campaign != "Rise Of The Runelords" {
		t.Errorf("Expected campaign 'Rise Of The Runelords', got '%s'", campaign)
	}
}

func TestInferCampaignFromTitle(t *testing.T) {
	engine := newTestEngine()

	campaign := engine.InferCampaign(nil, "Kingmaker Session 44", "", "", "")
	if campaign != "Kingmaker" {
		t.Errorf("Expected campaign 'Kingmaker', got '%s'", campaign)
	}
}

func TestInferCampaignTitleStripsTrailingNumber(t *testing.T) {
	engine := newTestEngine()

	campaign := engine.InferCampaign(nil, "Kingmaker Session 44 2", "", "", "")
	if campaign != "Kingmaker" {
		t.Errorf("Expected campaign 'Kingmaker', got '%s'", campaign)
	}
}

func TestInferCampaignArtifactOnlyTitle(t *testing.T) {
	engine := newTestEngine()

	campaign := engine.InferCampaign(nil, "Session 00 Character Creation", "", "", "")
	if campaign != "" {
		t.Errorf("Expected empty campaign, got '%s'", campaign)
	}
}

func TestInferCampaignTitleEqualToSystem(t *testing.T) {
	engine := newTestEngine()

	// A title that reduces to the system name is rejected, not passed through
	campaign := engine.InferCampaign(nil, "Pathfinder Session 10", "", "Pathfinder", "")
	if campaign != "" {
		t.Errorf("Expected empty campaign, got '%s'", campaign)
	}
}

func TestInferCampaignShortNameRejected(t *testing.T) {
	engine := newTestEngine()

	campaign := engine.InferCampaign(nil, "RQ Session 1", "", "", "")
	if campaign != "" {
		t.Errorf("Expected empty campaign for two-character name, got '%s'", campaign)
	}
}

func TestInferCampaignAliasNormalization(t *testing.T) {
	engine := newTestEngine()

	campaign := engine.InferCampaign(nil, "RotRL Session 12", "", "", "")
	if campaign != "Rise of the Runelords" {
		t.Errorf("Expected campaign 'Rise of the Runelords', got '%s'", campaign)
	}
}

func TestInferCampaignUnaliasedPassThrough(t *testing.T) {
	engine := newTestEngine()

	campaign := engine.InferCampaign(nil, "Giantslayer Session 5", "", "", "")
	if campaign != "Giantslayer" {
		t.Errorf("Expected campaign 'Giantslayer', got '%s'", campaign)
	}
}

func TestInferCampaignNoSignals(t *testing.T) {
	engine := newTestEngine()

	campaign := engine.InferCampaign(nil, "", "", "", "")
	if campaign != "" {
		t.Errorf("Expected empty campaign, got '%s'", campaign)
	}
}
