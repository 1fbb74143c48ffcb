package services

import (
	"reflect"
	"testing"

	domain "github.com/tailor-field/configurator/internal/domain"
)

func TestMergeLayersKeepsDuplicatesInOrder(t *testing.T) {
	selections := []domain.Selection{
		{StepID: "a", Layers: &domain.LayerDirectives{Show: []string{"sleeve"}}},
		{StepID: "b"},
		{StepID: "c", Layers: &domain.LayerDirectives{Show: []string{"sleeve"}, Hide: []string{"cuff"}}},
	}

	got := MergeLayers(selections)
	if !reflect.DeepEqual(got.Show, []string{"sleeve", "sleeve"}) {
		t.Fatalf("expected duplicate show entries, got %v", got.Show)
	}
	if !reflect.DeepEqual(got.Hide, []string{"cuff"}) {
		t.Fatalf("unexpected hide entries %v", got.Hide)
	}
}

func TestMergeLayersPassesConflictsThrough(t *testing.T) {
	selections := []domain.Selection{
		{Layers: &domain.LayerDirectives{Show: []string{"collar_spread"}}},
		{Layers: &domain.LayerDirectives{Hide: []string{"collar_spread"}}},
	}
	got := MergeLayers(selections)
	if len(got.Show) != 1 || len(got.Hide) != 1 {
		t.Fatalf("expected identifier in both lists, got %+v", got)
	}
}

func TestMergeLayersEmpty(t *testing.T) {
	got := MergeLayers(nil)
	if got.Show == nil || got.Hide == nil || len(got.Show) != 0 || len(got.Hide) != 0 {
		t.Fatalf("expected empty non-nil lists, got %+v", got)
	}
}
