package domain

import "time"

// ClothingType is an admin-authored product definition from which customization steps are derived.
type ClothingType struct {
	ID          string
	Name        string
	Description string
	Category    string
	BasePrice   int64
	Currency    string
	Thumbnail   string
	Active      bool
	Steps       []ClothingTypeStep
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ClothingTypeStep is one admin-authored step; Type is one of the step kinds or "fabric"/"style".
type ClothingTypeStep struct {
	Type    string
	Title   string
	Options []ClothingTypeOption
}

// ClothingTypeOption is one admin-authored option. MaterialMapping names the 3D layer it reveals.
type ClothingTypeOption struct {
	ID              string
	Name            string
	Price           int64
	Color           string
	MaterialMapping string
	Image           string
}
