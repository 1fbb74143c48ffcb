package domain

// StandardSizes lists the catalogue sizes offered on the measurement step.
var StandardSizes = []StandardSize{
	{ID: "xs", Name: "XS", Chest: "34-36", Neck: "14-14.5"},
	{ID: "s", Name: "S", Chest: "36-38", Neck: "15-15.5"},
	{ID: "m", Name: "M", Chest: "38-40", Neck: "15.5-16"},
	{ID: "l", Name: "L", Chest: "40-42", Neck: "16-16.5"},
	{ID: "xl", Name: "XL", Chest: "42-44", Neck: "17-17.5"},
	{ID: "xxl", Name: "XXL", Chest: "44-46", Neck: "18-18.5"},
}

// FitTypes lists the catalogue fits offered on the measurement step.
var FitTypes = []FitType{
	{ID: "slim", Name: "Slim Fit", Description: "Tailored, close to body"},
	{ID: "regular", Name: "Regular Fit", Description: "Classic, comfortable fit"},
	{ID: "relaxed", Name: "Relaxed Fit", Description: "Loose, comfortable"},
}

// IsStandardSize reports whether id names a catalogue size.
func IsStandardSize(id string) bool {
	for _, size := range StandardSizes {
		if size.ID == id {
			return true
		}
	}
	return false
}

// IsFitType reports whether id names a catalogue fit.
func IsFitType(id string) bool {
	for _, fit := range FitTypes {
		if fit.ID == id {
			return true
		}
	}
	return false
}

// ViewerModelFor maps a product type to the 3D model the renderer should load.
func ViewerModelFor(productType string) string {
	switch productType {
	case "pants":
		return "sample-pants"
	case "jacket":
		return "sample-jacket"
	case "dress":
		return "sample-dress"
	default:
		return "sample-shirt"
	}
}
