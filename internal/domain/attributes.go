package domain

// VisualAttributes is the semantic attribute record consumed by the rendering collaborator.
// Unset attributes are nil.
type VisualAttributes struct {
	Color       *string `json:"color,omitempty"`
	FabricColor *string `json:"fabricColor,omitempty"`
	MainColor   *string `json:"mainColor,omitempty"`
	CollarColor *string `json:"collarColor,omitempty"`
	CuffColor   *string `json:"cuffColor,omitempty"`
	ButtonColor *string `json:"buttonColor,omitempty"`
	PocketColor *string `json:"pocketColor,omitempty"`
	SleeveColor *string `json:"sleeveColor,omitempty"`
	LiningColor *string `json:"liningColor,omitempty"`
	TrimColor   *string `json:"trimColor,omitempty"`
	AccentColor *string `json:"accentColor,omitempty"`

	FabricType *string `json:"fabricType,omitempty"`

	CollarStyle       *string `json:"collarStyle,omitempty"`
	CuffStyle         *string `json:"cuffStyle,omitempty"`
	PocketStyle       *string `json:"pocketStyle,omitempty"`
	ButtonStyle       *string `json:"buttonStyle,omitempty"`
	ButtonCount       *string `json:"buttonCount,omitempty"`
	FitStyle          *string `json:"fitStyle,omitempty"`
	Monogram          *string `json:"monogram,omitempty"`
	WaistbandStyle    *string `json:"waistbandStyle,omitempty"`
	HemStyle          *string `json:"hemStyle,omitempty"`
	BeltLoops         *string `json:"beltLoops,omitempty"`
	LapelStyle        *string `json:"lapelStyle,omitempty"`
	VentStyle         *string `json:"ventStyle,omitempty"`
	LiningStyle       *string `json:"liningStyle,omitempty"`
	SleeveButtonStyle *string `json:"sleeveButtonStyle,omitempty"`
}

// AttributeKey names a semantic attribute as the renderer sees it.
type AttributeKey string

const (
	AttrColor             AttributeKey = "color"
	AttrFabricColor       AttributeKey = "fabricColor"
	AttrMainColor         AttributeKey = "mainColor"
	AttrCollarColor       AttributeKey = "collarColor"
	AttrCuffColor         AttributeKey = "cuffColor"
	AttrButtonColor       AttributeKey = "buttonColor"
	AttrPocketColor       AttributeKey = "pocketColor"
	AttrSleeveColor       AttributeKey = "sleeveColor"
	AttrLiningColor       AttributeKey = "liningColor"
	AttrTrimColor         AttributeKey = "trimColor"
	AttrAccentColor       AttributeKey = "accentColor"
	AttrFabricType        AttributeKey = "fabricType"
	AttrCollarStyle       AttributeKey = "collarStyle"
	AttrCuffStyle         AttributeKey = "cuffStyle"
	AttrPocketStyle       AttributeKey = "pocketStyle"
	AttrButtonStyle       AttributeKey = "buttonStyle"
	AttrButtonCount       AttributeKey = "buttonCount"
	AttrFitStyle          AttributeKey = "fitStyle"
	AttrMonogram          AttributeKey = "monogram"
	AttrWaistbandStyle    AttributeKey = "waistbandStyle"
	AttrHemStyle          AttributeKey = "hemStyle"
	AttrBeltLoops         AttributeKey = "beltLoops"
	AttrLapelStyle        AttributeKey = "lapelStyle"
	AttrVentStyle         AttributeKey = "ventStyle"
	AttrLiningStyle       AttributeKey = "liningStyle"
	AttrSleeveButtonStyle AttributeKey = "sleeveButtonStyle"
)

// Field returns the slot backing key. It panics on keys outside the declared set, which
// indicates a programming error in a classification table.
func (a *VisualAttributes) Field(key AttributeKey) **string {
	switch key {
	case AttrColor:
		return &a.Color
	case AttrFabricColor:
		return &a.FabricColor
	case AttrMainColor:
		return &a.MainColor
	case AttrCollarColor:
		return &a.CollarColor
	case AttrCuffColor:
		return &a.CuffColor
	case AttrButtonColor:
		return &a.ButtonColor
	case AttrPocketColor:
		return &a.PocketColor
	case AttrSleeveColor:
		return &a.SleeveColor
	case AttrLiningColor:
		return &a.LiningColor
	case AttrTrimColor:
		return &a.TrimColor
	case AttrAccentColor:
		return &a.AccentColor
	case AttrFabricType:
		return &a.FabricType
	case AttrCollarStyle:
		return &a.CollarStyle
	case AttrCuffStyle:
		return &a.CuffStyle
	case AttrPocketStyle:
		return &a.PocketStyle
	case AttrButtonStyle:
		return &a.ButtonStyle
	case AttrButtonCount:
		return &a.ButtonCount
	case AttrFitStyle:
		return &a.FitStyle
	case AttrMonogram:
		return &a.Monogram
	case AttrWaistbandStyle:
		return &a.WaistbandStyle
	case AttrHemStyle:
		return &a.HemStyle
	case AttrBeltLoops:
		return &a.BeltLoops
	case AttrLapelStyle:
		return &a.LapelStyle
	case AttrVentStyle:
		return &a.VentStyle
	case AttrLiningStyle:
		return &a.LiningStyle
	case AttrSleeveButtonStyle:
		return &a.SleeveButtonStyle
	}
	panic("domain: unknown attribute key " + string(key))
}

// Set assigns value to key, overwriting any previous value.
func (a *VisualAttributes) Set(key AttributeKey, value string) {
	v := value
	*a.Field(key) = &v
}

// Get returns the value for key and whether it has been set.
func (a *VisualAttributes) Get(key AttributeKey) (string, bool) {
	slot := *a.Field(key)
	if slot == nil {
		return "", false
	}
	return *slot, true
}

// AllAttributeKeys lists every semantic key in declaration order.
var AllAttributeKeys = []AttributeKey{
	AttrColor, AttrFabricColor, AttrMainColor, AttrCollarColor, AttrCuffColor, AttrButtonColor,
	AttrPocketColor, AttrSleeveColor, AttrLiningColor, AttrTrimColor, AttrAccentColor,
	AttrFabricType,
	AttrCollarStyle, AttrCuffStyle, AttrPocketStyle, AttrButtonStyle, AttrButtonCount, AttrFitStyle,
	AttrMonogram, AttrWaistbandStyle, AttrHemStyle, AttrBeltLoops, AttrLapelStyle, AttrVentStyle,
	AttrLiningStyle, AttrSleeveButtonStyle,
}

// ToMap flattens the record into the free-form key/value projection handed to renderers.
func (a *VisualAttributes) ToMap() map[string]string {
	out := make(map[string]string)
	for _, key := range AllAttributeKeys {
		if value, ok := a.Get(key); ok {
			out[string(key)] = value
		}
	}
	return out
}
