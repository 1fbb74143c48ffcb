package domain

import "time"

// StepKind classifies how a customization step is presented and interpreted.
type StepKind string

const (
	// StepKindColor offers swatches; the option color drives semantic color attributes.
	StepKindColor StepKind = "color"
	// StepKindTexture offers fabrics; the option value becomes the fabric type attribute.
	StepKindTexture StepKind = "texture"
	// StepKindComponent offers structural variants (collar shape, pocket style, ...).
	StepKindComponent StepKind = "component"
)

// Valid reports whether the kind is one of the recognised step kinds.
func (k StepKind) Valid() bool {
	switch k {
	case StepKindColor, StepKindTexture, StepKindComponent:
		return true
	}
	return false
}

// LayerDirectives lists visual layer identifiers an option asks the renderer to show or hide.
type LayerDirectives struct {
	Show []string `json:"show"`
	Hide []string `json:"hide"`
}

// Clone returns a deep copy of the directives, preserving nil.
func (l *LayerDirectives) Clone() *LayerDirectives {
	if l == nil {
		return nil
	}
	return &LayerDirectives{
		Show: append([]string(nil), l.Show...),
		Hide: append([]string(nil), l.Hide...),
	}
}

// CustomizationOption is one selectable value within a step.
type CustomizationOption struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Value     string           `json:"value"`
	Price     int64            `json:"price"`
	Thumbnail string           `json:"thumbnail,omitempty"`
	Color     string           `json:"color,omitempty"`
	Layers    *LayerDirectives `json:"layerControls,omitempty"`
}

// CustomizationStep is one customization dimension offered for a product. Steps are immutable once loaded.
type CustomizationStep struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Kind     StepKind              `json:"type"`
	Category string                `json:"category"`
	Options  []CustomizationOption `json:"values"`
}

// Option returns the option with the supplied identifier.
func (s CustomizationStep) Option(optionID string) (CustomizationOption, bool) {
	for _, option := range s.Options {
		if option.ID == optionID {
			return option, true
		}
	}
	return CustomizationOption{}, false
}

// Selection records the option currently chosen for a step.
type Selection struct {
	StepID   string           `json:"optionId"`
	OptionID string           `json:"valueId"`
	Price    int64            `json:"price"`
	Value    string           `json:"value"`
	Color    string           `json:"color,omitempty"`
	Layers   *LayerDirectives `json:"layerControls,omitempty"`
}

// SizeType selects between catalogue sizes and made-to-measure sizing.
type SizeType string

const (
	// SizeTypeStandard uses a catalogue size and fit.
	SizeTypeStandard SizeType = "standard"
	// SizeTypeCustom uses the buyer's body measurements and carries a surcharge.
	SizeTypeCustom SizeType = "custom"
)

// Valid reports whether the size type is recognised.
func (t SizeType) Valid() bool {
	return t == SizeTypeStandard || t == SizeTypeCustom
}

// MeasurementField names one of the seven custom body measurements.
type MeasurementField string

const (
	MeasurementNeck     MeasurementField = "neck"
	MeasurementChest    MeasurementField = "chest"
	MeasurementStomach  MeasurementField = "stomach"
	MeasurementHip      MeasurementField = "hip"
	MeasurementLength   MeasurementField = "length"
	MeasurementShoulder MeasurementField = "shoulder"
	MeasurementSleeve   MeasurementField = "sleeve"
)

// MeasurementFields lists the custom measurement fields in presentation order.
var MeasurementFields = []MeasurementField{
	MeasurementNeck,
	MeasurementChest,
	MeasurementStomach,
	MeasurementHip,
	MeasurementLength,
	MeasurementShoulder,
	MeasurementSleeve,
}

// CustomMeasurements holds body measurements in inches. Values are never negative.
type CustomMeasurements struct {
	Neck     float64 `json:"neck"`
	Chest    float64 `json:"chest"`
	Stomach  float64 `json:"stomach"`
	Hip      float64 `json:"hip"`
	Length   float64 `json:"length"`
	Shoulder float64 `json:"shoulder"`
	Sleeve   float64 `json:"sleeve"`
}

// Get returns the value stored for field.
func (m CustomMeasurements) Get(field MeasurementField) (float64, bool) {
	switch field {
	case MeasurementNeck:
		return m.Neck, true
	case MeasurementChest:
		return m.Chest, true
	case MeasurementStomach:
		return m.Stomach, true
	case MeasurementHip:
		return m.Hip, true
	case MeasurementLength:
		return m.Length, true
	case MeasurementShoulder:
		return m.Shoulder, true
	case MeasurementSleeve:
		return m.Sleeve, true
	}
	return 0, false
}

// Set stores value for field, reporting false for unknown fields.
func (m *CustomMeasurements) Set(field MeasurementField, value float64) bool {
	switch field {
	case MeasurementNeck:
		m.Neck = value
	case MeasurementChest:
		m.Chest = value
	case MeasurementStomach:
		m.Stomach = value
	case MeasurementHip:
		m.Hip = value
	case MeasurementLength:
		m.Length = value
	case MeasurementShoulder:
		m.Shoulder = value
	case MeasurementSleeve:
		m.Sleeve = value
	default:
		return false
	}
	return true
}

// AnyPositive reports whether at least one measurement is greater than zero.
func (m CustomMeasurements) AnyPositive() bool {
	for _, field := range MeasurementFields {
		if v, _ := m.Get(field); v > 0 {
			return true
		}
	}
	return false
}

// MeasurementProfile captures the sizing mode and its associated values.
type MeasurementProfile struct {
	SizeType     SizeType            `json:"sizeType"`
	StandardSize string              `json:"standardSize,omitempty"`
	FitType      string              `json:"fitType,omitempty"`
	Custom       *CustomMeasurements `json:"customMeasurements,omitempty"`
}

// Clone returns a copy that does not share the custom measurements pointer.
func (p MeasurementProfile) Clone() MeasurementProfile {
	if p.Custom != nil {
		custom := *p.Custom
		p.Custom = &custom
	}
	return p
}

// MeasurementUpdate is a partial merge applied to a MeasurementProfile. Nil fields are left untouched.
type MeasurementUpdate struct {
	SizeType     *SizeType
	StandardSize *string
	FitType      *string
	Custom       map[MeasurementField]float64
}

// StandardSize describes a catalogue size and its body ranges in inches.
type StandardSize struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Chest string `json:"chest"`
	Neck  string `json:"neck"`
}

// FitType describes a catalogue fit.
type FitType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProductInfo is the product metadata a configurator session is opened for.
type ProductInfo struct {
	ID          string
	Name        string
	BasePrice   int64
	Currency    string
	ProductType string
}

// OrderCustomization is one line of the order summary.
type OrderCustomization struct {
	Category string `json:"category"`
	Value    string `json:"value"`
	Price    int64  `json:"price"`
}

// OrderSummary is the snapshot handed to the checkout collaborator.
type OrderSummary struct {
	ProductName    string               `json:"productName"`
	BasePrice      int64                `json:"basePrice"`
	Currency       string               `json:"currency"`
	Customizations []OrderCustomization `json:"customizations"`
	Measurement    MeasurementProfile   `json:"measurementData"`
	TotalPrice     int64                `json:"totalPrice"`
}

// OrderSubmission wraps an order summary for delivery to checkout.
type OrderSubmission struct {
	SubmissionID string            `json:"submissionId"`
	SessionID    string            `json:"sessionId,omitempty"`
	ProductID    string            `json:"productId"`
	Summary      OrderSummary      `json:"summary"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	SubmittedAt  time.Time         `json:"submittedAt"`
}

// Completion reports aggregate progress across customization steps and the measurement step.
type Completion struct {
	Completed  int `json:"completed"`
	TotalSteps int `json:"totalSteps"`
	Percent    int `json:"percent"`
}
