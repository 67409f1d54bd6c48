package domain

import "slices"

// Aspect is one of the fixed product dimensions a review can express sentiment about.
type Aspect string

const (
	AspectCamera      Aspect = "CAMERA"
	AspectPerformance Aspect = "PERFORMANCE"
	AspectFeatures    Aspect = "FEATURES"
	AspectDesign      Aspect = "DESIGN"
	AspectPrice       Aspect = "PRICE"
	AspectScreen      Aspect = "SCREEN"
	AspectBattery     Aspect = "BATTERY"
	AspectGeneral     Aspect = "GENERAL"
	AspectStorage     Aspect = "STORAGE"
	AspectSerAcc      Aspect = "SER&ACC"
)

// Label is a classifier output class. Index order matters: the classifier
// emits the position of the label in Labels.
type Label string

const (
	LabelNone     Label = "O"
	LabelNegative Label = "NEGATIVE"
	LabelNeutral  Label = "NEUTRAL"
	LabelPositive Label = "POSITIVE"
)

// Labels is the classifier's label vocabulary in index order.
var Labels = [...]Label{LabelNone, LabelNegative, LabelNeutral, LabelPositive}

// Polarity is a sentiment value that can be persisted as a rating.
// LabelNone is never a polarity.
type Polarity string

const (
	PolarityNegative Polarity = Polarity(LabelNegative)
	PolarityNeutral  Polarity = Polarity(LabelNeutral)
	PolarityPositive Polarity = Polarity(LabelPositive)
)

func ParsePolarity(s string) (Polarity, bool) {
	switch p := Polarity(s); p {
	case PolarityNegative, PolarityNeutral, PolarityPositive:
		return p, true
	default:
		return "", false
	}
}

// AspectSchema pairs the ordered aspect list with an identifier, so a
// classifier trained against a different aspect set fails loudly instead of
// being read positionally against the wrong names.
type AspectSchema struct {
	ID      string
	Aspects []Aspect
}

// DefaultSchema is the aspect schema the deployed classifier head is trained on.
var DefaultSchema = AspectSchema{
	ID: "aspects/v1",
	Aspects: []Aspect{
		AspectCamera,
		AspectPerformance,
		AspectFeatures,
		AspectDesign,
		AspectPrice,
		AspectScreen,
		AspectBattery,
		AspectGeneral,
		AspectStorage,
		AspectSerAcc,
	},
}

// Width is the number of classifier outputs the schema expects.
func (s AspectSchema) Width() int {
	return len(s.Aspects)
}

func (s AspectSchema) Contains(a Aspect) bool {
	return slices.Contains(s.Aspects, a)
}
