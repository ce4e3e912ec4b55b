package recycling

// Impact is the estimated environmental saving from recycling the item.
// Values are human-scaled quantity strings with units inline ("0.3 kg").
type Impact struct {
	CO2Saved   string `json:"co2Saved"`
	WaterSaved string `json:"waterSaved"`
}

// AlternativeOption is one disposal alternative.
type AlternativeOption struct {
	Option string `json:"option"`
}

// RecyclingTip is one general tip for the item's material.
type RecyclingTip struct {
	Tip string `json:"tip"`
}

// AnalysisResult is the recyclability verdict for a single scanned item.
type AnalysisResult struct {
	ItemName           string              `json:"itemName"`
	Recyclable         bool                `json:"recyclable"`
	Category           string              `json:"category"`
	RecyclingCode      string              `json:"recyclingCode"`
	Instructions       string              `json:"instructions"`
	Impact             Impact              `json:"impact"`
	AlternativeOptions []AlternativeOption `json:"alternativeOptions"`
	RecyclingTips      []RecyclingTip      `json:"recyclingTips"`
	ScannedImageURL    string              `json:"scannedImageUrl"`
	ErrorDetails       string              `json:"errorDetails,omitempty"`
}

// ExpectedListLen is the number of alternatives and tips the model is asked for.
const ExpectedListLen = 3

// Fallback literals.
const (
	FallbackItemName     = "Unknown Item"
	FallbackCategory     = "Unknown"
	FallbackInstructions = "Error analyzing image. Please try again."
	FallbackCO2Saved     = "0 kg"
	FallbackWaterSaved   = "0L"
)

// FallbackResult builds the fixed placeholder verdict returned when analysis
// fails. Every field of the success shape is populated.
func FallbackResult(imagePath string, cause error) AnalysisResult {
	details := "unknown error"
	if cause != nil {
		details = cause.Error()
	}
	return AnalysisResult{
		ItemName:      FallbackItemName,
		Recyclable:    false,
		Category:      FallbackCategory,
		RecyclingCode: "",
		Instructions:  FallbackInstructions,
		Impact: Impact{
			CO2Saved:   FallbackCO2Saved,
			WaterSaved: FallbackWaterSaved,
		},
		AlternativeOptions: []AlternativeOption{
			{Option: "Check local special waste disposal options"},
			{Option: "Look for brands with recyclable alternatives"},
			{Option: "Consider reusing the item if possible"},
		},
		RecyclingTips: []RecyclingTip{
			{Tip: "Always rinse containers before recycling"},
			{Tip: "Check the recycling number on plastic items"},
			{Tip: "Remove caps and labels when required by local guidelines"},
		},
		ScannedImageURL: imagePath,
		ErrorDetails:    details,
	}
}
