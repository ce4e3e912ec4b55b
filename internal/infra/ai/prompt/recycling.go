package prompt

import (
	"encoding/json"
	"strings"

	"github.com/bryanwahyu/ecoscan/internal/domain/recycling"
)

// Example is the worked example embedded in the prompt. It fixes tone, units
// and level of detail that the schema alone cannot express.
var Example = recycling.AnalysisResult{
	ItemName:      "Plastic Water Bottle",
	Recyclable:    true,
	Category:      "Plastic",
	RecyclingCode: "#1 PET",
	Instructions:  "Empty, rinse, and replace cap before recycling in your curbside bin. Remove label if possible.",
	Impact: recycling.Impact{
		CO2Saved:   "0.3 kg",
		WaterSaved: "4.8L",
	},
	AlternativeOptions: []recycling.AlternativeOption{
		{Option: "Reuse the bottle for storing homemade beverages"},
		{Option: "Use for DIY crafts or gardening projects"},
		{Option: "Look for brands with recyclable packaging"},
	},
	RecyclingTips: []recycling.RecyclingTip{
		{Tip: "Always rinse containers before recycling"},
		{Tip: "Check the recycling number on plastic items"},
		{Tip: "Remove caps and labels when required by local guidelines"},
	},
}

const instructions = `Analyze this image and identify the item shown. Then determine if it's recyclable,
what material category it belongs to, and provide recycling instructions.

For recyclable items, provide estimated environmental impact metrics.

Be specific about the recycling code for plastics (e.g., #1 PET, #2 HDPE).

Also provide 3 alternative options for disposal if the item is not recyclable,
and 3 general recycling tips relevant to this type of item.

If you're unsure about the exact item, make your best guess based on visible characteristics.
Never refuse to answer.

Here's an example of the expected output format:

`

// RecyclingPrompt returns the instruction text sent alongside the image.
func RecyclingPrompt() string {
	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString(ExampleJSON())
	b.WriteString("\n\nRespond ONLY with the JSON object matching the schema.")
	return b.String()
}

// ExampleJSON renders Example in the wire shape, without the
// post-processing fields.
func ExampleJSON() string {
	// scannedImageUrl is injected after generation, never asked from the model
	type generated struct {
		ItemName           string                        `json:"itemName"`
		Recyclable         bool                          `json:"recyclable"`
		Category           string                        `json:"category"`
		RecyclingCode      string                        `json:"recyclingCode"`
		Instructions       string                        `json:"instructions"`
		Impact             recycling.Impact              `json:"impact"`
		AlternativeOptions []recycling.AlternativeOption `json:"alternativeOptions"`
		RecyclingTips      []recycling.RecyclingTip      `json:"recyclingTips"`
	}
	b, err := json.MarshalIndent(generated{
		ItemName:           Example.ItemName,
		Recyclable:         Example.Recyclable,
		Category:           Example.Category,
		RecyclingCode:      Example.RecyclingCode,
		Instructions:       Example.Instructions,
		Impact:             Example.Impact,
		AlternativeOptions: Example.AlternativeOptions,
		RecyclingTips:      Example.RecyclingTips,
	}, "", "  ")
	if err != nil {
		// plain strings and bools cannot fail to marshal
		panic(err)
	}
	return string(b)
}
