package prompt

import "github.com/bryanwahyu/ecoscan/internal/domain/ai"

// ResultSchema is the generation constraint for a recyclability verdict.
// scannedImageUrl and errorDetails are added after generation and are not part
// of it.
func ResultSchema() *ai.Schema {
	return ai.Object("Recyclability verdict for the scanned item",
		ai.Prop("itemName", ai.String("The name of the scanned item")),
		ai.Prop("recyclable", ai.Boolean("Whether the item is recyclable")),
		ai.Prop("category", ai.String("The material category (e.g., Plastic, Glass, Paper, Metal)")),
		ai.Prop("recyclingCode", ai.String("The recycling code if applicable (e.g., #1 PET, #2 HDPE)")),
		ai.Prop("instructions", ai.String("Instructions for how to properly recycle or dispose of the item")),
		ai.Prop("impact", ai.Object("Environmental impact from recycling this item",
			ai.Prop("co2Saved", ai.String("Amount of CO2 saved by recycling this item")),
			ai.Prop("waterSaved", ai.String("Amount of water saved by recycling this item")),
		)),
		ai.Prop("alternativeOptions", ai.ArrayOf("Alternative disposal options if not recyclable",
			ai.Object("", ai.Prop("option", ai.String("Alternative option for handling the item"))),
		)),
		ai.Prop("recyclingTips", ai.ArrayOf("General recycling tips",
			ai.Object("", ai.Prop("tip", ai.String("General recycling tip relevant to this type of item"))),
		)),
	)
}
