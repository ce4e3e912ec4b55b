package recycling

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrSchemaViolation is returned when a model response is valid JSON but does
// not carry every required field.
var ErrSchemaViolation = errors.New("response violates result schema")

// wire types track presence so that false and "" count as supplied values.
type wireImpact struct {
	CO2Saved   *string `json:"co2Saved" validate:"required"`
	WaterSaved *string `json:"waterSaved" validate:"required"`
}

type wireOption struct {
	Option *string `json:"option" validate:"required"`
}

type wireTip struct {
	Tip *string `json:"tip" validate:"required"`
}

type wireResult struct {
	ItemName           *string      `json:"itemName" validate:"required"`
	Recyclable         *bool        `json:"recyclable" validate:"required"`
	Category           *string      `json:"category" validate:"required"`
	RecyclingCode      *string      `json:"recyclingCode" validate:"required"`
	Instructions       *string      `json:"instructions" validate:"required"`
	Impact             *wireImpact  `json:"impact" validate:"required"`
	AlternativeOptions []wireOption `json:"alternativeOptions" validate:"required,dive"`
	RecyclingTips      []wireTip    `json:"recyclingTips" validate:"required,dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeResult parses a model response into an AnalysisResult. The text must be
// a single JSON object, optionally wrapped in one markdown code fence, holding
// every field of the generation schema. List lengths are not enforced.
func DecodeResult(text string) (AnalysisResult, error) {
	body := stripCodeFence(text)
	if body == "" {
		return AnalysisResult{}, fmt.Errorf("decode result: empty body")
	}

	var w wireResult
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&w); err != nil {
		return AnalysisResult{}, fmt.Errorf("decode result: %w", err)
	}
	if dec.More() {
		return AnalysisResult{}, fmt.Errorf("decode result: trailing data after JSON object")
	}
	if err := validate.Struct(&w); err != nil {
		return AnalysisResult{}, fmt.Errorf("%w: %s", ErrSchemaViolation, missingFields(err))
	}

	out := AnalysisResult{
		ItemName:      *w.ItemName,
		Recyclable:    *w.Recyclable,
		Category:      *w.Category,
		RecyclingCode: *w.RecyclingCode,
		Instructions:  *w.Instructions,
		Impact: Impact{
			CO2Saved:   *w.Impact.CO2Saved,
			WaterSaved: *w.Impact.WaterSaved,
		},
		AlternativeOptions: make([]AlternativeOption, 0, len(w.AlternativeOptions)),
		RecyclingTips:      make([]RecyclingTip, 0, len(w.RecyclingTips)),
	}
	for _, o := range w.AlternativeOptions {
		out.AlternativeOptions = append(out.AlternativeOptions, AlternativeOption{Option: *o.Option})
	}
	for _, t := range w.RecyclingTips {
		out.RecyclingTips = append(out.RecyclingTips, RecyclingTip{Tip: *t.Tip})
	}
	return out, nil
}

func missingFields(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, strings.TrimPrefix(fe.Namespace(), "wireResult."))
	}
	return "missing " + strings.Join(names, ", ")
}

// stripCodeFence removes a single ```json ... ``` wrapper if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		s = s[nl+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
