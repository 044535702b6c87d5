// Package extract turns recognized recipe text into structured fields via
// one generation call per field. Field calls are independent and run
// concurrently behind a single join barrier.
package extract

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrRefused means the generation capability found no recipe content in the
// source text: the description field, which anchors search indexing, came
// back as the refusal sentinel.
var ErrRefused = errors.New("extract: source text is not a recognizable recipe")

// Generator is the text-generation capability consumed per field.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// RecipeFields aggregates the eight extracted fields. Nil pointers mark
// refused or unparseable values; Description is always present because its
// refusal aborts extraction entirely.
type RecipeFields struct {
	Title       *string
	Author      *string
	Ingredients *string
	Steps       *string
	Equipment   *string
	Description string
	TimeMinutes *int
	ServingsMin *int
	ServingsMax *int
}

const (
	fieldIngredients = iota
	fieldSteps
	fieldEquipment
	fieldTime
	fieldServings
	fieldDescription
	fieldTitle
	fieldAuthor
	fieldCount
)

var instructions = [fieldCount]struct {
	name   string
	prompt string
}{
	fieldIngredients: {"ingredients", ingredientsInstruction},
	fieldSteps:       {"steps", stepsInstruction},
	fieldEquipment:   {"equipment", equipmentInstruction},
	fieldTime:        {"time", timeInstruction},
	fieldServings:    {"servings", servingsInstruction},
	fieldDescription: {"description", descriptionInstruction},
	fieldTitle:       {"title", titleInstruction},
	fieldAuthor:      {"author", authorInstruction},
}

// Run issues all field extractions concurrently against sourceText and joins
// before parsing. The first capability failure cancels the remaining sibling
// calls and fails the whole extraction; per-field parse failures only null
// the affected field.
func Run(ctx context.Context, gen Generator, sourceText string) (*RecipeFields, error) {
	var raw [fieldCount]string

	g, ctx := errgroup.WithContext(ctx)
	for i := range instructions {
		g.Go(func() error {
			result, err := gen.Generate(ctx, instructions[i].prompt, sourceText)
			if err != nil {
				return fmt.Errorf("extracting %s: %w", instructions[i].name, err)
			}
			raw[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if refused(raw[fieldDescription]) {
		return nil, ErrRefused
	}

	fields := &RecipeFields{
		Title:       parseFreeText(raw[fieldTitle]),
		Author:      parseFreeText(raw[fieldAuthor]),
		Ingredients: parseFreeText(raw[fieldIngredients]),
		Steps:       parseFreeText(raw[fieldSteps]),
		Equipment:   parseFreeText(raw[fieldEquipment]),
		Description: *parseFreeText(raw[fieldDescription]),
		TimeMinutes: parseMinutes(raw[fieldTime]),
	}
	fields.ServingsMin, fields.ServingsMax = parseServings(raw[fieldServings])
	return fields, nil
}
