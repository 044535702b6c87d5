package extract

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator answers each field instruction from a keyword table and
// records the instructions it saw.
type scriptedGenerator struct {
	mu      sync.Mutex
	answers map[string]string
	seen    []string
	err     error
}

func (g *scriptedGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	g.mu.Lock()
	g.seen = append(g.seen, system)
	g.mu.Unlock()

	if g.err != nil {
		return "", g.err
	}
	for keyword, answer := range g.answers {
		if strings.Contains(system, keyword) {
			return answer, nil
		}
	}
	return RefusalSentinel, nil
}

func fullAnswers() map[string]string {
	return map[string]string{
		"ingredients extraction": "- 1 lb shrimp\n- 8 oz linguine\n- 4 cloves garlic",
		"steps extraction":       "- Boil pasta\n- Saute garlic\n- Toss together",
		"equipment extraction":   "- Large pot\n- Skillet",
		"time extraction":        "45",
		"servings extraction":    "2-4",
		"description agent":      "Bright lemony shrimp pasta, an easy Italian weeknight dish with garlic and fresh herbs.",
		"titling agent":          "Lemon Garlic Shrimp Pasta",
		"author or writer":       "Chef Maria Rossi",
	}
}

func TestRunExtractsAllFields(t *testing.T) {
	gen := &scriptedGenerator{answers: fullAnswers()}

	fields, err := Run(context.Background(), gen, "Lemon Garlic Shrimp Pasta... 45 minutes... serves 2-4")
	require.NoError(t, err)

	require.NotNil(t, fields.Title)
	assert.Equal(t, "Lemon Garlic Shrimp Pasta", *fields.Title)
	require.NotNil(t, fields.Author)
	assert.Equal(t, "Chef Maria Rossi", *fields.Author)
	require.NotNil(t, fields.Ingredients)
	assert.Contains(t, *fields.Ingredients, "shrimp")
	require.NotNil(t, fields.TimeMinutes)
	assert.Equal(t, 45, *fields.TimeMinutes)
	require.NotNil(t, fields.ServingsMin)
	require.NotNil(t, fields.ServingsMax)
	assert.Equal(t, 2, *fields.ServingsMin)
	assert.Equal(t, 5, *fields.ServingsMax)
	assert.NotEmpty(t, fields.Description)

	// all eight field requests were dispatched
	assert.Len(t, gen.seen, fieldCount)
}

func TestRunDescriptionRefusalIsFatal(t *testing.T) {
	answers := fullAnswers()
	answers["description agent"] = RefusalSentinel
	gen := &scriptedGenerator{answers: answers}

	_, err := Run(context.Background(), gen, "a photo of a cat")
	assert.ErrorIs(t, err, ErrRefused)
}

func TestRunTolerateNonDescriptionRefusals(t *testing.T) {
	answers := fullAnswers()
	answers["author or writer"] = RefusalSentinel
	answers["equipment extraction"] = "   "
	answers["time extraction"] = "about an hour"
	gen := &scriptedGenerator{answers: answers}

	fields, err := Run(context.Background(), gen, "some recipe text")
	require.NoError(t, err)

	assert.Nil(t, fields.Author)
	assert.Nil(t, fields.Equipment)
	assert.Nil(t, fields.TimeMinutes)
	assert.NotEmpty(t, fields.Description)
}

func TestRunPropagatesCapabilityFailure(t *testing.T) {
	wantErr := errors.New("quota exceeded")
	gen := &scriptedGenerator{err: wantErr}

	_, err := Run(context.Background(), gen, "some recipe text")
	assert.ErrorIs(t, err, wantErr)
}
