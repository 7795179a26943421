package records

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStrNormalizesScalarAndArray(t *testing.T) {
	rec := Record{Fields: map[string]any{
		"scalar": "U1",
		"array":  []any{"Pong"},
		"empty":  []any{},
		"number": 42.0,
	}}

	assert.Equal(t, "U1", rec.Str("scalar"))
	assert.Equal(t, "Pong", rec.Str("array"))
	assert.Equal(t, "", rec.Str("empty"))
	assert.Equal(t, "", rec.Str("number"))
	assert.Equal(t, "", rec.Str("missing"))
}

func TestStrList(t *testing.T) {
	rec := Record{Fields: map[string]any{
		"refs":   []any{"g1", "g2"},
		"scalar": "g3",
		"mixed":  []any{"g4", 7.0, ""},
	}}

	assert.Equal(t, []string{"g1", "g2"}, rec.StrList("refs"))
	assert.Equal(t, []string{"g3"}, rec.StrList("scalar"))
	assert.Equal(t, []string{"g4"}, rec.StrList("mixed"))
	assert.Nil(t, rec.StrList("missing"))
}

func TestFloatDefaultsToZero(t *testing.T) {
	rec := Record{Fields: map[string]any{
		"score": 4.5,
		"text":  "not a number",
	}}

	assert.Equal(t, 4.5, rec.Float("score"))
	assert.Equal(t, 0.0, rec.Float("text"))
	assert.Equal(t, 0.0, rec.Float("missing"))
}

func TestHasRef(t *testing.T) {
	rec := Record{Fields: map[string]any{
		"Game":   []any{"g1", "g2"},
		"Player": "u1",
	}}

	assert.True(t, rec.HasRef("Game", "g1"))
	assert.True(t, rec.HasRef("Game", "g2"))
	assert.False(t, rec.HasRef("Game", "g3"))
	assert.True(t, rec.HasRef("Player", "u1"))
	assert.False(t, rec.HasRef("Player", ""))
	assert.False(t, rec.HasRef("missing", "g1"))
}

func TestCreatedAt(t *testing.T) {
	rec := Record{
		CreatedTime: "2024-01-01T10:00:00Z",
		Fields: map[string]any{
			"Created At": "2024-01-02T12:30:00Z",
		},
	}
	assert.Equal(t, time.Date(2024, 1, 2, 12, 30, 0, 0, time.UTC), rec.CreatedAt("Created At"))

	// Field absent: fall back to record metadata
	rec.Fields = map[string]any{}
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), rec.CreatedAt("Created At"))

	// Date-only values parse too
	rec.Fields = map[string]any{"Created At": "2024-01-02"}
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), rec.CreatedAt("Created At"))

	// Nothing usable sorts as epoch zero
	empty := Record{}
	assert.True(t, empty.CreatedAt("Created At").IsZero())
}

func TestEscapeFormula(t *testing.T) {
	assert.Equal(t, `plain`, EscapeFormula(`plain`))
	assert.Equal(t, `say \"hi\"`, EscapeFormula(`say "hi"`))
	assert.Equal(t, `back\\slash`, EscapeFormula(`back\slash`))
}
