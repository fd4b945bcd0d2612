package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ASUCICREPO/multilingual-contact-center/internal/analysis"
)

// entityColors maps detected entity categories to highlight colors.
var entityColors = map[string]string{
	"BOOK":            "#98DF8A",
	"BRAND":           "#FF9896",
	"COMMERCIAL_ITEM": "#C7C7C7",
	"DATE":            "#9EDAE5",
	"EVENT":           "#FFBB78",
	"GAME":            "#C49C94",
	"LOCATION":        "#C5B0D5",
	"MOVIE":           "#DBDB8D",
	"ORGANIZATION":    "#F7B6D2",
	"OTHERS":          "#AEC7E8",
	"OTHER":           "#17BECF",
	"PERSON":          "#BCBD22",
	"QUANTITY":        "#7F7F7F",
	"SOFTWARE":        "#E377C2",
	"SONG":            "#8C564B",
	"TITLE_OTHERS":    "#9467BD",
	"TITLE":           "#D62728",
}

// fallbackColor highlights categories outside the fixed table.
const fallbackColor = "#AEC7E8"

const spanTemplate = `<span class="entity-highlight" data-tooltip="Type: %s - Confidence: %s%%" style="border-bottom: 3px solid %s; display: inline-block; cursor: help; position: relative; margin: 0 1px;">%s</span>`

// Highlight wraps each detected entity's text in an inline highlight span
// carrying the category color and a confidence tooltip.
//
// Entities are processed by the last occurrence of their substring in the
// original text, rightmost first, so that a replacement never shifts the
// position of a not-yet-processed match: earlier replacements would lengthen
// the string and corrupt naive left-to-right offsets. Each entity replaces
// the first occurrence of its substring. When the same literal text repeats
// with different categories the attribution is ambiguous; that matches the
// provider-offset-free behavior this dashboard has always had.
func Highlight(text string, entities []analysis.Entity) string {
	if len(entities) == 0 {
		return text
	}

	sorted := make([]analysis.Entity, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.LastIndex(text, sorted[i].Text) > strings.LastIndex(text, sorted[j].Text)
	})

	processed := text
	for _, entity := range sorted {
		if entity.Text == "" {
			continue
		}
		color, ok := entityColors[entity.Type]
		if !ok {
			color = fallbackColor
		}
		score := fmt.Sprintf("%.1f", entity.Score*100)
		span := fmt.Sprintf(spanTemplate, entity.Type, score, color, entity.Text)
		processed = strings.Replace(processed, entity.Text, span, 1)
	}
	return processed
}
