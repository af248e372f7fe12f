// Demo program: runs the reference articles through the scorer and prints their reports
package main

import (
	"fmt"
	"strings"

	"github.com/ppiankov/fnd/internal/model"
	"github.com/ppiankov/fnd/internal/pipeline"
	"github.com/ppiankov/fnd/internal/score"
)

type scenario struct {
	name   string
	source string
	text   string
}

const neutralArticle = `City Council Approves New Library Budget
The city council voted on June 12, 2024 to approve a revised budget for the public library system. The plan adds funding for longer weekend hours, new computers, and a mobile reading program that will visit neighborhoods without a branch. Council members discussed the proposal during a two hour meeting that included comments from residents, teachers, and library staff. The finance director explained that the cost will be covered by savings from an energy efficiency project completed last year. Several residents asked about accessibility improvements, and the director confirmed that ramps and updated signage are included in the second phase. The library board will publish a detailed schedule next month. A copy of the approved budget is available at https://www.example.org/library-budget for anyone who wants to review the numbers. The next council meeting will take place in July, when members expect to review the parks department plan and a proposal for bicycle lanes downtown.`

var scenarios = []scenario{
	{
		name:   "Reputable outlet, clean article",
		source: "bbc.com",
		text:   "Calm Report On Policy\nOfficials announced the policy change on March 3, 2024. See https://example.com for details.",
	},
	{
		name:   "Suspicious outlet, sensational article",
		source: "infowars.com",
		text:   "SHOCKING COVER-UP EXPOSED!!\nSources say the idiot liar is corrupt.",
	},
	{
		name:   "Pasted neutral article",
		source: model.PastedTextSource,
		text:   neutralArticle,
	},
}

func main() {
	scorer := score.NewScorer()

	for i, s := range scenarios {
		if i > 0 {
			fmt.Println(strings.Repeat("#", 60))
			fmt.Println()
		}
		fmt.Printf("=== %s ===\n\n", s.name)
		fmt.Print(pipeline.FormatText(scorer.Analyze(s.source, s.text)))
		fmt.Println()
	}
}
