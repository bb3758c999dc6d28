package viewer

import (
	"context"
	"fmt"

	"lexi-backend/internal/model"
)

const keyFinding = "as the age of the deceased at the time of accident was held to be about 54-55 years by the learned Tribunal, being self-employed, as such, 10% of annual income should have been awarded on account of future prospects."

var daniDeviParagraphs = []string{
	"By way of present appeal, the appellants have questioned the adequacy of compensation awarded by the learned Motor Accident Claims Tribunal, Jind, for short 'the Tribunal', vide its award dated 03.04.2012.",
	"The facts, in brief, are that on 23.06.2011 the deceased (Hawa Singh) was going to his Village Jajanwala from Village Prabhuwala on bicycle, followed by his son Balwinder Singh on a separate bicycle. When the deceased reached near Gupta Brick Kiln, a jeep bearing registration No.HR-31-A-0426 being driven by respondent No.1 in a rash and negligent manner came from behind and struck the bicycle of deceased.",
	"On account of the death of Hawa Singh, his dependants filed claim petition before the learned Tribunal. The Tribunal assessed the annual income of the deceased as Rs.21,600/- and after applying the multiplier of 10, calculated the total dependency.",
	"In the present appeal, the appellants/claimants have sought enhancement of compensation.",
	"Learned counsel for both the parties are ad idem that there is no dispute regarding the annual income as well as deduction. However, learned counsel for the claimants/appellants argues that while assessing the annual income, future prospects should be awarded.",
	"Learned counsel for respondent No.1 submits that compensation awarded by the learned Tribunal is just and fair and therefore, no interference is warranted.",
	"Having heard the arguments advanced by learned counsel for both the parties and gone through the paper-book, I am of the considered view that " + keyFinding,
	"Besides this, with respect to the compensation awarded under the other conventional heads as well as multiplier, applying the principles of law laid down by Hon'ble Supreme Court in National Insurance Company Ltd. v. Pranay Sethi and others, the claimants are entitled for enhanced compensation.",
	"In view of the discussions made herein-above, the appellants are entitled for following enhanced compensation as detailed in the judgment.",
}

// marks holds the excerpt to emphasise inside a highlighted paragraph.
var marks = map[int]string{
	7: keyFinding,
}

// MockViewer serves one simulated judgment for any link.
type MockViewer struct{}

func NewMockViewer() *MockViewer {
	return &MockViewer{}
}

func (v *MockViewer) Open(ctx context.Context, link string, paragraph *int) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if link == "" {
		return nil, fmt.Errorf("%w: empty link", ErrDocumentNotFound)
	}

	doc := &model.Document{
		Link:       link,
		Title:      "Dani Devi and others v. Pritam Singh and another",
		Subtitle:   "Punjab and Haryana High Court • Motor Vehicle Act Case",
		Court:      "Punjab and Haryana High Court",
		CaseNumber: "FAO No. 4353 of 2012 (O&M) • Decided: 13.09.2022",
		Bench:      "Before: Mr. Harkesh Manuja, J.",
		Summary:    "Motor Vehicles Act, 1988, Section 166 - Compensation - Future prospects for self-employed deceased aged 54-55 years",
		Principle:  "Future Prospects for Self-Employed: Even when the deceased was self-employed and aged 54-55 years, 10% of annual income should be awarded on account of future prospects under Section 166 of the Motor Vehicles Act, 1988.",
		Paragraphs: make([]model.Paragraph, len(daniDeviParagraphs)),
	}

	for i, text := range daniDeviParagraphs {
		doc.Paragraphs[i] = model.Paragraph{Number: i + 1, Text: text}
	}

	if paragraph != nil {
		anchor := *paragraph
		doc.Anchor = &anchor
		if anchor >= 1 && anchor <= len(doc.Paragraphs) {
			p := &doc.Paragraphs[anchor-1]
			p.Highlighted = true
			p.Mark = marks[anchor]
			doc.Note = fmt.Sprintf("This is a simulated document view showing Paragraph %d highlighted. Open the link to view the complete document.", anchor)
		}
	}

	return doc, nil
}
