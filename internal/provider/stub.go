package provider

import (
	"context"
	"time"

	"lexi-backend/internal/model"
)

const (
	StubAnswer = "Yes, under Section 166 of the Motor Vehicles Act, 1988, the claimants are entitled to an addition for future prospects even when the deceased was self-employed and aged 54–55 years at the time of the accident. In Dani Devi v. Pritam Singh, the Court held that 10% of the deceased's annual income should be added as future prospects."

	StubCitationText   = "As the age of the deceased at the time of accident was held to be about 54–55 years by the learned Tribunal, being self-employed, as such, 10% of annual income should have been awarded on account of future prospects."
	StubCitationSource = "Dani_Devi_v_Pritam_Singh.pdf"
	StubCitationLink   = "https://lexisingapore-my.sharepoint.com/:b:/g/personal/harshit_lexi_sg/EdOegeiR_gdBvQxdyW4xE6oBCDgj5E4Bo5wjvhPHpqgIuQ?e=TEu4vz"
	StubCitationPara   = 7

	DefaultStubDelay = 2 * time.Second
)

// StubProvider waits Delay and returns the same answer for every query.
type StubProvider struct {
	Delay time.Duration
}

func NewStubProvider(delay time.Duration) *StubProvider {
	return &StubProvider{Delay: delay}
}

func (p *StubProvider) AnswerQuery(ctx context.Context, query string) (*model.Answer, error) {
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, wrapFailure(ctx.Err())
		}
	}

	return &model.Answer{
		Answer: StubAnswer,
		Citations: []model.Citation{
			{
				Text:      StubCitationText,
				Source:    StubCitationSource,
				Link:      StubCitationLink,
				Paragraph: model.IntPtr(StubCitationPara),
			},
		},
	}, nil
}
