package ingest

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/chocoworld/chocochat/engine/domain"
)

// DefaultFAQCount pads the corpus with generated FAQ units.
const DefaultFAQCount = 300

const faqCategory = "일반"

// faqQuestions is the fixed pool generated FAQs draw from.
var faqQuestions = []string{
	"이 초콜릿은 어디서 생산되나요?",
	"가장 인기 있는 제품은 무엇인가요?",
	"유통기한이 긴 제품은 어떤 것이 있나요?",
	"비건 초콜릿이 있나요?",
	"브랜드별 특징을 알려주세요.",
	"무설탕 제품이 있나요?",
	"가격대가 저렴한 브랜드는 어떤 것인가요?",
	"다크 초콜릿은 어떤 제품이 있나요?",
	"선물용으로 적합한 제품은?",
	"어린이에게 추천할 만한 초콜릿은?",
}

// GenerateFAQs draws n question/answer units from the pool. IDs are assigned
// sequentially from 1. Callers own the rng so runs can be reproduced.
func GenerateFAQs(rng *rand.Rand, n int) []domain.Unit {
	units := make([]domain.Unit, 0, n)
	for i := 0; i < n; i++ {
		question := faqQuestions[rng.Intn(len(faqQuestions))]
		answer := question + "에 대한 정보는 제품 상세 설명에서 확인하실 수 있습니다."
		units = append(units, domain.Unit{
			Text: fmt.Sprintf("❓ 질문: %s\n📝 답변: %s", question, answer),
			Kind: domain.KindFAQ,
			Attrs: map[string]string{
				domain.AttrFAQID:    strconv.Itoa(i + 1),
				domain.AttrCategory: faqCategory,
			},
		})
	}
	return units
}
