// Package rag answers user questions over the indexed corpus: a keyword
// router picks a strategy, the searcher retrieves context, and the chat model
// writes the reply. Brand-list questions skip the model entirely.
package rag

import "strings"

// Strategy is the answering path a question is routed to.
type Strategy int

const (
	// StrategyGeneral retrieves broadly and answers in prose.
	StrategyGeneral Strategy = iota
	// StrategyBrandList enumerates brands straight from the index.
	StrategyBrandList
	// StrategyProductNames retrieves wide and asks for names only.
	StrategyProductNames
)

func (s Strategy) String() string {
	switch s {
	case StrategyBrandList:
		return "brand_list"
	case StrategyProductNames:
		return "product_names"
	case StrategyGeneral:
		return "general"
	default:
		return "unknown"
	}
}

// brandListKeywords trigger the brand enumeration path.
var brandListKeywords = []string{"브랜드 종류", "브랜드 뭐", "브랜드만", "브랜드 리스트"}

// productListKeywords trigger the names-only path, but any mention of
// "브랜드" disqualifies it so brand questions never fall through here.
var productListKeywords = []string{"제품명", "이름만", "리스트", "목록", "뭐 있어"}

// Route picks the strategy for a question. The brand-list rule wins over the
// product-names rule; everything else is a general question.
func Route(question string) Strategy {
	for _, kw := range brandListKeywords {
		if strings.Contains(question, kw) {
			return StrategyBrandList
		}
	}
	if !strings.Contains(question, "브랜드") {
		for _, kw := range productListKeywords {
			if strings.Contains(question, kw) {
				return StrategyProductNames
			}
		}
	}
	return StrategyGeneral
}
