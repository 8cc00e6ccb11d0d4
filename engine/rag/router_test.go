package rag

import (
	"strings"
	"testing"
)

func TestRoute(t *testing.T) {
	cases := []struct {
		question string
		want     Strategy
	}{
		{"브랜드 종류 알려줘", StrategyBrandList},
		{"브랜드 뭐 있어?", StrategyBrandList},
		{"브랜드만 보여줘", StrategyBrandList},
		{"브랜드 리스트 줘", StrategyBrandList},
		{"제품명 알려줘", StrategyProductNames},
		{"이름만 보여줘", StrategyProductNames},
		{"제품 리스트 줘", StrategyProductNames},
		{"초콜릿 목록", StrategyProductNames},
		{"뭐 있어?", StrategyProductNames},
		{"다크 초콜릿 추천해줘", StrategyGeneral},
		{"유통기한이 긴 제품은?", StrategyGeneral},
		{"", StrategyGeneral},
	}
	for _, c := range cases {
		if got := Route(c.question); got != c.want {
			t.Errorf("Route(%q) = %v, want %v", c.question, got, c.want)
		}
	}
}

func TestRoute_BrandListWinsOverProductNames(t *testing.T) {
	// Carries both a brand-list keyword and a product-list keyword.
	if got := Route("브랜드 리스트 목록 보여줘"); got != StrategyBrandList {
		t.Errorf("got %v, want StrategyBrandList", got)
	}
}

func TestRoute_BrandMentionBlocksProductNames(t *testing.T) {
	// "브랜드" appears without any brand-list keyword; the product-names
	// keywords must not fire either.
	if got := Route("브랜드 제품명 알려줘"); got != StrategyGeneral {
		t.Errorf("got %v, want StrategyGeneral", got)
	}
}

func TestPromptTemplate_Render(t *testing.T) {
	out := generalPrompt.Render("CTX", "Q")
	if !strings.Contains(out, "📦 제품 정보:\nCTX") || !strings.Contains(out, "❓ 질문:\nQ") {
		t.Errorf("render missing substitutions:\n%s", out)
	}

	out = productNamesPrompt.Render("CTX", "Q")
	if !strings.Contains(out, "**제품명만**") || !strings.Contains(out, "CTX") {
		t.Errorf("product names render malformed:\n%s", out)
	}
}
