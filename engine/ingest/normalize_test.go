package ingest

import (
	"database/sql"
	"math/rand"
	"strings"
	"testing"

	"github.com/chocoworld/chocochat/engine/catalog"
	"github.com/chocoworld/chocochat/engine/domain"
)

func str(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }
func num(n int64) sql.NullInt64   { return sql.NullInt64{Int64: n, Valid: true} }

func TestNormalizeProduct(t *testing.T) {
	row := catalog.ProductRow{
		Title:      str("다크 트러플"),
		Content:    str("진한 카카오 풍미의 트러플입니다."),
		Price:      num(12000),
		Stock:      num(30),
		Materials:  str("카카오매스, 설탕"),
		ExpiryDate: str("2026-12-31"),
		Weight:     str("120g"),
		Origin:     str("벨기에"),
		Category:   str("트러플"),
		BrandID:    num(7),
		BrandTitle: str("쇼콜라티에"),
		BrandIntro: str("수제 초콜릿 공방"),
	}

	u := NormalizeProduct(row)
	if u.Kind != domain.KindProduct {
		t.Fatalf("kind = %q", u.Kind)
	}
	for _, want := range []string{
		"🍫 [제품 정보]",
		"- 제품명: 다크 트러플",
		"- 가격: 12000원",
		"- 재고: 30개",
		"📄 설명:\n진한 카카오 풍미의 트러플입니다.",
		"🏷️ 브랜드:",
		"- 브랜드명: 쇼콜라티에",
	} {
		if !strings.Contains(u.Text, want) {
			t.Errorf("text missing %q\n%s", want, u.Text)
		}
	}
	if u.Attrs[domain.AttrBrandID] != "7" {
		t.Errorf("brand_id = %q", u.Attrs[domain.AttrBrandID])
	}
	if u.Attrs[domain.AttrProductName] != "다크 트러플" {
		t.Errorf("product_name = %q", u.Attrs[domain.AttrProductName])
	}
}

func TestNormalizeProduct_NullColumns(t *testing.T) {
	// A product with no brand keeps its unit; nulls render as the sentinel.
	u := NormalizeProduct(catalog.ProductRow{Title: str("밀크바")})

	for _, want := range []string{
		"- 가격: 정보 없음원",
		"- 재고: 정보 없음개",
		"- 브랜드명: 정보 없음",
	} {
		if !strings.Contains(u.Text, want) {
			t.Errorf("text missing %q", want)
		}
	}
	if u.Attrs[domain.AttrBrandID] != domain.Sentinel {
		t.Errorf("brand_id = %q, want sentinel", u.Attrs[domain.AttrBrandID])
	}
	if err := domain.ValidateUnit(u); err != nil {
		t.Errorf("unit with nulls should validate: %v", err)
	}
}

func TestNormalizeBrand(t *testing.T) {
	row := catalog.BrandRow{
		Title:          str("쇼콜라티에"),
		Content:        str("수제 초콜릿 공방"),
		Founded:        str("1998"),
		Office:         str("서울"),
		Representative: str("트러플 컬렉션"),
		Website:        str("https://example.com"),
		Country:        str("대한민국"),
		Introduction:   str("장인의 초콜릿"),
		History:        str("1998년 설립"),
	}

	u := NormalizeBrand(row)
	if u.Kind != domain.KindBrand {
		t.Fatalf("kind = %q", u.Kind)
	}
	for _, want := range []string{
		"🏷️ [브랜드 정보]",
		"- 브랜드명: 쇼콜라티에",
		"- 설립: 1998, 본사: 서울",
		"📜 브랜드 역사:\n1998년 설립",
		"📝 요약:\n장인의 초콜릿",
	} {
		if !strings.Contains(u.Text, want) {
			t.Errorf("text missing %q\n%s", want, u.Text)
		}
	}
	if u.Attrs[domain.AttrBrandName] != "쇼콜라티에" {
		t.Errorf("brand_name = %q", u.Attrs[domain.AttrBrandName])
	}
}

func TestBuildCorpus_Order(t *testing.T) {
	products := []catalog.ProductRow{{Title: str("p1")}, {Title: str("p2")}}
	brands := []catalog.BrandRow{{Title: str("b1")}}
	faqs := GenerateFAQs(rand.New(rand.NewSource(1)), 3)

	units := BuildCorpus(products, brands, faqs)
	if len(units) != 6 {
		t.Fatalf("got %d units, want 6", len(units))
	}
	wantKinds := []domain.Kind{
		domain.KindProduct, domain.KindProduct,
		domain.KindBrand,
		domain.KindFAQ, domain.KindFAQ, domain.KindFAQ,
	}
	for i, k := range wantKinds {
		if units[i].Kind != k {
			t.Errorf("unit %d kind = %q, want %q", i, units[i].Kind, k)
		}
	}
}
