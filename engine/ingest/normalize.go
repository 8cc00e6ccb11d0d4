// Package ingest builds the retrieval corpus: catalog rows are normalized
// into fixed-shape Korean text units, FAQ units are generated alongside, and
// the whole corpus flows through validation, embedding, and storage stages.
package ingest

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/chocoworld/chocochat/engine/catalog"
	"github.com/chocoworld/chocochat/engine/domain"
)

const productTemplate = `🍫 [제품 정보]
- 제품명: %s
- 카테고리: %s
- 원산지: %s
- 가격: %s원
- 재고: %s개
- 무게: %s
- 유통기한: %s
- 재료: %s

📄 설명:
%s

🏷️ 브랜드:
- 브랜드명: %s
- 소개: %s`

const brandTemplate = `🏷️ [브랜드 정보]
- 브랜드명: %s
- 국가: %s
- 설립: %s, 본사: %s
- 대표 제품: %s
- 웹사이트: %s

📄 브랜드 소개:
%s

📜 브랜드 역사:
%s

📝 요약:
%s`

// safeStr degrades a null column to the sentinel text. The unit stays in the
// corpus; missing data is rendered, not dropped.
func safeStr(v sql.NullString) string {
	if v.Valid {
		return v.String
	}
	return domain.Sentinel
}

func safeInt(v sql.NullInt64) string {
	if v.Valid {
		return strconv.FormatInt(v.Int64, 10)
	}
	return domain.Sentinel
}

// NormalizeProduct renders a product row into its fixed-section text unit.
func NormalizeProduct(row catalog.ProductRow) domain.Unit {
	text := fmt.Sprintf(productTemplate,
		safeStr(row.Title),
		safeStr(row.Category),
		safeStr(row.Origin),
		safeInt(row.Price),
		safeInt(row.Stock),
		safeStr(row.Weight),
		safeStr(row.ExpiryDate),
		safeStr(row.Materials),
		safeStr(row.Content),
		safeStr(row.BrandTitle),
		safeStr(row.BrandIntro),
	)
	return domain.Unit{
		Text: strings.TrimSpace(text),
		Kind: domain.KindProduct,
		Attrs: map[string]string{
			domain.AttrBrandID:     safeInt(row.BrandID),
			domain.AttrBrandName:   safeStr(row.BrandTitle),
			domain.AttrProductName: safeStr(row.Title),
		},
	}
}

// NormalizeBrand renders a brand row into its fixed-section text unit.
func NormalizeBrand(row catalog.BrandRow) domain.Unit {
	text := fmt.Sprintf(brandTemplate,
		safeStr(row.Title),
		safeStr(row.Country),
		safeStr(row.Founded),
		safeStr(row.Office),
		safeStr(row.Representative),
		safeStr(row.Website),
		safeStr(row.Content),
		safeStr(row.History),
		safeStr(row.Introduction),
	)
	return domain.Unit{
		Text: strings.TrimSpace(text),
		Kind: domain.KindBrand,
		Attrs: map[string]string{
			domain.AttrBrandName: safeStr(row.Title),
		},
	}
}

// BuildCorpus assembles the full corpus in a fixed order: products, then
// brands, then FAQs. Duplicates are kept; the source rows decide content.
func BuildCorpus(products []catalog.ProductRow, brands []catalog.BrandRow, faqs []domain.Unit) []domain.Unit {
	units := make([]domain.Unit, 0, len(products)+len(brands)+len(faqs))
	for _, p := range products {
		units = append(units, NormalizeProduct(p))
	}
	for _, b := range brands {
		units = append(units, NormalizeBrand(b))
	}
	units = append(units, faqs...)
	return units
}
