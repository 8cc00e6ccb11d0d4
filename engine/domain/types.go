// Package domain defines the retrievable unit model shared by the indexing
// and answering pipelines, plus the error taxonomy callers branch on. It acts
// as the validation gate at pipeline entry points.
package domain

// Sentinel is rendered in place of any missing source field. It is data, not
// an error: a null column degrades to this text and normalization proceeds.
const Sentinel = "정보 없음"

// Kind discriminates a unit's provenance.
type Kind string

const (
	KindProduct Kind = "product"
	KindBrand   Kind = "brand"
	KindFAQ     Kind = "faq"
)

// ValidKinds is the set of recognised unit kinds.
var ValidKinds = map[Kind]bool{
	KindProduct: true,
	KindBrand:   true,
	KindFAQ:     true,
}

// Attribute keys carried by units, per kind.
const (
	AttrBrandID     = "brand_id"
	AttrBrandName   = "brand_name"
	AttrProductName = "product_name"
	AttrFAQID       = "faq_id"
	AttrCategory    = "category"
)

// RequiredAttrs lists the attribute keys that must be present for each kind.
// A missing source value is stored as Sentinel, never omitted; downstream
// filtering relies on the keys existing.
var RequiredAttrs = map[Kind][]string{
	KindProduct: {AttrBrandID, AttrBrandName, AttrProductName},
	KindBrand:   {AttrBrandName},
	KindFAQ:     {AttrFAQID, AttrCategory},
}

// Unit is one indexed piece of text plus its provenance metadata.
// Units are created once at corpus-build time and immutable afterwards;
// the only way to change them is a full rebuild of the index.
type Unit struct {
	Text  string            `json:"text"`
	Kind  Kind              `json:"kind"`
	Attrs map[string]string `json:"attrs"`
}

// Attr returns the named attribute, or Sentinel when absent.
func (u Unit) Attr(key string) string {
	if v, ok := u.Attrs[key]; ok {
		return v
	}
	return Sentinel
}
